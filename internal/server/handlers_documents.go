package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// LatexRequest optionally carries a profile to render instead of the stored one.
type LatexRequest struct {
	Profile *types.Profile `json:"profile,omitempty"`
}

// LatexResponse is a cached LaTeX document.
type LatexResponse struct {
	SessionID string `json:"sessionId"`
	Latex     string `json:"latex"`
}

// PDFRequest selects a cached document to compile. Only documents assembled
// by the server are compiled.
type PDFRequest struct {
	SessionID string `json:"sessionId"`
}

// handleCreateLatex assembles a document and caches it under a new session id.
func (s *Server) handleCreateLatex(w http.ResponseWriter, r *http.Request) {
	var req LatexRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	profile := req.Profile
	if profile == nil {
		userID, _ := userKey(r)
		stored, err := s.deps.Profiles.FindOne(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		profile = stored
	}

	latex := rendering.Assemble(profile)
	id := uuid.NewString()
	if err := s.deps.Sessions.Put(r.Context(), id, latex); err != nil {
		writeError(w, fmt.Errorf("failed to cache document: %w", err))
		return
	}
	jsonResponse(w, http.StatusCreated, LatexResponse{SessionID: id, Latex: latex})
}

// handleGetLatex returns a cached document.
func (s *Server) handleGetLatex(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	latex, err := s.deps.Sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, LatexResponse{SessionID: id, Latex: latex})
}

// handlePDF compiles LaTeX to PDF and archives both when archiving is enabled.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if s.deps.Compiler == nil {
		writeError(w, export.ErrToolchainMissing)
		return
	}
	var req PDFRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, &ErrValidation{Field: "sessionId", Message: "sessionId is required"})
		return
	}
	// Session ids are uuids; other keys in the store hold non-document data.
	if _, err := uuid.Parse(req.SessionID); err != nil {
		writeError(w, &ErrValidation{Field: "sessionId", Message: "sessionId must be a uuid"})
		return
	}
	latex, err := s.deps.Sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := s.deps.Compiler.Compile(r.Context(), latex)
	var compileErr *export.CompilationError
	switch {
	case err == nil:
	case errors.As(err, &compileErr) && len(pdf) > 0:
		log.Printf("[server] pdflatex reported errors but produced output: %v", err)
	default:
		writeError(w, err)
		return
	}

	if s.deps.Archiver != nil {
		userID, _ := userKey(r)
		archived, err := s.deps.Archiver.Archive(r.Context(), userID, latex, pdf)
		if err != nil {
			log.Printf("[server] archive failed: %v", err)
		} else {
			w.Header().Set("X-Archive-Key", archived.PDFKey)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[server] failed to write PDF: %v", err)
	}
}
