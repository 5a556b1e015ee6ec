package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// handleGetProfile returns the caller's stored profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userKey(r)
	profile, err := s.deps.Profiles.FindOne(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, profile)
}

// handlePutProfile replaces the caller's profile.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userKey(r)
	var profile types.Profile
	if !decodeJSON(w, r, &profile) {
		return
	}
	profile.UserID = userID
	profile.AssignIDs()

	if err := s.deps.Profiles.Upsert(r.Context(), userID, &profile); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, &profile)
}

// handleAppendSection appends one element to a profile collection.
func (s *Server) handleAppendSection(w http.ResponseWriter, r *http.Request) {
	userID, _ := userKey(r)
	section := r.PathValue("section")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	element, err := store.DecodeElement(section, data)
	if err != nil {
		var sectionErr *store.SectionError
		if !errors.As(err, &sectionErr) {
			err = &ErrValidation{Field: section, Message: err.Error()}
		}
		writeError(w, err)
		return
	}

	if err := s.deps.Profiles.AppendToArray(r.Context(), userID, section, element); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"section": section, "element": element})
}
