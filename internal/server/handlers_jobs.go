package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// ImportJobRequest names the page to import a description from.
type ImportJobRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (s *Server) jobsEnabled(w http.ResponseWriter) bool {
	if s.deps.Jobs == nil {
		errorResponse(w, http.StatusServiceUnavailable, "jobs_disabled", "job postings are not configured")
		return false
	}
	return true
}

// handleCreateJob creates a posting owned by the calling recruiter. An empty
// description is imported from sourceUrl.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if !s.jobsEnabled(w) {
		return
	}
	var req types.CreateJobPostingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, validationError(err))
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		if s.deps.Importer == nil {
			writeError(w, &ErrValidation{Field: "description", Message: "is required when importing is disabled"})
			return
		}
		imported, err := s.deps.Importer.Import(r.Context(), req.SourceURL)
		if err != nil {
			writeError(w, err)
			return
		}
		description = imported.Text
	}

	recruiterID, _ := userKey(r)
	posting := &types.JobPosting{
		ID:             uuid.NewString(),
		RecruiterID:    recruiterID,
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    description,
		SourceURL:      req.SourceURL,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.deps.Jobs.CreateJobPosting(r.Context(), posting); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, posting)
}

// handleListJobs lists the calling recruiter's postings.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if !s.jobsEnabled(w) {
		return
	}
	recruiterID, _ := userKey(r)
	postings, err := s.deps.Jobs.ListJobPostings(r.Context(), recruiterID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"jobs": postings, "count": len(postings)})
}

// handleGetJob returns any posting by id.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if !s.jobsEnabled(w) {
		return
	}
	posting, err := s.deps.Jobs.GetJobPosting(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, posting)
}

// handleImportJob extracts a job description from a URL without storing it.
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Importer == nil {
		errorResponse(w, http.StatusServiceUnavailable, "import_disabled", "job import is not configured")
		return
	}
	var req ImportJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, validationError(err))
		return
	}
	job, err := s.deps.Importer.Import(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}
