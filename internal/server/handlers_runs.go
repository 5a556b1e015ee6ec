package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/db"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

func (s *Server) runsEnabled(w http.ResponseWriter) bool {
	if s.deps.Runs == nil {
		errorResponse(w, http.StatusServiceUnavailable, "runs_disabled", "run history is not configured")
		return false
	}
	return true
}

// handleListRuns lists the caller's runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.runsEnabled(w) {
		return
	}
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxRunLimit)
	}

	userID, _ := userKey(r)
	runs, err := s.deps.Runs.ListRuns(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// ownedRun loads the {id} run, hiding runs of other users as not found.
func (s *Server) ownedRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	run, err := s.deps.Runs.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if userID, _ := userKey(r); run.UserID != userID {
		writeError(w, db.ErrNotFound)
		return nil, false
	}
	return run, true
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.runsEnabled(w) {
		return
	}
	run, ok := s.ownedRun(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, run)
}

// handleRunArtifacts lists a run's stage artifacts.
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	if !s.runsEnabled(w) {
		return
	}
	run, ok := s.ownedRun(w, r)
	if !ok {
		return
	}
	artifacts, err := s.deps.Runs.ListArtifacts(r.Context(), run.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []db.Artifact{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"runId": run.ID, "artifacts": artifacts, "count": len(artifacts)})
}
