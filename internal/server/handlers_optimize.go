package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// OptimizeRequest starts a pipeline run. JobID names a stored posting and
// is used when JobDescription is empty.
type OptimizeRequest struct {
	JobDescription string `json:"jobDescription"`
	JobID          string `json:"jobId,omitempty"`
}

// OptimizeResponse is the pipeline result plus the session caching its document.
type OptimizeResponse struct {
	*pipeline.CandidateResume
	SessionID string `json:"sessionId,omitempty"`
}

// resolveJobDescription returns the request's description, loading it from
// a stored posting when only a job id is given.
func (s *Server) resolveJobDescription(ctx context.Context, req OptimizeRequest) (string, error) {
	if strings.TrimSpace(req.JobDescription) != "" || req.JobID == "" {
		return req.JobDescription, nil
	}
	if s.deps.Jobs == nil {
		return "", store.ErrNotFound
	}
	posting, err := s.deps.Jobs.GetJobPosting(ctx, req.JobID)
	if err != nil {
		return "", err
	}
	return posting.Description, nil
}

// optimizeInputs loads the caller's profile and the job description.
func (s *Server) optimizeInputs(r *http.Request, req OptimizeRequest) (*types.Profile, string, error) {
	userID, _ := userKey(r)
	profile, err := s.deps.Profiles.FindOne(r.Context(), userID)
	if err != nil {
		return nil, "", err
	}
	jobDescription, err := s.resolveJobDescription(r.Context(), req)
	if err != nil {
		return nil, "", err
	}
	return profile, jobDescription, nil
}

// cacheDocument stores the assembled document so it can be fetched or
// compiled later. Failures only cost the session id.
func (s *Server) cacheDocument(ctx context.Context, result *pipeline.CandidateResume) string {
	id := result.RunID
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.deps.Sessions.Put(ctx, id, result.Document); err != nil {
		log.Printf("[server] failed to cache document %s: %v", id, err)
		return ""
	}
	return id
}

// handleOptimize runs the pipeline and returns the whole result.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, jobDescription, err := s.optimizeInputs(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.deps.Pipeline.Run(r.Context(), pipeline.RunOptions{
		Profile:        profile,
		JobDescription: jobDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, OptimizeResponse{
		CandidateResume: result,
		SessionID:       s.cacheDocument(r.Context(), result),
	})
}

// handleOptimizeStream runs the pipeline and streams progress as SSE.
// Events: progress, result, error, complete.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, jobDescription, err := s.optimizeInputs(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	var runID string
	result, err := s.deps.Pipeline.Run(r.Context(), pipeline.RunOptions{
		Profile:        profile,
		JobDescription: jobDescription,
		OnProgress: func(event pipeline.ProgressEvent) {
			if event.RunID != "" {
				runID = event.RunID
			}
			if err := sse.WriteEvent("progress", event); err != nil {
				log.Printf("[server] failed to write progress event: %v", err)
			}
		},
	})
	if err != nil {
		sse.WriteError(err)
		status := "failed"
		var canceled *pipeline.CanceledError
		if errors.As(err, &canceled) {
			status = "canceled"
		}
		sse.WriteComplete(runID, status)
		return
	}

	if err := sse.WriteEvent("result", OptimizeResponse{
		CandidateResume: result,
		SessionID:       s.cacheDocument(r.Context(), result),
	}); err != nil {
		log.Printf("[server] failed to write result event: %v", err)
	}
	sse.WriteComplete(result.RunID, "completed")
}
