package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// ChatRequest is one assistant turn. With AutoRun set, a trigger_generation
// reply starts the pipeline for the collected job description.
type ChatRequest struct {
	Messages []types.ChatMessage `json:"messages"`
	AutoRun  bool                `json:"autoRun,omitempty"`
}

// ChatResponse carries the reply and, for auto-run triggers, the run outcome.
type ChatResponse struct {
	Reply    *types.ChatReply  `json:"reply"`
	Result   *OptimizeResponse `json:"result,omitempty"`
	RunError map[string]string `json:"runError,omitempty"`
}

func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := userKey(r)
	profile, err := s.deps.Profiles.FindOne(r.Context(), userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, err)
		return
	}

	reply, err := s.deps.Assistant.Chat(r.Context(), profile, req.Messages)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ChatResponse{Reply: reply}
	if req.AutoRun && reply.Kind == types.ReplyTriggerGeneration && profile != nil {
		result, err := s.deps.Pipeline.Run(r.Context(), pipeline.RunOptions{
			Profile:        profile,
			JobDescription: reply.Payload.JobDescription,
		})
		if err != nil {
			_, code := classify(err)
			resp.RunError = map[string]string{"error": err.Error(), "code": code}
		} else {
			resp.Result = &OptimizeResponse{
				CandidateResume: result,
				SessionID:       s.cacheDocument(r.Context(), result),
			}
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}
