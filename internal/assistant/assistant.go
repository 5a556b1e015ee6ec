// Package assistant runs the resume chat assistant. Replies are tagged: a
// plain chat message, or a request to start tailoring the resume to a job.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultTimeout bounds one assistant turn.
const DefaultTimeout = 45 * time.Second

// maxTurns is how many trailing messages are sent to the model.
const maxTurns = 20

// Assistant answers chat turns.
type Assistant struct {
	client  llm.Client
	timeout time.Duration
}

// New creates an Assistant.
func New(client llm.Client) *Assistant {
	return &Assistant{client: client, timeout: DefaultTimeout}
}

// Chat answers the last user message. Model output that is not a valid
// tagged reply degrades to a plain chat message carrying the raw text.
// Upstream failures are returned as *agents.StageError.
func (a *Assistant) Chat(ctx context.Context, profile *types.Profile, messages []types.ChatMessage) (*types.ChatReply, error) {
	if len(messages) == 0 {
		return nil, &agents.InputError{Field: "messages", Message: "at least one message is required"}
	}
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return nil, &agents.InputError{Field: fmt.Sprintf("messages[%d]", i), Message: err.Error()}
		}
	}
	if messages[len(messages)-1].Role != types.ChatRoleUser {
		return nil, &agents.InputError{Field: "messages", Message: "last message must be from the user"}
	}

	profileJSON := "{}"
	if profile != nil {
		data, err := json.MarshalIndent(chatProfile(profile), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}
		profileJSON = string(data)
	}

	user := prompts.Format(prompts.MustGet(prompts.AssistantFile, "chat-user"), map[string]string{
		"Profile":    profileJSON,
		"Transcript": transcript(messages),
	})

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.client.Complete(callCtx, llm.Request{
		System: prompts.MustGet(prompts.AssistantFile, "chat-system"),
		User:   user,
		Tier:   llm.TierStandard,
		JSON:   true,
	})
	if err != nil {
		kind := agents.FailureUpstream
		switch {
		case ctx.Err() != nil:
			kind = agents.FailureCanceled
		case errors.Is(err, context.DeadlineExceeded):
			kind = agents.FailureTimeout
		}
		return nil, &agents.StageError{Stage: agents.StageAssistant, Kind: kind, Message: "assistant call failed", Cause: err}
	}

	return ParseReply(raw), nil
}

// ParseReply decodes a tagged reply, degrading to a chat message on anything
// that does not match the reply schema.
func ParseReply(raw string) *types.ChatReply {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ChatReply, cleaned); err != nil {
		log.Printf("[assistant] reply did not match schema, treating as chat: %v", err)
		return &types.ChatReply{Kind: types.ReplyChat, Message: strings.TrimSpace(raw)}
	}
	var reply types.ChatReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return &types.ChatReply{Kind: types.ReplyChat, Message: strings.TrimSpace(raw)}
	}
	if reply.Kind == types.ReplyChat {
		reply.Payload = nil
	}
	return &reply
}

func transcript(messages []types.ChatMessage) string {
	if len(messages) > maxTurns {
		messages = messages[len(messages)-maxTurns:]
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// chatProfileView is the subset of the profile the assistant sees.
type chatProfileView struct {
	Name       string             `json:"name,omitempty"`
	Title      string             `json:"title,omitempty"`
	About      string             `json:"about,omitempty"`
	Experience []types.Experience `json:"experience"`
	Skills     []types.Skill      `json:"skills"`
	Projects   []types.Project    `json:"projects"`
}

func chatProfile(p *types.Profile) chatProfileView {
	return chatProfileView{
		Name:       p.Name,
		Title:      p.Title,
		About:      p.About,
		Experience: agents.IncludedExperience(p),
		Skills:     agents.IncludedSkills(p),
		Projects:   agents.IncludedProjects(p),
	}
}
