// Package agents implements the LLM-backed stages of resume optimization:
// job analysis, profile matching and the three section optimizers.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// DefaultStageTimeout bounds a single stage call.
const DefaultStageTimeout = 60 * time.Second

// Agents runs stage calls against one LLM client.
type Agents struct {
	client  llm.Client
	timeout time.Duration
}

// New creates Agents. A non-positive timeout uses DefaultStageTimeout.
func New(client llm.Client, timeout time.Duration) *Agents {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Agents{client: client, timeout: timeout}
}

// stageCall describes one structured completion.
type stageCall struct {
	stage  Stage
	schema string
	tier   llm.ModelTier
	system string
	user   string
}

// run performs the call under the stage timeout, validates the reply against
// the stage schema and decodes it into out.
func (a *Agents) run(ctx context.Context, call stageCall, out any) error {
	stageCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.client.Complete(stageCtx, llm.Request{
		System: call.system,
		User:   call.user,
		Tier:   call.tier,
		JSON:   true,
	})
	if err != nil {
		kind := FailureUpstream
		switch {
		case ctx.Err() != nil:
			kind = FailureCanceled
		case errors.Is(stageCtx.Err(), context.DeadlineExceeded):
			kind = FailureTimeout
		}
		log.Printf("[agents] %s failed after %s: %v", call.stage, time.Since(start).Round(time.Millisecond), err)
		return &StageError{Stage: call.stage, Kind: kind, Message: "completion failed", Cause: err}
	}

	if err := schemas.Validate(call.schema, raw); err != nil {
		log.Printf("[agents] %s returned malformed output: %v", call.stage, err)
		return &StageError{Stage: call.stage, Kind: FailureMalformed, Message: "response does not match schema", Cause: err}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &StageError{Stage: call.stage, Kind: FailureMalformed, Message: "failed to decode response", Cause: err}
	}

	log.Printf("[agents] %s completed in %s", call.stage, time.Since(start).Round(time.Millisecond))
	return nil
}

// marshalPayload renders v as indented JSON for a prompt.
func marshalPayload(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Payload types are plain structs; this only fires on programmer error.
		return "{}"
	}
	return string(data)
}
