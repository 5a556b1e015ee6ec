package agents

import "fmt"

// Stage names one LLM-backed step.
type Stage string

// Stages of the optimization pipeline.
const (
	StageAnalyzer            Stage = "analyzer"
	StageMatcher             Stage = "matcher"
	StageExperienceOptimizer Stage = "experience_optimizer"
	StageSkillsOptimizer     Stage = "skills_optimizer"
	StageProjectsOptimizer   Stage = "projects_optimizer"
)

// StageAssistant is the chat assistant call. It is not part of the pipeline.
const StageAssistant Stage = "assistant"

// FailureKind classifies a stage failure.
type FailureKind string

const (
	// FailureUpstream is a transport error or non-2xx from the LLM service.
	FailureUpstream FailureKind = "upstream"
	// FailureMalformed is a reply that is not JSON or violates the stage schema.
	FailureMalformed FailureKind = "malformed"
	// FailureTimeout means the per-stage deadline passed.
	FailureTimeout FailureKind = "timeout"
	// FailureCanceled means the caller's context was canceled.
	FailureCanceled FailureKind = "canceled"
)

// StageError is the typed outcome of a failed stage call.
type StageError struct {
	Stage   Stage
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s stage failed (%s): %s: %v", e.Stage, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s stage failed (%s): %s", e.Stage, e.Kind, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// InputError represents a missing or invalid caller input
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}
