// Package pipeline orchestrates resume optimization: job analysis, profile
// matching, a concurrent fan-out over the section optimizers, and assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// State is a pipeline state.
type State string

// Pipeline states, in order. Failed is terminal.
const (
	StateAnalyzing  State = "ANALYZING"
	StateMatching   State = "MATCHING"
	StateOptimizing State = "OPTIMIZING"
	StateAssembling State = "ASSEMBLING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Stages is the set of LLM-backed calls the pipeline sequences.
type Stages interface {
	AnalyzeJob(ctx context.Context, jobText string) (*types.JobAnalysis, error)
	MatchProfile(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis) (*types.MatchAnalysis, error)
	OptimizeExperience(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedExperience, error)
	OptimizeSkills(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedSkills, error)
	OptimizeProjects(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedProjects, error)
}

// RunRecorder persists runs and their stage artifacts. db.DB implements it.
type RunRecorder interface {
	CreateRun(ctx context.Context, userID, jobDescription string) (uuid.UUID, error)
	SaveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status, message string) error
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	State   State  `json:"state"`
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"runId,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Calls are
// serialized, including those made from optimizer goroutines.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds the inputs of one pipeline run
type RunOptions struct {
	Profile        *types.Profile
	JobDescription string
	OnProgress     ProgressCallback
}

// Section outcome statuses.
const (
	OutcomeOptimized = "optimized"
	OutcomeFallback  = "fallback"
	OutcomeSkipped   = "skipped"
)

// SectionOutcome records what happened to one optimizer.
type SectionOutcome struct {
	Section        string   `json:"section"`
	Status         string   `json:"status"`
	Failure        string   `json:"failure,omitempty"`
	Error          string   `json:"error,omitempty"`
	KeywordsAdded  []string `json:"keywordsAdded,omitempty"`
	RelevanceScore int      `json:"relevanceScore,omitempty"`

	stage agents.Stage
}

// CandidateResume is the aggregated pipeline result.
type CandidateResume struct {
	RunID      string                     `json:"runId,omitempty"`
	Analysis   *types.JobAnalysis         `json:"analysis"`
	Match      *types.MatchAnalysis       `json:"match"`
	Experience *types.OptimizedExperience `json:"optimizedExperience,omitempty"`
	Skills     *types.OptimizedSkills     `json:"optimizedSkills,omitempty"`
	Projects   *types.OptimizedProjects   `json:"optimizedProjects,omitempty"`
	Outcomes   []SectionOutcome           `json:"outcomes"`
	// Profile is the original profile with successful optimizations merged in.
	Profile  *types.Profile `json:"profile"`
	Document string         `json:"latex"`
}

// FailedError is the terminal FAILED(stage) outcome.
type FailedError struct {
	Stage agents.Stage
	Cause error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Cause)
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}

// CanceledError reports caller cancellation. State is the state that was
// about to start or was in flight.
type CanceledError struct {
	State State
	Cause error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("pipeline canceled at %s: %v", e.State, e.Cause)
}

func (e *CanceledError) Unwrap() error {
	return e.Cause
}

// Orchestrator sequences the stages. Recorder may be nil.
type Orchestrator struct {
	stages   Stages
	recorder RunRecorder
}

// New creates an Orchestrator.
func New(stages Stages, recorder RunRecorder) *Orchestrator {
	return &Orchestrator{stages: stages, recorder: recorder}
}

// run carries per-invocation state.
type run struct {
	o     *Orchestrator
	opts  RunOptions
	runID uuid.UUID
}

func (r *run) emit(state State, step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	ev := ProgressEvent{State: state, Step: step, Message: message, Content: content}
	if r.runID != uuid.Nil {
		ev.RunID = r.runID.String()
	}
	r.opts.OnProgress(ev)
}

func (r *run) saveArtifact(ctx context.Context, stage string, content any) {
	if r.o.recorder == nil || r.runID == uuid.Nil {
		return
	}
	if err := r.o.recorder.SaveArtifact(ctx, r.runID, stage, content); err != nil {
		log.Printf("[pipeline] run %s: failed to save %s artifact: %v", r.runID, stage, err)
	}
}

func (r *run) complete(ctx context.Context, status, message string) {
	if r.o.recorder == nil || r.runID == uuid.Nil {
		return
	}
	// The caller's context may already be canceled; the status still needs writing.
	if err := r.o.recorder.CompleteRun(context.WithoutCancel(ctx), r.runID, status, message); err != nil {
		log.Printf("[pipeline] run %s: failed to record completion: %v", r.runID, err)
	}
}

// boundary reports caller cancellation before entering next.
func (r *run) boundary(ctx context.Context, next State) error {
	if err := ctx.Err(); err != nil {
		r.emit(StateFailed, string(next), "canceled", nil)
		r.complete(ctx, "canceled", err.Error())
		return &CanceledError{State: next, Cause: err}
	}
	r.emit(next, string(next), "entering "+strings.ToLower(string(next)), nil)
	return nil
}

func (r *run) fail(ctx context.Context, state State, stage agents.Stage, err error) error {
	if ctx.Err() != nil {
		r.emit(StateFailed, string(stage), "canceled", nil)
		r.complete(ctx, "canceled", ctx.Err().Error())
		return &CanceledError{State: state, Cause: ctx.Err()}
	}
	r.emit(StateFailed, string(stage), err.Error(), nil)
	r.complete(ctx, "failed", err.Error())
	return &FailedError{Stage: stage, Cause: err}
}

// Run executes the pipeline. Analyzer or matcher failure returns a
// *FailedError; optimizer failures fall back to the original section and are
// reported in CandidateResume.Outcomes. Cancellation is checked at every
// state boundary and returns a *CanceledError.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*CandidateResume, error) {
	if opts.Profile == nil {
		return nil, &agents.InputError{Field: "profile", Message: "is required"}
	}
	if strings.TrimSpace(opts.JobDescription) == "" {
		return nil, &agents.InputError{Field: "jobDescription", Message: "is required"}
	}

	r := &run{o: o, opts: opts}
	if o.recorder != nil {
		id, err := o.recorder.CreateRun(ctx, opts.Profile.UserID, opts.JobDescription)
		if err != nil {
			log.Printf("[pipeline] failed to record run, continuing without persistence: %v", err)
		} else {
			r.runID = id
		}
	}

	// Work on a copy so optimizer merges never touch the caller's profile.
	profile := opts.Profile.Clone()
	profile.AssignIDs()

	if err := r.boundary(ctx, StateAnalyzing); err != nil {
		return nil, err
	}
	analysis, err := o.stages.AnalyzeJob(ctx, opts.JobDescription)
	if err != nil {
		return nil, r.fail(ctx, StateAnalyzing, agents.StageAnalyzer, err)
	}
	r.saveArtifact(ctx, string(agents.StageAnalyzer), analysis)
	r.emit(StateAnalyzing, string(agents.StageAnalyzer), "job analyzed", analysis)

	if err := r.boundary(ctx, StateMatching); err != nil {
		return nil, err
	}
	match, err := o.stages.MatchProfile(ctx, profile, analysis)
	if err != nil {
		return nil, r.fail(ctx, StateMatching, agents.StageMatcher, err)
	}
	r.saveArtifact(ctx, string(agents.StageMatcher), match)
	r.emit(StateMatching, string(agents.StageMatcher), fmt.Sprintf("match score %d", match.MatchScore), match)

	if err := r.boundary(ctx, StateOptimizing); err != nil {
		return nil, err
	}
	result := &CandidateResume{Analysis: analysis, Match: match}
	r.optimize(ctx, profile, result)

	if err := r.boundary(ctx, StateAssembling); err != nil {
		return nil, err
	}
	result.Profile = merge(profile, result)
	result.Document = rendering.Assemble(result.Profile)
	if r.runID != uuid.Nil {
		result.RunID = r.runID.String()
	}
	r.saveArtifact(ctx, "latex", result.Document)

	r.emit(StateDone, "done", "resume assembled", nil)
	r.complete(ctx, "completed", "")
	return result, nil
}

// optimize runs the three section optimizers concurrently. A failing
// optimizer never cancels its siblings.
func (r *run) optimize(ctx context.Context, profile *types.Profile, result *CandidateResume) {
	stages := r.o.stages
	analysis, match := result.Analysis, result.Match

	outcomes := []SectionOutcome{
		{Section: types.SectionExperience, stage: agents.StageExperienceOptimizer},
		{Section: types.SectionSkills, stage: agents.StageSkillsOptimizer},
		{Section: types.SectionProjects, stage: agents.StageProjectsOptimizer},
	}
	sectionSizes := []int{
		len(agents.IncludedExperience(profile)),
		len(agents.IncludedSkills(profile)),
		len(agents.IncludedProjects(profile)),
	}

	var g errgroup.Group
	var mu sync.Mutex

	for i := range outcomes {
		if sectionSizes[i] == 0 {
			outcomes[i].Status = OutcomeSkipped
			continue
		}
		g.Go(func() error {
			var (
				meta    types.OptimizerMeta
				content any
				err     error
			)
			switch outcomes[i].stage {
			case agents.StageExperienceOptimizer:
				var out *types.OptimizedExperience
				if out, err = stages.OptimizeExperience(ctx, profile, analysis, match); err == nil {
					meta, content = out.OptimizerMeta, out
					mu.Lock()
					result.Experience = out
					mu.Unlock()
				}
			case agents.StageSkillsOptimizer:
				var out *types.OptimizedSkills
				if out, err = stages.OptimizeSkills(ctx, profile, analysis, match); err == nil {
					meta, content = out.OptimizerMeta, out
					mu.Lock()
					result.Skills = out
					mu.Unlock()
				}
			case agents.StageProjectsOptimizer:
				var out *types.OptimizedProjects
				if out, err = stages.OptimizeProjects(ctx, profile, analysis, match); err == nil {
					meta, content = out.OptimizerMeta, out
					mu.Lock()
					result.Projects = out
					mu.Unlock()
				}
			}

			mu.Lock()
			defer mu.Unlock()
			o := &outcomes[i]
			if err != nil {
				o.Status = OutcomeFallback
				o.Error = err.Error()
				var stageErr *agents.StageError
				if errors.As(err, &stageErr) {
					o.Failure = string(stageErr.Kind)
				}
				log.Printf("[pipeline] %s failed, keeping original section: %v", o.stage, err)
				r.emit(StateOptimizing, string(o.stage), "falling back to original "+o.Section, nil)
				return nil
			}
			o.Status = OutcomeOptimized
			o.KeywordsAdded = meta.KeywordsAdded
			o.RelevanceScore = meta.RelevanceScore
			r.saveArtifact(ctx, string(o.stage), content)
			r.emit(StateOptimizing, string(o.stage), o.Section+" optimized", content)
			return nil
		})
	}

	// Goroutines always return nil; Wait only joins them.
	_ = g.Wait()
	result.Outcomes = outcomes
}
