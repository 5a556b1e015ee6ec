package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

type stubStages struct {
	analyze     func(ctx context.Context) (*types.JobAnalysis, error)
	match       func(ctx context.Context) (*types.MatchAnalysis, error)
	experience  func(ctx context.Context) (*types.OptimizedExperience, error)
	skills      func(ctx context.Context) (*types.OptimizedSkills, error)
	projects    func(ctx context.Context) (*types.OptimizedProjects, error)
	mu          sync.Mutex
	calledStage []string
}

func (s *stubStages) record(name string) {
	s.mu.Lock()
	s.calledStage = append(s.calledStage, name)
	s.mu.Unlock()
}

func (s *stubStages) called(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calledStage {
		if c == name {
			return true
		}
	}
	return false
}

func (s *stubStages) AnalyzeJob(ctx context.Context, _ string) (*types.JobAnalysis, error) {
	s.record("analyze")
	return s.analyze(ctx)
}

func (s *stubStages) MatchProfile(ctx context.Context, _ *types.Profile, _ *types.JobAnalysis) (*types.MatchAnalysis, error) {
	s.record("match")
	return s.match(ctx)
}

func (s *stubStages) OptimizeExperience(ctx context.Context, _ *types.Profile, _ *types.JobAnalysis, _ *types.MatchAnalysis) (*types.OptimizedExperience, error) {
	s.record("experience")
	return s.experience(ctx)
}

func (s *stubStages) OptimizeSkills(ctx context.Context, _ *types.Profile, _ *types.JobAnalysis, _ *types.MatchAnalysis) (*types.OptimizedSkills, error) {
	s.record("skills")
	return s.skills(ctx)
}

func (s *stubStages) OptimizeProjects(ctx context.Context, _ *types.Profile, _ *types.JobAnalysis, _ *types.MatchAnalysis) (*types.OptimizedProjects, error) {
	s.record("projects")
	return s.projects(ctx)
}

func happyStages() *stubStages {
	return &stubStages{
		analyze: func(context.Context) (*types.JobAnalysis, error) {
			return &types.JobAnalysis{RequiredSkills: []string{"Go"}, Keywords: []string{"golang"}}, nil
		},
		match: func(context.Context) (*types.MatchAnalysis, error) {
			return &types.MatchAnalysis{MatchScore: 70}, nil
		},
		experience: func(context.Context) (*types.OptimizedExperience, error) {
			return &types.OptimizedExperience{
				Entries:       []types.OptimizedExperienceEntry{{ID: "e1", Description: "Built X in Go\nShipped Y to 1M users"}},
				OptimizerMeta: types.OptimizerMeta{KeywordsAdded: []string{"Go"}, RelevanceScore: 90},
			}, nil
		},
		skills: func(context.Context) (*types.OptimizedSkills, error) {
			return &types.OptimizedSkills{Skills: []types.OptimizedSkill{{Name: "Go", Domain: "Languages"}, {Name: "Kubernetes", Domain: "Cloud"}}}, nil
		},
		projects: func(context.Context) (*types.OptimizedProjects, error) {
			return &types.OptimizedProjects{Entries: []types.OptimizedProjectEntry{{ID: "p1", Description: "Go CLI used by 500 devs", Technologies: "Go, Cobra"}}}, nil
		},
	}
}

func pipelineProfile() *types.Profile {
	return &types.Profile{
		UserID: "user-1",
		Name:   "Ada",
		Experience: []types.Experience{
			{ID: "e1", Position: "Engineer", Company: "Acme", StartDate: "2020-01", Description: "Built X\nShipped Y"},
		},
		Skills: []types.Skill{
			{ID: "s1", Name: "Golang", Domain: "Backend"},
			{ID: "s2", Name: "COBOL", Domain: "Legacy", IncludeInResume: types.Bool(false)},
		},
		Projects: []types.Project{
			{ID: "p1", Title: "Tool", Description: "A CLI", Technologies: "Go"},
		},
	}
}

func outcomeFor(t *testing.T, res *CandidateResume, section string) SectionOutcome {
	t.Helper()
	for _, o := range res.Outcomes {
		if o.Section == section {
			return o
		}
	}
	t.Fatalf("no outcome for %s", section)
	return SectionOutcome{}
}

func TestRun_AllStagesSucceed(t *testing.T) {
	var mu sync.Mutex
	var states []State
	opts := RunOptions{
		Profile:        pipelineProfile(),
		JobDescription: "Go engineer wanted",
		OnProgress: func(ev ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			if len(states) == 0 || states[len(states)-1] != ev.State {
				states = append(states, ev.State)
			}
		},
	}

	res, err := New(happyStages(), nil).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 70, res.Match.MatchScore)
	assert.Equal(t, OutcomeOptimized, outcomeFor(t, res, types.SectionExperience).Status)
	assert.Equal(t, OutcomeOptimized, outcomeFor(t, res, types.SectionSkills).Status)
	assert.Equal(t, OutcomeOptimized, outcomeFor(t, res, types.SectionProjects).Status)
	assert.Equal(t, 90, outcomeFor(t, res, types.SectionExperience).RelevanceScore)

	assert.Equal(t, "Built X in Go\nShipped Y to 1M users", res.Profile.Experience[0].Description)
	assert.Equal(t, "Go, Cobra", res.Profile.Projects[0].Technologies)
	assert.Contains(t, res.Document, `\resumeItem{Shipped Y to 1M users}`)
	assert.Contains(t, res.Document, `\textbf{Cloud}{: Kubernetes}`)
	assert.NotContains(t, res.Document, "Golang")

	assert.Equal(t, []State{StateAnalyzing, StateMatching, StateOptimizing, StateAssembling, StateDone}, states)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	profile := pipelineProfile()
	_, err := New(happyStages(), nil).Run(context.Background(), RunOptions{Profile: profile, JobDescription: "job"})
	require.NoError(t, err)

	assert.Equal(t, "Built X\nShipped Y", profile.Experience[0].Description)
	assert.Equal(t, "Golang", profile.Skills[0].Name)
}

func TestRun_SkillsOptimizerFailureFallsBack(t *testing.T) {
	stages := happyStages()
	stages.skills = func(context.Context) (*types.OptimizedSkills, error) {
		return nil, &agents.StageError{
			Stage:   agents.StageSkillsOptimizer,
			Kind:    agents.FailureUpstream,
			Message: "completion failed",
			Cause:   &llm.APIError{Provider: llm.ProviderGroq, StatusCode: 502, Message: "bad gateway"},
		}
	}

	res, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.NoError(t, err)

	skills := outcomeFor(t, res, types.SectionSkills)
	assert.Equal(t, OutcomeFallback, skills.Status)
	assert.Equal(t, string(agents.FailureUpstream), skills.Failure)
	assert.Contains(t, skills.Error, "bad gateway")
	assert.Nil(t, res.Skills)

	assert.Equal(t, OutcomeOptimized, outcomeFor(t, res, types.SectionExperience).Status)
	assert.Equal(t, OutcomeOptimized, outcomeFor(t, res, types.SectionProjects).Status)
	assert.NotNil(t, res.Experience)
	assert.NotNil(t, res.Projects)

	assert.Equal(t, pipelineProfile().Skills, res.Profile.Skills)
	assert.Contains(t, res.Document, `\textbf{Backend}{: Golang}`)
	assert.Contains(t, res.Document, "Go CLI used by 500 devs")
}

func TestRun_AllOptimizersFail(t *testing.T) {
	stages := happyStages()
	boom := errors.New("boom")
	stages.experience = func(context.Context) (*types.OptimizedExperience, error) { return nil, boom }
	stages.skills = func(context.Context) (*types.OptimizedSkills, error) { return nil, boom }
	stages.projects = func(context.Context) (*types.OptimizedProjects, error) { return nil, boom }

	res, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.NoError(t, err)
	for _, o := range res.Outcomes {
		assert.Equal(t, OutcomeFallback, o.Status)
	}
	assert.Contains(t, res.Document, `\resumeItem{Built X}`)
}

func TestRun_OptimizersRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	wait := func(context.Context) error {
		started.Done()
		done := make(chan struct{})
		go func() { started.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("optimizers did not overlap")
		}
	}

	stages := happyStages()
	happy := happyStages()
	stages.experience = func(ctx context.Context) (*types.OptimizedExperience, error) {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		return happy.experience(ctx)
	}
	stages.skills = func(ctx context.Context) (*types.OptimizedSkills, error) {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		return happy.skills(ctx)
	}
	stages.projects = func(ctx context.Context) (*types.OptimizedProjects, error) {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		return happy.projects(ctx)
	}

	res, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.NoError(t, err)
	for _, o := range res.Outcomes {
		assert.Equal(t, OutcomeOptimized, o.Status, o.Section)
	}
}

func TestRun_AnalyzerFailureIsTerminal(t *testing.T) {
	stages := happyStages()
	stages.analyze = func(context.Context) (*types.JobAnalysis, error) {
		return nil, &agents.StageError{Stage: agents.StageAnalyzer, Kind: agents.FailureMalformed, Message: "not json"}
	}

	_, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, agents.StageAnalyzer, failed.Stage)

	var stageErr *agents.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, agents.FailureMalformed, stageErr.Kind)
	assert.False(t, stages.called("match"))
}

func TestRun_MatcherFailureIsTerminal(t *testing.T) {
	stages := happyStages()
	stages.match = func(context.Context) (*types.MatchAnalysis, error) {
		return nil, errors.New("upstream down")
	}

	_, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, agents.StageMatcher, failed.Stage)
	assert.False(t, stages.called("experience"))
	assert.False(t, stages.called("skills"))
	assert.False(t, stages.called("projects"))
}

func TestRun_CanceledAfterAnalyzer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stages := happyStages()
	happy := happyStages()
	stages.analyze = func(ctx context.Context) (*types.JobAnalysis, error) {
		cancel()
		return happy.analyze(ctx)
	}

	_, err := New(stages, nil).Run(ctx, RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	var canceled *CanceledError
	require.True(t, errors.As(err, &canceled))
	assert.Equal(t, StateMatching, canceled.State)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, stages.called("match"))
}

func TestRun_CanceledDuringOptimizing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stages := happyStages()
	happy := happyStages()
	stages.projects = func(ctx context.Context) (*types.OptimizedProjects, error) {
		cancel()
		return happy.projects(ctx)
	}

	res, err := New(stages, nil).Run(ctx, RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	assert.Nil(t, res)
	var canceled *CanceledError
	require.True(t, errors.As(err, &canceled))
	assert.Equal(t, StateAssembling, canceled.State)
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stages := happyStages()

	_, err := New(stages, nil).Run(ctx, RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	var canceled *CanceledError
	require.True(t, errors.As(err, &canceled))
	assert.Equal(t, StateAnalyzing, canceled.State)
	assert.False(t, stages.called("analyze"))
}

func TestRun_InputValidation(t *testing.T) {
	o := New(happyStages(), nil)

	_, err := o.Run(context.Background(), RunOptions{JobDescription: "job"})
	var inputErr *agents.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "profile", inputErr.Field)

	_, err = o.Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "  "})
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "jobDescription", inputErr.Field)
}

func TestRun_EmptySectionsSkipped(t *testing.T) {
	stages := happyStages()
	profile := &types.Profile{
		UserID:     "u1",
		Experience: []types.Experience{{ID: "e1", Position: "Engineer", Company: "Acme", Description: "Built X"}},
	}

	res, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: profile, JobDescription: "job"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcomeFor(t, res, types.SectionSkills).Status)
	assert.Equal(t, OutcomeSkipped, outcomeFor(t, res, types.SectionProjects).Status)
	assert.False(t, stages.called("skills"))
	assert.False(t, stages.called("projects"))
	assert.NotContains(t, res.Document, `\section{Skills}`)
}

func TestRun_AssignsMissingIDs(t *testing.T) {
	stages := happyStages()
	stages.experience = func(context.Context) (*types.OptimizedExperience, error) {
		return &types.OptimizedExperience{}, nil
	}
	profile := &types.Profile{Experience: []types.Experience{{Position: "Engineer", Company: "Acme"}}}

	res, err := New(stages, nil).Run(context.Background(), RunOptions{Profile: profile, JobDescription: "job"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Profile.Experience[0].ID)
	assert.Empty(t, profile.Experience[0].ID)
}

type fakeRecorder struct {
	mu        sync.Mutex
	runID     uuid.UUID
	artifacts []string
	status    string
	message   string
	createErr error
}

func (f *fakeRecorder) CreateRun(_ context.Context, _, _ string) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.runID = uuid.New()
	return f.runID, nil
}

func (f *fakeRecorder) SaveArtifact(_ context.Context, _ uuid.UUID, stage string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts = append(f.artifacts, stage)
	return nil
}

func (f *fakeRecorder) CompleteRun(_ context.Context, _ uuid.UUID, status, message string) error {
	f.status = status
	f.message = message
	return nil
}

func TestRun_RecordsArtifacts(t *testing.T) {
	rec := &fakeRecorder{}
	res, err := New(happyStages(), rec).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.NoError(t, err)

	assert.Equal(t, rec.runID.String(), res.RunID)
	assert.Equal(t, "completed", rec.status)
	assert.ElementsMatch(t, []string{
		"analyzer", "matcher", "experience_optimizer", "skills_optimizer", "projects_optimizer", "latex",
	}, rec.artifacts)
}

func TestRun_RecordsFailure(t *testing.T) {
	rec := &fakeRecorder{}
	stages := happyStages()
	stages.match = func(context.Context) (*types.MatchAnalysis, error) { return nil, errors.New("quota exceeded") }

	_, err := New(stages, rec).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.Error(t, err)
	assert.Equal(t, "failed", rec.status)
	assert.True(t, strings.Contains(rec.message, "quota exceeded"))
}

func TestRun_RecorderErrorDoesNotFailRun(t *testing.T) {
	rec := &fakeRecorder{createErr: errors.New("db down")}
	res, err := New(happyStages(), rec).Run(context.Background(), RunOptions{Profile: pipelineProfile(), JobDescription: "job"})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	assert.Empty(t, rec.artifacts)
}
