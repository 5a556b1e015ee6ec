package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

type stubClient struct {
	mu       sync.Mutex
	requests []llm.Request
	respond  func(ctx context.Context, req llm.Request) (string, error)
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(ctx, req)
}

func (s *stubClient) GetModel(tier llm.ModelTier) string { return "stub-" + string(tier) }

func (s *stubClient) Close() error { return nil }

func reply(body string) func(context.Context, llm.Request) (string, error) {
	return func(context.Context, llm.Request) (string, error) { return body, nil }
}

const analysisJSON = `{
	"requiredSkills": ["Go"],
	"preferredSkills": ["Postgres"],
	"niceToHaveSkills": [],
	"experienceLevel": "Mid",
	"responsibilities": ["Build services"],
	"keywords": ["golang", "microservices"],
	"priorities": {"mustHave": ["Go"], "shouldHave": ["Postgres"], "couldHave": []}
}`

func testProfile() *types.Profile {
	return &types.Profile{
		UserID: "user-1",
		Name:   "Ada",
		Email:  "ada@example.com",
		Experience: []types.Experience{
			{ID: "e1", Position: "Engineer", Company: "Acme", Description: "Built X"},
			{ID: "e2", Position: "Intern", Company: "Hidden Co", IncludeInResume: types.Bool(false)},
		},
		Skills:   []types.Skill{{ID: "s1", Name: "Go", Domain: "Languages"}},
		Projects: []types.Project{{ID: "p1", Title: "Tool", Description: "CLI"}},
	}
}

func TestAnalyzeJob_Success(t *testing.T) {
	client := &stubClient{respond: reply(analysisJSON)}
	a := New(client, time.Second)

	analysis, err := a.AnalyzeJob(context.Background(), "We need a Go engineer.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, analysis.RequiredSkills)
	assert.Equal(t, "Mid", analysis.ExperienceLevel)
	assert.Equal(t, []string{"Postgres"}, analysis.Priorities.ShouldHave)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, llm.TierStandard, req.Tier)
	assert.Contains(t, req.System, "requiredSkills")
	assert.Contains(t, req.User, "We need a Go engineer.")
}

func TestAnalyzeJob_EmptyInput(t *testing.T) {
	client := &stubClient{respond: reply(analysisJSON)}
	a := New(client, time.Second)

	_, err := a.AnalyzeJob(context.Background(), "   ")
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Empty(t, client.requests)
}

func TestAnalyzeJob_Upstream(t *testing.T) {
	client := &stubClient{respond: func(context.Context, llm.Request) (string, error) {
		return "", &llm.APIError{Provider: llm.ProviderGroq, StatusCode: 503, Message: "unavailable"}
	}}
	a := New(client, time.Second)

	_, err := a.AnalyzeJob(context.Background(), "job")
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageAnalyzer, stageErr.Stage)
	assert.Equal(t, FailureUpstream, stageErr.Kind)

	var apiErr *llm.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestAnalyzeJob_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "Here is the analysis: requires Go."},
		{"missing keys", `{"requiredSkills": ["Go"]}`},
		{"wrong type", strings.Replace(analysisJSON, `"Mid"`, `42`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&stubClient{respond: reply(tt.body)}, time.Second)

			_, err := a.AnalyzeJob(context.Background(), "job")
			var stageErr *StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, FailureMalformed, stageErr.Kind)
		})
	}
}

func TestAnalyzeJob_Timeout(t *testing.T) {
	client := &stubClient{respond: func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	a := New(client, 20*time.Millisecond)

	_, err := a.AnalyzeJob(context.Background(), "job")
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, FailureTimeout, stageErr.Kind)
}

func TestAnalyzeJob_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &stubClient{respond: func(ctx context.Context, _ llm.Request) (string, error) {
		return "", ctx.Err()
	}}
	a := New(client, time.Second)

	_, err := a.AnalyzeJob(ctx, "job")
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, FailureCanceled, stageErr.Kind)
}

func TestMatchProfile_SendsIncludedEntriesOnly(t *testing.T) {
	client := &stubClient{respond: reply(`{
		"matchScore": 72,
		"strengths": {"skills": ["Go"], "experience": [], "education": []},
		"gaps": {"skills": ["Postgres"], "experience": [], "education": []},
		"optimizationHints": ["Mention databases"]
	}`)}
	a := New(client, time.Second)

	var analysis types.JobAnalysis
	match, err := a.MatchProfile(context.Background(), testProfile(), &analysis)
	require.NoError(t, err)
	assert.Equal(t, 72, match.MatchScore)
	assert.Equal(t, []string{"Postgres"}, match.Gaps.Skills)

	user := client.requests[0].User
	assert.Contains(t, user, "Acme")
	assert.NotContains(t, user, "Hidden Co")
	assert.NotContains(t, user, "ada@example.com")
}

func TestMatchProfile_RequiresInputs(t *testing.T) {
	a := New(&stubClient{respond: reply("{}")}, time.Second)

	_, err := a.MatchProfile(context.Background(), nil, &types.JobAnalysis{})
	assert.Error(t, err)
	_, err = a.MatchProfile(context.Background(), testProfile(), nil)
	assert.Error(t, err)
}

func TestOptimizers(t *testing.T) {
	profile := testProfile()
	analysis := &types.JobAnalysis{Keywords: []string{"golang"}}
	match := &types.MatchAnalysis{MatchScore: 60}

	t.Run("experience", func(t *testing.T) {
		client := &stubClient{respond: reply(`{"optimizedExperience": [{"id": "e1", "description": "Built X in Go"}], "keywordsAdded": ["Go"], "relevanceScore": 88}`)}
		out, err := New(client, time.Second).OptimizeExperience(context.Background(), profile, analysis, match)
		require.NoError(t, err)
		require.Len(t, out.Entries, 1)
		assert.Equal(t, "e1", out.Entries[0].ID)
		assert.Equal(t, 88, out.RelevanceScore)
		assert.Equal(t, llm.TierAdvanced, client.requests[0].Tier)
		assert.Contains(t, client.requests[0].User, "golang")
		assert.NotContains(t, client.requests[0].User, "Hidden Co")
	})

	t.Run("skills", func(t *testing.T) {
		client := &stubClient{respond: reply(`{"optimizedSkills": [{"name": "Go", "domain": "Languages"}], "keywordsAdded": [], "relevanceScore": 70}`)}
		out, err := New(client, time.Second).OptimizeSkills(context.Background(), profile, analysis, match)
		require.NoError(t, err)
		assert.Equal(t, []types.OptimizedSkill{{Name: "Go", Domain: "Languages"}}, out.Skills)
	})

	t.Run("projects", func(t *testing.T) {
		client := &stubClient{respond: reply(`{"optimizedProjects": [{"id": "p1", "description": "CLI in Go", "technologies": "Go"}]}`)}
		out, err := New(client, time.Second).OptimizeProjects(context.Background(), profile, analysis, match)
		require.NoError(t, err)
		assert.Equal(t, "CLI in Go", out.Entries[0].Description)
	})

	t.Run("malformed", func(t *testing.T) {
		client := &stubClient{respond: reply(`{"optimizedSkills": "Go, Rust"}`)}
		_, err := New(client, time.Second).OptimizeSkills(context.Background(), profile, analysis, match)
		var stageErr *StageError
		require.True(t, errors.As(err, &stageErr))
		assert.Equal(t, StageSkillsOptimizer, stageErr.Stage)
		assert.Equal(t, FailureMalformed, stageErr.Kind)
	})
}

func TestNew_DefaultTimeout(t *testing.T) {
	a := New(&stubClient{}, 0)
	assert.Equal(t, DefaultStageTimeout, a.timeout)
}
