package agents

import (
	"context"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// profileView is the profile as the model sees it: included entries only,
// no user id or contact details.
type profileView struct {
	Name         string              `json:"name,omitempty"`
	Title        string              `json:"title,omitempty"`
	About        string              `json:"about,omitempty"`
	Experience   []types.Experience  `json:"experience"`
	Education    []types.Education   `json:"education"`
	Skills       []types.Skill       `json:"skills"`
	Projects     []types.Project     `json:"projects"`
	Certificates []types.Certificate `json:"certificates"`
}

func newProfileView(p *types.Profile) profileView {
	v := profileView{
		Name:         p.Name,
		Title:        p.Title,
		About:        p.About,
		Experience:   IncludedExperience(p),
		Skills:       IncludedSkills(p),
		Projects:     IncludedProjects(p),
		Education:    []types.Education{},
		Certificates: []types.Certificate{},
	}
	for _, e := range p.Education {
		if e.Included() {
			v.Education = append(v.Education, e)
		}
	}
	for _, c := range p.Certificates {
		if c.Included() {
			v.Certificates = append(v.Certificates, c)
		}
	}
	return v
}

// IncludedExperience returns the experience entries visible on the resume.
func IncludedExperience(p *types.Profile) []types.Experience {
	out := []types.Experience{}
	for _, e := range p.Experience {
		if e.Included() {
			out = append(out, e)
		}
	}
	return out
}

// IncludedSkills returns the skills visible on the resume.
func IncludedSkills(p *types.Profile) []types.Skill {
	out := []types.Skill{}
	for _, s := range p.Skills {
		if s.Included() {
			out = append(out, s)
		}
	}
	return out
}

// IncludedProjects returns the projects visible on the resume.
func IncludedProjects(p *types.Profile) []types.Project {
	out := []types.Project{}
	for _, pr := range p.Projects {
		if pr.Included() {
			out = append(out, pr)
		}
	}
	return out
}

// AnalyzeJob extracts structured requirements from raw job text.
func (a *Agents) AnalyzeJob(ctx context.Context, jobText string) (*types.JobAnalysis, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return nil, &InputError{Field: "jobDescription", Message: "is required"}
	}

	user := prompts.Format(prompts.MustGet(prompts.PipelineFile, "job-analyzer-user"), map[string]string{
		"JobDescription": jobText,
	})

	var analysis types.JobAnalysis
	err := a.run(ctx, stageCall{
		stage:  StageAnalyzer,
		schema: schemas.JobAnalysis,
		tier:   llm.TierStandard,
		system: prompts.MustGet(prompts.PipelineFile, "job-analyzer-system"),
		user:   user,
	}, &analysis)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// MatchProfile scores profile against analysis.
func (a *Agents) MatchProfile(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis) (*types.MatchAnalysis, error) {
	if profile == nil {
		return nil, &InputError{Field: "profile", Message: "is required"}
	}
	if analysis == nil {
		return nil, &InputError{Field: "analysis", Message: "is required"}
	}

	user := prompts.Format(prompts.MustGet(prompts.PipelineFile, "profile-matcher-user"), map[string]string{
		"Profile":  marshalPayload(newProfileView(profile)),
		"Analysis": marshalPayload(analysis),
	})

	var match types.MatchAnalysis
	err := a.run(ctx, stageCall{
		stage:  StageMatcher,
		schema: schemas.MatchAnalysis,
		tier:   llm.TierStandard,
		system: prompts.MustGet(prompts.PipelineFile, "profile-matcher-system"),
		user:   user,
	}, &match)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// OptimizeExperience rewrites the included experience entries for the job.
func (a *Agents) OptimizeExperience(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedExperience, error) {
	var out types.OptimizedExperience
	err := a.run(ctx, stageCall{
		stage:  StageExperienceOptimizer,
		schema: schemas.OptimizedExperience,
		tier:   llm.TierAdvanced,
		system: prompts.MustGet(prompts.PipelineFile, "experience-optimizer-system"),
		user:   optimizerPayload(IncludedExperience(profile), analysis, match),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeSkills reorders and relabels the included skills for the job.
func (a *Agents) OptimizeSkills(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedSkills, error) {
	var out types.OptimizedSkills
	err := a.run(ctx, stageCall{
		stage:  StageSkillsOptimizer,
		schema: schemas.OptimizedSkills,
		tier:   llm.TierAdvanced,
		system: prompts.MustGet(prompts.PipelineFile, "skills-optimizer-system"),
		user:   optimizerPayload(IncludedSkills(profile), analysis, match),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeProjects rewrites the included projects for the job.
func (a *Agents) OptimizeProjects(ctx context.Context, profile *types.Profile, analysis *types.JobAnalysis, match *types.MatchAnalysis) (*types.OptimizedProjects, error) {
	var out types.OptimizedProjects
	err := a.run(ctx, stageCall{
		stage:  StageProjectsOptimizer,
		schema: schemas.OptimizedProjects,
		tier:   llm.TierAdvanced,
		system: prompts.MustGet(prompts.PipelineFile, "projects-optimizer-system"),
		user:   optimizerPayload(IncludedProjects(profile), analysis, match),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func optimizerPayload(section any, analysis *types.JobAnalysis, match *types.MatchAnalysis) string {
	return prompts.Format(prompts.MustGet(prompts.PipelineFile, "optimizer-user"), map[string]string{
		"Section":  marshalPayload(section),
		"Analysis": marshalPayload(analysis),
		"Match":    marshalPayload(match),
	})
}
