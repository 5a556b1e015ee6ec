package types

// JobAnalysis is the structured requirement set extracted from a job posting.
type JobAnalysis struct {
	RequiredSkills   []string      `json:"requiredSkills"`
	PreferredSkills  []string      `json:"preferredSkills"`
	NiceToHaveSkills []string      `json:"niceToHaveSkills"`
	ExperienceLevel  string        `json:"experienceLevel"`
	Responsibilities []string      `json:"responsibilities"`
	Keywords         []string      `json:"keywords"`
	Priorities       PriorityTiers `json:"priorities"`
}

// PriorityTiers buckets requirements by importance.
type PriorityTiers struct {
	MustHave   []string `json:"mustHave"`
	ShouldHave []string `json:"shouldHave"`
	CouldHave  []string `json:"couldHave"`
}

// MatchAnalysis compares a profile against a JobAnalysis.
type MatchAnalysis struct {
	MatchScore        int             `json:"matchScore"`
	Strengths         MatchCategories `json:"strengths"`
	Gaps              MatchCategories `json:"gaps"`
	OptimizationHints []string        `json:"optimizationHints"`
}

// MatchCategories groups findings by resume area.
type MatchCategories struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
}

// OptimizerMeta is the metadata every section optimizer returns.
type OptimizerMeta struct {
	KeywordsAdded  []string `json:"keywordsAdded"`
	RelevanceScore int      `json:"relevanceScore"`
}

// OptimizedExperience is the experience optimizer's output.
type OptimizedExperience struct {
	Entries []OptimizedExperienceEntry `json:"optimizedExperience"`
	OptimizerMeta
}

// OptimizedExperienceEntry rewrites one experience entry, addressed by ID.
type OptimizedExperienceEntry struct {
	ID          string `json:"id"`
	Position    string `json:"position,omitempty"`
	Description string `json:"description"`
}

// OptimizedSkills is the skills optimizer's output. It replaces the skill list.
type OptimizedSkills struct {
	Skills []OptimizedSkill `json:"optimizedSkills"`
	OptimizerMeta
}

// OptimizedSkill is one skill in the optimized list.
type OptimizedSkill struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// OptimizedProjects is the projects optimizer's output.
type OptimizedProjects struct {
	Entries []OptimizedProjectEntry `json:"optimizedProjects"`
	OptimizerMeta
}

// OptimizedProjectEntry rewrites one project entry, addressed by ID.
type OptimizedProjectEntry struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	Technologies string `json:"technologies,omitempty"`
}
