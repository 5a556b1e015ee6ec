package pipeline

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// merge applies the successful optimizer outputs to a copy of profile.
// Entries are matched by ID; unknown IDs in optimizer output are ignored and
// entries the optimizer left out keep their original content.
func merge(profile *types.Profile, result *CandidateResume) *types.Profile {
	merged := profile.Clone()

	if result.Experience != nil {
		byID := make(map[string]types.OptimizedExperienceEntry, len(result.Experience.Entries))
		for _, e := range result.Experience.Entries {
			byID[e.ID] = e
		}
		for i, e := range merged.Experience {
			opt, ok := byID[e.ID]
			if !ok || !e.Included() {
				continue
			}
			if strings.TrimSpace(opt.Description) != "" {
				merged.Experience[i].Description = opt.Description
			}
			if strings.TrimSpace(opt.Position) != "" {
				merged.Experience[i].Position = opt.Position
			}
		}
	}

	if result.Skills != nil && len(result.Skills.Skills) > 0 {
		// Excluded skills stay in the profile so the user's choices survive a save.
		skills := make([]types.Skill, 0, len(result.Skills.Skills)+len(merged.Skills))
		for _, s := range result.Skills.Skills {
			if strings.TrimSpace(s.Name) == "" {
				continue
			}
			skills = append(skills, types.Skill{ID: uuid.NewString(), Name: s.Name, Domain: s.Domain})
		}
		for _, s := range merged.Skills {
			if !s.Included() {
				skills = append(skills, s)
			}
		}
		merged.Skills = skills
	}

	if result.Projects != nil {
		byID := make(map[string]types.OptimizedProjectEntry, len(result.Projects.Entries))
		for _, p := range result.Projects.Entries {
			byID[p.ID] = p
		}
		for i, p := range merged.Projects {
			opt, ok := byID[p.ID]
			if !ok || !p.Included() {
				continue
			}
			if strings.TrimSpace(opt.Description) != "" {
				merged.Projects[i].Description = opt.Description
			}
			if strings.TrimSpace(opt.Technologies) != "" {
				merged.Projects[i].Technologies = opt.Technologies
			}
		}
	}

	return merged
}
