// Package generate drafts individual resume fields with a single model call,
// falling back to local templates when the model is unavailable.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultTimeout bounds one generator call.
const DefaultTimeout = 30 * time.Second

// Result sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// AboutResult is a drafted summary paragraph.
type AboutResult struct {
	About  string `json:"about"`
	Source string `json:"source"`
}

// BulletsResult is a drafted set of achievement bullets.
type BulletsResult struct {
	Bullets []string `json:"bullets"`
	Source  string   `json:"source"`
}

// SkillsResult is a suggested skill list.
type SkillsResult struct {
	Skills []types.Skill `json:"skills"`
	Source string        `json:"source"`
}

// BulletRequest describes the experience entry to write bullets for.
type BulletRequest struct {
	Position    string `json:"position" validate:"required"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// Generator drafts resume fields. A nil client always uses the fallback.
type Generator struct {
	client  llm.Client
	timeout time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Generator. rnd picks fallback phrasings; nil seeds one from
// the clock, so fallback output varies between calls.
func New(client llm.Client, rnd *rand.Rand) *Generator {
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{client: client, timeout: DefaultTimeout, rnd: rnd}
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rnd.Shuffle(n, swap)
}

// complete calls the model. It returns a nil error only for a usable reply.
func (g *Generator) complete(ctx context.Context, req llm.Request) (string, error) {
	if g.client == nil {
		return "", errors.New("no model configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.client.Complete(ctx, req)
}

// useFallback logs the model failure and reports whether the caller is still
// waiting. A canceled caller gets its context error instead of a fallback.
func useFallback(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Printf("[generate] %s: model unavailable, using fallback: %v", what, err)
	return nil
}

// GenerateAbout drafts the profile summary.
func (g *Generator) GenerateAbout(ctx context.Context, profile *types.Profile) (*AboutResult, error) {
	if profile == nil {
		return nil, &agents.InputError{Field: "profile", Message: "is required"}
	}

	user := prompts.Format(prompts.MustGet(prompts.GenerateFile, "about-user"), map[string]string{
		"Name":       profile.Name,
		"Title":      profile.Title,
		"Experience": experienceSummary(profile),
		"Skills":     strings.Join(skillNames(profile), ", "),
	})
	text, err := g.complete(ctx, llm.Request{
		System: prompts.MustGet(prompts.GenerateFile, "about-system"),
		User:   user,
		Tier:   llm.TierLite,
	})
	if err == nil {
		if about := strings.TrimSpace(text); about != "" {
			return &AboutResult{About: about, Source: SourceModel}, nil
		}
		err = errors.New("empty reply")
	}
	if ctxErr := useFallback(ctx, "about", err); ctxErr != nil {
		return nil, ctxErr
	}
	return &AboutResult{About: g.fallbackAbout(profile), Source: SourceFallback}, nil
}

// GenerateBulletPoints drafts achievement bullets for one experience entry.
func (g *Generator) GenerateBulletPoints(ctx context.Context, req BulletRequest) (*BulletsResult, error) {
	if strings.TrimSpace(req.Position) == "" {
		return nil, &agents.InputError{Field: "position", Message: "is required"}
	}

	user := prompts.Format(prompts.MustGet(prompts.GenerateFile, "bullets-user"), map[string]string{
		"Position":    req.Position,
		"Company":     req.Company,
		"Description": req.Description,
	})
	text, err := g.complete(ctx, llm.Request{
		System: prompts.MustGet(prompts.GenerateFile, "bullets-system"),
		User:   user,
		Tier:   llm.TierLite,
	})
	if err == nil {
		if bullets := splitBullets(text); len(bullets) > 0 {
			return &BulletsResult{Bullets: bullets, Source: SourceModel}, nil
		}
		err = errors.New("no bullets in reply")
	}
	if ctxErr := useFallback(ctx, "bullets", err); ctxErr != nil {
		return nil, ctxErr
	}
	return &BulletsResult{Bullets: g.fallbackBullets(req), Source: SourceFallback}, nil
}

type generatedSkills struct {
	Skills []types.OptimizedSkill `json:"skills"`
}

// GenerateSkills suggests a skill list for the profile's title.
func (g *Generator) GenerateSkills(ctx context.Context, profile *types.Profile) (*SkillsResult, error) {
	if profile == nil {
		return nil, &agents.InputError{Field: "profile", Message: "is required"}
	}

	user := prompts.Format(prompts.MustGet(prompts.GenerateFile, "skills-user"), map[string]string{
		"Title":      profile.Title,
		"Skills":     strings.Join(skillNames(profile), ", "),
		"Experience": experienceSummary(profile),
	})
	text, err := g.complete(ctx, llm.Request{
		System: prompts.MustGet(prompts.GenerateFile, "skills-system"),
		User:   user,
		Tier:   llm.TierLite,
		JSON:   true,
	})
	if err == nil {
		var skills []types.Skill
		if skills, err = parseSkills(text); err == nil {
			return &SkillsResult{Skills: skills, Source: SourceModel}, nil
		}
	}
	if ctxErr := useFallback(ctx, "skills", err); ctxErr != nil {
		return nil, ctxErr
	}
	return &SkillsResult{Skills: g.fallbackSkills(profile), Source: SourceFallback}, nil
}

func parseSkills(text string) ([]types.Skill, error) {
	if err := schemas.Validate(schemas.GeneratedSkills, text); err != nil {
		return nil, err
	}
	var out generatedSkills
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	skills := make([]types.Skill, 0, len(out.Skills))
	seen := make(map[string]bool)
	for _, s := range out.Skills {
		name := strings.TrimSpace(s.Name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, types.Skill{ID: uuid.NewString(), Name: name, Domain: strings.TrimSpace(s.Domain)})
	}
	if len(skills) == 0 {
		return nil, errors.New("no skills in reply")
	}
	return skills, nil
}

// splitBullets turns a plain-text reply into bullet lines, dropping list markers.
func splitBullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•· \t")
		line = trimNumbering(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// trimNumbering drops a leading "1." or "2)".
func trimNumbering(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

func skillNames(p *types.Profile) []string {
	var names []string
	for _, s := range agents.IncludedSkills(p) {
		names = append(names, s.Name)
	}
	return names
}

func experienceSummary(p *types.Profile) string {
	var b strings.Builder
	for _, e := range agents.IncludedExperience(p) {
		fmt.Fprintf(&b, "- %s at %s\n", e.Position, e.Company)
		if d := strings.TrimSpace(e.Description); d != "" {
			b.WriteString("  " + strings.ReplaceAll(d, "\n", "\n  ") + "\n")
		}
	}
	return b.String()
}
