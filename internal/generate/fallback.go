package generate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/types"
)

var aboutTemplates = []string{
	"%s with hands-on experience %s. Skilled in %s and focused on shipping reliable work.",
	"%s who has built a track record %s. Brings strengths in %s to every team.",
	"Results-driven %s with experience %s. Comfortable working across %s.",
}

var actionVerbs = []string{
	"Delivered", "Built", "Led", "Designed", "Improved", "Implemented", "Drove", "Streamlined",
}

var knownVerbs = map[string]bool{
	"achieved": true, "analyzed": true, "architected": true, "automated": true,
	"built": true, "created": true, "delivered": true, "designed": true,
	"developed": true, "drove": true, "implemented": true, "improved": true,
	"increased": true, "launched": true, "led": true, "managed": true,
	"migrated": true, "optimized": true, "reduced": true, "shipped": true,
	"streamlined": true, "wrote": true,
}

var genericBullets = []string{
	"Delivered features as %s%s, working closely with product and design",
	"Improved reliability and quality of owned systems as %s%s",
	"Collaborated with cross-functional teams as %s%s to ship on schedule",
}

// skillCatalog maps title words to suggested skills.
var skillCatalog = []struct {
	keywords []string
	skills   []types.OptimizedSkill
}{
	{
		keywords: []string{"backend", "back-end", "platform", "golang", "go", "server"},
		skills: []types.OptimizedSkill{
			{Name: "Go", Domain: "Languages"}, {Name: "PostgreSQL", Domain: "Databases"},
			{Name: "Docker", Domain: "Tools"}, {Name: "Kubernetes", Domain: "Cloud"},
			{Name: "REST APIs", Domain: "Frameworks"}, {Name: "Redis", Domain: "Databases"},
		},
	},
	{
		keywords: []string{"frontend", "front-end", "ui", "web"},
		skills: []types.OptimizedSkill{
			{Name: "TypeScript", Domain: "Languages"}, {Name: "React", Domain: "Frameworks"},
			{Name: "CSS", Domain: "Languages"}, {Name: "Accessibility", Domain: "Practices"},
			{Name: "Vite", Domain: "Tools"},
		},
	},
	{
		keywords: []string{"data", "analyst", "machine learning", "ml"},
		skills: []types.OptimizedSkill{
			{Name: "Python", Domain: "Languages"}, {Name: "SQL", Domain: "Languages"},
			{Name: "pandas", Domain: "Frameworks"}, {Name: "Spark", Domain: "Frameworks"},
			{Name: "Airflow", Domain: "Tools"},
		},
	},
	{
		keywords: []string{"devops", "sre", "reliability", "infrastructure", "cloud"},
		skills: []types.OptimizedSkill{
			{Name: "Terraform", Domain: "Tools"}, {Name: "AWS", Domain: "Cloud"},
			{Name: "Kubernetes", Domain: "Cloud"}, {Name: "Prometheus", Domain: "Tools"},
			{Name: "Linux", Domain: "Tools"},
		},
	},
}

var baseSkills = []types.OptimizedSkill{
	{Name: "Git", Domain: "Tools"},
	{Name: "Communication", Domain: "Soft Skills"},
	{Name: "Problem Solving", Domain: "Soft Skills"},
}

const maxFallbackSkills = 12

func (g *Generator) fallbackAbout(p *types.Profile) string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Professional"
	}

	var companies []string
	for _, e := range agents.IncludedExperience(p) {
		if c := strings.TrimSpace(e.Company); c != "" {
			companies = append(companies, c)
		}
		if len(companies) == 2 {
			break
		}
	}
	where := "across a range of projects"
	if len(companies) > 0 {
		where = "at " + strings.Join(companies, " and ")
	}

	skills := skillNames(p)
	if len(skills) > 3 {
		skills = skills[:3]
	}
	strengths := "modern tools and practices"
	if len(skills) > 0 {
		strengths = strings.Join(skills, ", ")
	}

	return fmt.Sprintf(aboutTemplates[g.intN(len(aboutTemplates))], title, where, strengths)
}

func (g *Generator) fallbackBullets(req BulletRequest) []string {
	lines := splitBullets(req.Description)
	if len(lines) == 0 {
		at := ""
		if c := strings.TrimSpace(req.Company); c != "" {
			at = " at " + c
		}
		out := make([]string, len(genericBullets))
		for i, tmpl := range genericBullets {
			out[i] = fmt.Sprintf(tmpl, req.Position, at)
		}
		return out
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		first, _, _ := strings.Cut(line, " ")
		if knownVerbs[strings.ToLower(first)] {
			out = append(out, upperFirst(line))
			continue
		}
		verb := actionVerbs[g.intN(len(actionVerbs))]
		out = append(out, verb+" "+lowerFirst(line))
	}
	return out
}

func (g *Generator) fallbackSkills(p *types.Profile) []types.Skill {
	seen := make(map[string]bool)
	var out []types.Skill
	add := func(name, domain string) {
		key := strings.ToLower(name)
		if seen[key] || len(out) >= maxFallbackSkills {
			return
		}
		seen[key] = true
		out = append(out, types.Skill{ID: uuid.NewString(), Name: name, Domain: domain})
	}

	for _, s := range agents.IncludedSkills(p) {
		add(s.Name, s.Domain)
	}

	title := " " + strings.Join(strings.Fields(strings.ToLower(p.Title)), " ") + " "
	var suggestions []types.OptimizedSkill
	for _, entry := range skillCatalog {
		for _, kw := range entry.keywords {
			if strings.Contains(title, " "+kw+" ") {
				suggestions = append(suggestions, entry.skills...)
				break
			}
		}
	}
	g.shuffle(len(suggestions), func(i, j int) {
		suggestions[i], suggestions[j] = suggestions[j], suggestions[i]
	})
	suggestions = append(suggestions, baseSkills...)

	for _, s := range suggestions {
		add(s.Name, s.Domain)
	}
	return out
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// lowerFirst lowercases the first rune unless the first word looks like an
// acronym or proper noun with more capitals.
func lowerFirst(s string) string {
	first, _, _ := strings.Cut(s, " ")
	upper := 0
	for _, r := range first {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if upper > 1 {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
