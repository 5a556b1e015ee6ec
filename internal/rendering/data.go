package rendering

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// otherDomain labels skills whose domain is blank.
const otherDomain = "Other"

// ResumeData is the filtered, escaped view of a profile. Every string field
// is already safe to embed in LaTeX; URL fields are safe as \href targets.
type ResumeData struct {
	Name         string
	Title        string
	Contacts     []Contact
	Summary      string
	Education    []EducationEntry
	Experience   []ExperienceEntry
	SkillGroups  []SkillGroup
	Projects     []ProjectEntry
	Certificates []CertificateEntry
}

// Contact is one item of the header line. URL is empty for plain text.
type Contact struct {
	Text string
	URL  string
}

// EducationEntry is a rendered education row.
type EducationEntry struct {
	School    string
	Location  string
	Degree    string
	DateRange string
}

// ExperienceEntry is a rendered experience row.
type ExperienceEntry struct {
	Position  string
	Company   string
	Location  string
	DateRange string
	Bullets   []string
}

// SkillGroup holds the skills sharing one literal domain label.
type SkillGroup struct {
	Domain string
	Skills []string
}

// ProjectEntry is a rendered project row.
type ProjectEntry struct {
	Title        string
	Technologies string
	DateRange    string
	GithubURL    string
	LiveURL      string
	Bullets      []string
}

// CertificateEntry is a rendered certificate row.
type CertificateEntry struct {
	Name   string
	Issuer string
	Date   string
	URL    string
}

// BuildResumeData filters profile by inclusion flag and escapes every field.
func BuildResumeData(profile *types.Profile) *ResumeData {
	data := &ResumeData{}
	if profile == nil {
		return data
	}

	data.Name = Sanitize(strings.TrimSpace(profile.Name))
	data.Title = Sanitize(strings.TrimSpace(profile.Title))
	data.Contacts = buildContacts(profile)
	data.Summary = Sanitize(strings.Join(splitLines(profile.About), " "))

	for _, e := range profile.Education {
		if !e.Included() {
			continue
		}
		data.Education = append(data.Education, EducationEntry{
			School:    Sanitize(e.School),
			Location:  Sanitize(e.Location),
			Degree:    Sanitize(degreeLine(e)),
			DateRange: entryDateRange(e.StartDate, e.EndDate),
		})
	}

	for _, e := range profile.Experience {
		if !e.Included() {
			continue
		}
		data.Experience = append(data.Experience, ExperienceEntry{
			Position:  Sanitize(e.Position),
			Company:   Sanitize(e.Company),
			Location:  Sanitize(e.Location),
			DateRange: entryDateRange(e.StartDate, e.EndDate),
			Bullets:   bullets(e.Description),
		})
	}

	data.SkillGroups = groupSkills(profile.Skills)

	for _, p := range profile.Projects {
		if !p.Included() {
			continue
		}
		data.Projects = append(data.Projects, ProjectEntry{
			Title:        Sanitize(p.Title),
			Technologies: Sanitize(strings.TrimSpace(p.Technologies)),
			DateRange:    entryDateRange(p.StartDate, p.EndDate),
			GithubURL:    EscapeURL(NormalizeURL(p.GithubURL)),
			LiveURL:      EscapeURL(NormalizeURL(p.LiveURL)),
			Bullets:      bullets(p.Description),
		})
	}

	for _, c := range profile.Certificates {
		if !c.Included() {
			continue
		}
		entry := CertificateEntry{
			Name:   Sanitize(c.Name),
			Issuer: Sanitize(c.Issuer),
			URL:    EscapeURL(NormalizeURL(c.URL)),
		}
		if strings.TrimSpace(c.Date) != "" {
			entry.Date = FormatDate(c.Date, false)
		}
		data.Certificates = append(data.Certificates, entry)
	}

	return data
}

func buildContacts(p *types.Profile) []Contact {
	var contacts []Contact
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		contacts = append(contacts, Contact{Text: Sanitize(phone)})
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		contacts = append(contacts, Contact{Text: Sanitize(email), URL: EscapeURL("mailto:" + email)})
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		contacts = append(contacts, Contact{Text: Sanitize(loc)})
	}
	for _, link := range []string{p.LinkedIn, p.GitHub, p.Website} {
		url := NormalizeURL(link)
		if url == "" {
			continue
		}
		contacts = append(contacts, Contact{Text: Sanitize(displayURL(url)), URL: EscapeURL(url)})
	}
	return contacts
}

// displayURL drops the scheme for header text.
func displayURL(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	return strings.TrimSuffix(url, "/")
}

func degreeLine(e types.Education) string {
	line := strings.TrimSpace(e.Degree)
	if field := strings.TrimSpace(e.Field); field != "" {
		if line != "" {
			line += " in "
		}
		line += field
	}
	if gpa := strings.TrimSpace(e.GPA); gpa != "" {
		if line != "" {
			line += ", "
		}
		line += "GPA: " + gpa
	}
	return line
}

// entryDateRange is blank when neither date is set.
func entryDateRange(start, end string) string {
	if strings.TrimSpace(start) == "" && strings.TrimSpace(end) == "" {
		return ""
	}
	return FormatDateRange(start, end)
}

// bullets turns a multi-line description into sanitized bullet texts.
func bullets(description string) []string {
	lines := splitLines(description)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, Sanitize(line))
	}
	return out
}

// splitLines returns the non-empty trimmed lines of text.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// groupSkills groups included skills by literal domain, in first-seen order.
func groupSkills(skills []types.Skill) []SkillGroup {
	var groups []SkillGroup
	index := make(map[string]int)
	for _, s := range skills {
		if !s.Included() || strings.TrimSpace(s.Name) == "" {
			continue
		}
		i, ok := index[s.Domain]
		if !ok {
			label := s.Domain
			if strings.TrimSpace(label) == "" {
				label = otherDomain
			}
			groups = append(groups, SkillGroup{Domain: Sanitize(label)})
			i = len(groups) - 1
			index[s.Domain] = i
		}
		groups[i].Skills = append(groups[i].Skills, Sanitize(strings.TrimSpace(s.Name)))
	}
	return groups
}
