// Package types provides type definitions for structured data used throughout the resume-builder system.
package types

import (
	"github.com/google/uuid"
)

// Profile is the durable record of a user's career data. One document per user.
type Profile struct {
	UserID       string        `json:"userId" bson:"_id"`
	Name         string        `json:"name" bson:"name"`
	Title        string        `json:"title,omitempty" bson:"title,omitempty"`
	Email        string        `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string        `json:"phone,omitempty" bson:"phone,omitempty"`
	Location     string        `json:"location,omitempty" bson:"location,omitempty"`
	LinkedIn     string        `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	GitHub       string        `json:"github,omitempty" bson:"github,omitempty"`
	Website      string        `json:"website,omitempty" bson:"website,omitempty"`
	About        string        `json:"about,omitempty" bson:"about,omitempty"`
	Experience   []Experience  `json:"experience" bson:"experience"`
	Education    []Education   `json:"education" bson:"education"`
	Skills       []Skill       `json:"skills" bson:"skills"`
	Projects     []Project     `json:"projects" bson:"projects"`
	Certificates []Certificate `json:"certificates" bson:"certificates"`
}

// Experience is one work history entry.
type Experience struct {
	ID              string `json:"id" bson:"id"`
	Position        string `json:"position" bson:"position"`
	Company         string `json:"company" bson:"company"`
	Location        string `json:"location,omitempty" bson:"location,omitempty"`
	StartDate       string `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Description     string `json:"description,omitempty" bson:"description,omitempty"`
	IncludeInResume *bool  `json:"includeInResume,omitempty" bson:"includeInResume,omitempty"`
}

// Education is one school entry.
type Education struct {
	ID              string `json:"id" bson:"id"`
	School          string `json:"school" bson:"school"`
	Degree          string `json:"degree,omitempty" bson:"degree,omitempty"`
	Field           string `json:"field,omitempty" bson:"field,omitempty"`
	Location        string `json:"location,omitempty" bson:"location,omitempty"`
	StartDate       string `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty" bson:"endDate,omitempty"`
	GPA             string `json:"gpa,omitempty" bson:"gpa,omitempty"`
	IncludeInResume *bool  `json:"includeInResume,omitempty" bson:"includeInResume,omitempty"`
}

// Skill is a named skill with a free-text domain label.
// Domains are grouped by literal string equality, so "Frontend" and
// "frontend" land in different groups.
type Skill struct {
	ID              string `json:"id" bson:"id"`
	Name            string `json:"name" bson:"name"`
	Domain          string `json:"domain,omitempty" bson:"domain,omitempty"`
	IncludeInResume *bool  `json:"includeInResume,omitempty" bson:"includeInResume,omitempty"`
}

// Project is a personal or professional project entry.
type Project struct {
	ID              string `json:"id" bson:"id"`
	Title           string `json:"title" bson:"title"`
	Description     string `json:"description,omitempty" bson:"description,omitempty"`
	Technologies    string `json:"technologies,omitempty" bson:"technologies,omitempty"`
	StartDate       string `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty" bson:"endDate,omitempty"`
	GithubURL       string `json:"githubUrl,omitempty" bson:"githubUrl,omitempty"`
	LiveURL         string `json:"liveUrl,omitempty" bson:"liveUrl,omitempty"`
	IncludeInResume *bool  `json:"includeInResume,omitempty" bson:"includeInResume,omitempty"`
}

// Certificate is a certification entry.
type Certificate struct {
	ID              string `json:"id" bson:"id"`
	Name            string `json:"name" bson:"name"`
	Issuer          string `json:"issuer,omitempty" bson:"issuer,omitempty"`
	Date            string `json:"date,omitempty" bson:"date,omitempty"`
	URL             string `json:"url,omitempty" bson:"url,omitempty"`
	IncludeInResume *bool  `json:"includeInResume,omitempty" bson:"includeInResume,omitempty"`
}

// Section names accepted by AppendToArray.
const (
	SectionExperience   = "experience"
	SectionEducation    = "education"
	SectionSkills       = "skills"
	SectionProjects     = "projects"
	SectionCertificates = "certificates"
)

// IsSection reports whether name is an appendable profile collection.
func IsSection(name string) bool {
	switch name {
	case SectionExperience, SectionEducation, SectionSkills, SectionProjects, SectionCertificates:
		return true
	}
	return false
}

// included treats an absent flag as true.
func included(flag *bool) bool {
	return flag == nil || *flag
}

// Included reports whether the entry should appear in generated output.
func (e Experience) Included() bool { return included(e.IncludeInResume) }

// Included reports whether the entry should appear in generated output.
func (e Education) Included() bool { return included(e.IncludeInResume) }

// Included reports whether the entry should appear in generated output.
func (s Skill) Included() bool { return included(s.IncludeInResume) }

// Included reports whether the entry should appear in generated output.
func (p Project) Included() bool { return included(p.IncludeInResume) }

// Included reports whether the entry should appear in generated output.
func (c Certificate) Included() bool { return included(c.IncludeInResume) }

// Bool returns a pointer to b, for building inclusion flags.
func Bool(b bool) *bool { return &b }

// AssignIDs gives every collection element without an ID a fresh uuid.
// Existing IDs are left untouched.
func (p *Profile) AssignIDs() {
	for i := range p.Experience {
		p.Experience[i].ID = ensureID(p.Experience[i].ID)
	}
	for i := range p.Education {
		p.Education[i].ID = ensureID(p.Education[i].ID)
	}
	for i := range p.Skills {
		p.Skills[i].ID = ensureID(p.Skills[i].ID)
	}
	for i := range p.Projects {
		p.Projects[i].ID = ensureID(p.Projects[i].ID)
	}
	for i := range p.Certificates {
		p.Certificates[i].ID = ensureID(p.Certificates[i].ID)
	}
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Clone returns a deep copy of the profile, including inclusion flags.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Experience = append([]Experience(nil), p.Experience...)
	for i := range c.Experience {
		c.Experience[i].IncludeInResume = cloneFlag(c.Experience[i].IncludeInResume)
	}
	c.Education = append([]Education(nil), p.Education...)
	for i := range c.Education {
		c.Education[i].IncludeInResume = cloneFlag(c.Education[i].IncludeInResume)
	}
	c.Skills = append([]Skill(nil), p.Skills...)
	for i := range c.Skills {
		c.Skills[i].IncludeInResume = cloneFlag(c.Skills[i].IncludeInResume)
	}
	c.Projects = append([]Project(nil), p.Projects...)
	for i := range c.Projects {
		c.Projects[i].IncludeInResume = cloneFlag(c.Projects[i].IncludeInResume)
	}
	c.Certificates = append([]Certificate(nil), p.Certificates...)
	for i := range c.Certificates {
		c.Certificates[i].IncludeInResume = cloneFlag(c.Certificates[i].IncludeInResume)
	}
	return &c
}

func cloneFlag(flag *bool) *bool {
	if flag == nil {
		return nil
	}
	return Bool(*flag)
}
