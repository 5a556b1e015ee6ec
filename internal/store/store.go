// Package store persists profiles and job postings in a document store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

var errNilProfile = errors.New("profile is required")

// ProfileStore is the profile document collection. One document per user id.
type ProfileStore interface {
	FindOne(ctx context.Context, userID string) (*types.Profile, error)
	// Upsert replaces the whole document. Concurrent writers race; the last write wins.
	Upsert(ctx context.Context, userID string, profile *types.Profile) error
	// AppendToArray pushes one element onto a profile collection, creating
	// the document if needed.
	AppendToArray(ctx context.Context, userID, section string, element any) error
}

// JobPostingStore is the job posting collection.
type JobPostingStore interface {
	CreateJobPosting(ctx context.Context, posting *types.JobPosting) error
	GetJobPosting(ctx context.Context, id string) (*types.JobPosting, error)
	ListJobPostings(ctx context.Context, recruiterID string) ([]types.JobPosting, error)
}

// SectionError reports an append to an unknown collection or with the wrong element type.
type SectionError struct {
	Section string
	Message string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %q: %s", e.Section, e.Message)
}

// DecodeElement decodes a JSON collection element for section and assigns it
// an ID when it has none.
func DecodeElement(section string, data []byte) (any, error) {
	switch section {
	case types.SectionExperience:
		var e types.Experience
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode experience: %w", err)
		}
		e.ID = ensureID(e.ID)
		return e, nil
	case types.SectionEducation:
		var e types.Education
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode education: %w", err)
		}
		e.ID = ensureID(e.ID)
		return e, nil
	case types.SectionSkills:
		var s types.Skill
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode skill: %w", err)
		}
		s.ID = ensureID(s.ID)
		return s, nil
	case types.SectionProjects:
		var p types.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		p.ID = ensureID(p.ID)
		return p, nil
	case types.SectionCertificates:
		var c types.Certificate
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode certificate: %w", err)
		}
		c.ID = ensureID(c.ID)
		return c, nil
	}
	return nil, &SectionError{Section: section, Message: "unknown section"}
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// withEmptyCollections replaces nil collections so $push never meets a null field.
func withEmptyCollections(p *types.Profile) *types.Profile {
	if p.Experience == nil {
		p.Experience = []types.Experience{}
	}
	if p.Education == nil {
		p.Education = []types.Education{}
	}
	if p.Skills == nil {
		p.Skills = []types.Skill{}
	}
	if p.Projects == nil {
		p.Projects = []types.Project{}
	}
	if p.Certificates == nil {
		p.Certificates = []types.Certificate{}
	}
	return p
}

// checkElement verifies element has the Go type section stores.
func checkElement(section string, element any) error {
	ok := false
	switch section {
	case types.SectionExperience:
		_, ok = element.(types.Experience)
	case types.SectionEducation:
		_, ok = element.(types.Education)
	case types.SectionSkills:
		_, ok = element.(types.Skill)
	case types.SectionProjects:
		_, ok = element.(types.Project)
	case types.SectionCertificates:
		_, ok = element.(types.Certificate)
	default:
		return &SectionError{Section: section, Message: "unknown section"}
	}
	if !ok {
		return &SectionError{Section: section, Message: fmt.Sprintf("unexpected element type %T", element)}
	}
	return nil
}
