package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/types"
)

// Memory is an in-process ProfileStore and JobPostingStore used by tests and
// the CLI when no MONGO_URI is configured.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*types.Profile
	postings map[string]types.JobPosting
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*types.Profile),
		postings: make(map[string]types.JobPosting),
	}
}

// FindOne returns the profile for userID, or ErrNotFound.
func (m *Memory) FindOne(_ context.Context, userID string) (*types.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Upsert replaces the profile for userID, creating it when absent.
func (m *Memory) Upsert(_ context.Context, userID string, profile *types.Profile) error {
	if profile == nil {
		return errNilProfile
	}
	c := profile.Clone()
	c.UserID = userID
	m.mu.Lock()
	m.profiles[userID] = c
	m.mu.Unlock()
	return nil
}

// AppendToArray pushes element onto a profile section, creating the profile when absent.
func (m *Memory) AppendToArray(_ context.Context, userID, section string, element any) error {
	if err := checkElement(section, element); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		p = &types.Profile{UserID: userID}
		m.profiles[userID] = p
	}
	switch e := element.(type) {
	case types.Experience:
		p.Experience = append(p.Experience, e)
	case types.Education:
		p.Education = append(p.Education, e)
	case types.Skill:
		p.Skills = append(p.Skills, e)
	case types.Project:
		p.Projects = append(p.Projects, e)
	case types.Certificate:
		p.Certificates = append(p.Certificates, e)
	}
	return nil
}

// CreateJobPosting inserts a job posting.
func (m *Memory) CreateJobPosting(_ context.Context, posting *types.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	posting.ID = ensureID(posting.ID)
	if posting.CreatedAt.IsZero() {
		posting.CreatedAt = time.Now().UTC()
	}
	m.postings[posting.ID] = *posting
	return nil
}

// GetJobPosting returns the posting with id, or ErrNotFound.
func (m *Memory) GetJobPosting(_ context.Context, id string) (*types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.postings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// ListJobPostings returns the recruiter's postings, newest first.
func (m *Memory) ListJobPostings(_ context.Context, recruiterID string) ([]types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []types.JobPosting{}
	for _, p := range m.postings {
		if p.RecruiterID == recruiterID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
