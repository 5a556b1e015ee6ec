//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/types"
)

func newTestMongo(t *testing.T) *Mongo {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := ConnectMongo(ctx, uri, "resume_builder_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func TestMongo_ProfileLifecycle(t *testing.T) {
	m := newTestMongo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := m.FindOne(ctx, userID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, m.Upsert(ctx, userID, &types.Profile{Name: "Ada"}))
	require.NoError(t, m.AppendToArray(ctx, userID, types.SectionSkills, types.Skill{ID: "s1", Name: "Go", Domain: "Languages"}))
	require.NoError(t, m.AppendToArray(ctx, userID, types.SectionSkills, types.Skill{ID: "s2", Name: "SQL", IncludeInResume: types.Bool(false)}))

	p, err := m.FindOne(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "Ada", p.Name)
	require.Len(t, p.Skills, 2)
	assert.False(t, p.Skills[1].Included())
}

func TestMongo_AppendCreatesDocument(t *testing.T) {
	m := newTestMongo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	require.NoError(t, m.AppendToArray(ctx, userID, types.SectionProjects, types.Project{ID: "p1", Title: "Tool"}))
	p, err := m.FindOne(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Projects, 1)
}

func TestMongo_JobPostings(t *testing.T) {
	m := newTestMongo(t)
	ctx := context.Background()
	recruiter := uuid.NewString()

	posting := &types.JobPosting{RecruiterID: recruiter, Title: "Go Engineer", Company: "Acme", Description: "Build things"}
	require.NoError(t, m.CreateJobPosting(ctx, posting))

	got, err := m.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)

	list, err := m.ListJobPostings(ctx, recruiter)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
