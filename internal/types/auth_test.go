package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
	}{
		{
			name:    "valid candidate",
			request: RegisterRequest{Name: "John Doe", Email: "john@example.com", Password: "password123"},
		},
		{
			name:    "valid recruiter",
			request: RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password123", Role: RoleRecruiter},
		},
		{
			name:    "unknown role",
			request: RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password123", Role: "admin"},
			wantErr: true,
		},
		{
			name:    "short password",
			request: RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "short"},
			wantErr: true,
		},
		{
			name:    "bad email",
			request: RegisterRequest{Name: "Jane", Email: "not-an-email", Password: "password123"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "a@b.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "a@b.com"}).Validate())
}

func TestCreateJobPostingRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateJobPostingRequest{Title: "SWE", Company: "Acme", Description: "Build things"}).Validate())
	assert.NoError(t, (&CreateJobPostingRequest{Title: "SWE", Company: "Acme", SourceURL: "https://jobs.acme.com/1"}).Validate())
	assert.Error(t, (&CreateJobPostingRequest{Title: "SWE", Company: "Acme"}).Validate())
	assert.Error(t, (&CreateJobPostingRequest{Title: "SWE", Company: "Acme", Description: "x", EmploymentType: "gig"}).Validate())
}
