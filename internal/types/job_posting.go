package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// JobPosting is a recruiter-owned job listing.
type JobPosting struct {
	ID             string    `json:"id" bson:"_id"`
	RecruiterID    string    `json:"recruiterId" bson:"recruiterId"`
	Title          string    `json:"title" bson:"title"`
	Company        string    `json:"company" bson:"company"`
	Location       string    `json:"location,omitempty" bson:"location,omitempty"`
	EmploymentType string    `json:"employmentType,omitempty" bson:"employmentType,omitempty"`
	Description    string    `json:"description" bson:"description"`
	SourceURL      string    `json:"sourceUrl,omitempty" bson:"sourceUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateJobPostingRequest is the body of POST /v1/jobs.
// Description may be empty when SourceURL is set; the server imports it.
type CreateJobPostingRequest struct {
	Title          string `json:"title" validate:"required"`
	Company        string `json:"company" validate:"required"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employmentType,omitempty" validate:"omitempty,oneof=full-time part-time contract internship"`
	Description    string `json:"description,omitempty" validate:"required_without=SourceURL"`
	SourceURL      string `json:"sourceUrl,omitempty" validate:"omitempty,url"`
}

// Validate validates the CreateJobPostingRequest using the validator.
func (r *CreateJobPostingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
