package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/store"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSubscriptionRequired is returned by the billing gate.
var ErrSubscriptionRequired = errors.New("an active subscription is required")

// classify maps an error to an HTTP status and a stable reason code.
func classify(err error) (int, string) {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		inputErr      *agents.InputError
		sectionErr    *store.SectionError
		keyErr        *session.KeyError
		credErr       *ErrInvalidCredentials
		stageErr      *agents.StageError
		failedErr     *pipeline.FailedError
		canceledErr   *pipeline.CanceledError
		fetchErr      *fetch.Error
		compileErr    *export.CompilationError
		archiveErr    *export.ArchiveError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &sectionErr):
		return http.StatusBadRequest, "invalid_section"
	case errors.As(err, &keyErr):
		return http.StatusBadRequest, "invalid_session_id"
	case errors.As(err, &credErr):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, ErrSubscriptionRequired):
		return http.StatusPaymentRequired, "subscription_required"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.As(err, &canceledErr), errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled"
	case errors.As(err, &failedErr):
		return http.StatusBadGateway, "stage_failed:" + string(failedErr.Stage)
	case errors.As(err, &stageErr):
		if stageErr.Kind == agents.FailureTimeout {
			return http.StatusGatewayTimeout, "stage_timeout:" + string(stageErr.Stage)
		}
		return http.StatusBadGateway, "stage_failed:" + string(stageErr.Stage)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "import_failed"
	case errors.Is(err, export.ErrToolchainMissing):
		return http.StatusServiceUnavailable, "pdf_unavailable"
	case errors.As(err, &compileErr):
		return http.StatusUnprocessableEntity, "latex_compile_failed"
	case errors.As(err, &archiveErr):
		return http.StatusBadGateway, "archive_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// validationError reports the first failed validator rule of err.
func validationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: "failed " + fe.Tag() + " rule"}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}
