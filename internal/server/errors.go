package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/generation"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrAuthRequired is returned when an anonymous client calls an endpoint that needs a login.
type ErrAuthRequired struct {
	Reason string
}

func (e *ErrAuthRequired) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "authentication required"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrRateLimited is returned when a client exceeds its hourly generation allowance.
type ErrRateLimited struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limit of %d requests per hour exceeded, retry in %s", e.Limit, e.RetryAfter.Round(time.Second))
}

// ErrFeatureDisabled is returned for endpoints switched off by configuration.
type ErrFeatureDisabled struct {
	Feature string
}

func (e *ErrFeatureDisabled) Error() string {
	return fmt.Sprintf("%s is not available", e.Feature)
}

// JobFetchError wraps a failure to retrieve a job posting named by URL.
type JobFetchError struct {
	URL   string
	Cause error
}

func (e *JobFetchError) Error() string {
	return fmt.Sprintf("failed to fetch job description from %s: %v", e.URL, e.Cause)
}

func (e *JobFetchError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		authReq     *ErrAuthRequired
		valErr      *ErrValidation
		genValErr   *generation.ValidationError
		fieldErrs   validator.ValidationErrors
		limited     *ErrRateLimited
		disabled    *ErrFeatureDisabled
		fetchErr    *JobFetchError
		upstream    *generation.ExternalServiceError
		malformed   *generation.MalformedResponseError
		notFound    *cv.EntryNotFoundError
	)
	switch {
	case errors.As(err, &emailExists), errors.Is(err, db.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &authReq):
		return http.StatusUnauthorized
	case errors.As(err, &valErr), errors.As(err, &genValErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &disabled), errors.As(err, &notFound), errors.Is(err, db.ErrCVNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &upstream), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failure is the data of an unsuccessful envelope.
type failure struct {
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// failureFor builds the client-facing description of err. Unclassified errors
// are reported generically.
func failureFor(err error, status int) failure {
	if status == http.StatusInternalServerError {
		return failure{Message: "internal server error"}
	}

	f := failure{Message: err.Error()}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		f.Message = extractValidationErrors(fieldErrs)
	}

	var upstream *generation.ExternalServiceError
	if errors.As(err, &upstream) {
		f.Message = "failed to generate content"
		if upstream.Message != "" {
			f.Message += ": " + upstream.Message
		}
		f.Details = upstream.Message
		f.StatusCode = upstream.StatusCode
	}

	var malformed *generation.MalformedResponseError
	if errors.As(err, &malformed) {
		f.Message = fmt.Sprintf("could not parse generated content for %s", malformed.Kind)
		f.Details = err.Error()
	}

	var limited *ErrRateLimited
	if errors.As(err, &limited) {
		f.RetryAfter = int(limited.RetryAfter.Seconds())
	}
	return f
}

// extractValidationErrors reports the first failed field of a validator error.
func extractValidationErrors(errs validator.ValidationErrors) string {
	if len(errs) > 0 {
		ve := errs[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
