package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/generation"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"duplicate email from db", fmt.Errorf("insert: %w", db.ErrDuplicateEmail), http.StatusConflict},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"auth required", &ErrAuthRequired{}, http.StatusUnauthorized},
		{"request validation", &ErrValidation{Field: "body"}, http.StatusBadRequest},
		{"generation validation", &generation.ValidationError{Field: "userInput"}, http.StatusBadRequest},
		{"rate limited", &ErrRateLimited{Limit: 10}, http.StatusTooManyRequests},
		{"feature disabled", &ErrFeatureDisabled{Feature: "x"}, http.StatusNotFound},
		{"entry not found", &cv.EntryNotFoundError{Section: cv.SectionSkills, ID: "s"}, http.StatusNotFound},
		{"saved cv not found", db.ErrCVNotFound, http.StatusNotFound},
		{"job fetch", &JobFetchError{URL: "u", Cause: errors.New("timeout")}, http.StatusBadGateway},
		{"upstream", &generation.ExternalServiceError{StatusCode: 500}, http.StatusBadGateway},
		{"wrapped upstream", fmt.Errorf("ctx: %w", &generation.ExternalServiceError{}), http.StatusBadGateway},
		{"malformed", &generation.MalformedResponseError{}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFailureFor(t *testing.T) {
	t.Run("internal errors are not echoed", func(t *testing.T) {
		f := failureFor(errors.New("pq: password authentication failed"), http.StatusInternalServerError)
		assert.Equal(t, "internal server error", f.Message)
		assert.Empty(t, f.Details)
	})

	t.Run("upstream status is carried", func(t *testing.T) {
		err := &generation.ExternalServiceError{Kind: generation.KindSummary, StatusCode: 503, Message: "overloaded"}
		f := failureFor(err, HTTPStatus(err))
		assert.Equal(t, 503, f.StatusCode)
		assert.Equal(t, "failed to generate content: overloaded", f.Message)
		assert.Equal(t, "overloaded", f.Details)
	})

	t.Run("upstream without a message", func(t *testing.T) {
		err := &generation.ExternalServiceError{Kind: generation.KindSummary, StatusCode: 500}
		f := failureFor(err, HTTPStatus(err))
		assert.Equal(t, "failed to generate content", f.Message)
	})

	t.Run("retry after in seconds", func(t *testing.T) {
		err := &ErrRateLimited{Limit: 10, RetryAfter: 90 * time.Second}
		f := failureFor(err, HTTPStatus(err))
		assert.Equal(t, 90, f.RetryAfter)
		assert.Contains(t, f.Message, "10 requests per hour")
	})
}

func TestJobFetchError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &JobFetchError{URL: "https://example.com/job", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://example.com/job")
}
