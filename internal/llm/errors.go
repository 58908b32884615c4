package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("response contained no text")

// StatusError is an upstream failure reduced to an HTTP status and a readable message.
// StatusCode is 0 when the failure happened before a response was received.
type StatusError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *StatusError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("generation API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation API call failed: %s", e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// AsStatusError extracts the upstream status and message from err.
// It returns nil for a nil error.
func AsStatusError(err error) *StatusError {
	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		msg := gErr.Message
		if msg == "" {
			msg = gErr.Error()
		}
		return &StatusError{StatusCode: gErr.Code, Message: msg, Cause: err}
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPCode()
		if code < 0 {
			code = 0
		}
		msg := apiErr.Reason()
		if st := apiErr.GRPCStatus(); st != nil && st.Message() != "" {
			msg = st.Message()
		}
		if msg == "" {
			msg = apiErr.Error()
		}
		return &StatusError{StatusCode: code, Message: msg, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &StatusError{Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &StatusError{Message: "request canceled", Cause: err}
	}

	return &StatusError{Message: err.Error(), Cause: err}
}
