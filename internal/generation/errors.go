package generation

import "fmt"

// maxRawInError bounds how much of a bad response is echoed back in errors.
const maxRawInError = 500

// ValidationError is returned before any network call when the request is incomplete.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ExternalServiceError wraps a transport failure or non-success status from the generation API.
// StatusCode is 0 when no response was received.
type ExternalServiceError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to generate content (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("failed to generate content: %s", e.Message)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError is returned when a successful response cannot be parsed into
// the shape required by an entry, document, or tailoring kind.
type MalformedResponseError struct {
	Kind  Kind
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError] + "..."
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid format for %s: %v. Raw: %s", e.Kind, e.Cause, raw)
	}
	return fmt.Sprintf("invalid format for %s. Raw: %s", e.Kind, raw)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
