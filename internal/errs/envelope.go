package errs

import (
	"fmt"
	"net/http"
)

// EnvelopeError is returned by handlers when a storage call fails.
//
// Unlike HTTPError it is rendered in the response envelope format
// ({statusCode, message, data}) with StatusCode used as the transport
// status as well. Err keeps the original cause for logging and tracing.
type EnvelopeError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

// NewStorageError creates a 503 EnvelopeError carrying the raw error payload.
func NewStorageError(message string, payload interface{}, cause error) *EnvelopeError {
	return &EnvelopeError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    message,
		Data:       payload,
		Err:        cause,
	}
}

func (e *EnvelopeError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}
