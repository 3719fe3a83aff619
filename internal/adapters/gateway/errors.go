package gateway

import (
	"errors"
	"fmt"
)

// Remote failure classes. Callers match them with errors.Is.
var (
	ErrNetworkFailure    = errors.New("volunteer service unreachable")
	ErrMalformedResponse = errors.New("volunteer service returned a malformed response")
	ErrActionRejected    = errors.New("volunteer service rejected the action")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // server-provided message, if any
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap classifies every status error as a network failure.
func (e *StatusError) Unwrap() error {
	return ErrNetworkFailure
}

func malformed(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, path, fmt.Sprintf(format, args...))
}
