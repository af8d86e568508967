package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrListingFailed   = errors.New("service domain listing failed")
	ErrInvalidResponse = errors.New("invalid response")
	ErrExecution       = errors.New("execution error")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindInvalidConfig   ErrorKind = "invalid_config"
	KindHTTPStatus      ErrorKind = "http_status"
	KindTransport       ErrorKind = "transport"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindExecution       ErrorKind = "execution"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op     string
	Kind   ErrorKind
	Path   string // Optional: relevant file path or URL
	Status int    // Optional: HTTP status code
	Body   string // Optional: response body for non-success statuses
	Err    error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Status != 0 {
		base += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	if e.Body != "" {
		base += fmt.Sprintf(": body=%q", e.Body)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Status
	}
	return 0
}
