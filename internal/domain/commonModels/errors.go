package commonModels

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document or job does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError marks bad caller input.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// UpstreamServiceError wraps a failure of an external dependency.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func NewUpstreamError(service string, err error) *UpstreamServiceError {
	return &UpstreamServiceError{Service: service, Err: err}
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error {
	return e.Err
}

// PerItemCleanupError is a single failed delete during a sweep. It is logged
// and counted, never returned to a caller.
type PerItemCleanupError struct {
	StorageKey string
	Err        error
}

func (e *PerItemCleanupError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.StorageKey, e.Err)
}

func (e *PerItemCleanupError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUpstreamError(err error) bool {
	var u *UpstreamServiceError
	return errors.As(err, &u)
}
