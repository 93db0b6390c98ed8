package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingEmailField = errors.New("no email field found")
	ErrForumUnavailable  = errors.New("forum information not available")
	ErrAlreadySent       = errors.New("outcome email already sent")
	ErrDuplicateAttendee = errors.New("attendee already registered for this forum")
)

// ValidationError reports a rejected input value. It matches ErrInvalidInput
// with errors.Is so callers can branch on either form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError wraps a failure reported by an external provider (CRM, form
// source, email or chat). Message carries the provider's own text.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Message)
}
