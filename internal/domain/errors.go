package domain

import (
	"errors"
	"strings"
)

// Domain-specific errors for business logic validation.
var (
	// Identity errors
	ErrUnauthenticated = errors.New("authentication required")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")

	// Lookup errors
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEscalationNotFound = errors.New("escalation not found")

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// State errors
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// ValidationError lists the fields that failed validation.
// It unwraps to ErrValidation so callers can match with errors.Is.
type ValidationError struct {
	Fields []string
}

// NewValidationError creates a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
