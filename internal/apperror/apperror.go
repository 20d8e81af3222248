// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer maps them onto status
// codes (validation → 400, forbidden → 403, not found → 404, conflict → 409)
// in exactly one place. Use errors.Is against the sentinels to classify, and
// errors.As to recover the *AppError for its message and field.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// AppError carries a sentinel plus human-readable context. Field is set for
// validation errors caused by a single request field.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource doesn't exist, or is excluded from the
// requester's visibility scope, which must be indistinguishable.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a bad, missing, oversized or out-of-enum field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation (e.g. duplicate username).
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Forbidden reports a policy denial. No detail beyond the denial itself is
// exposed to the caller.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
