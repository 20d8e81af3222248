package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
	}{
		{"not found", NotFound("snippet", "abc"), ErrNotFound},
		{"validation", ValidationFailed("title", "too long"), ErrValidation},
		{"conflict", Conflict("user", "alice"), ErrConflict},
		{"forbidden", Forbidden("no"), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			for _, other := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrForbidden} {
				if other != tt.sentinel && errors.Is(tt.err, other) {
					t.Errorf("%v also matches %v", tt.err, other)
				}
			}
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching snippet: %w", NotFound("snippet", "abc"))

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapping broke errors.Is classification")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("wrapping broke errors.As recovery")
	}
	if appErr.Message != "snippet not found with id abc" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationFailed("language", "unknown language")
	if err.Field != "language" {
		t.Errorf("Field = %q, want language", err.Field)
	}
	if err.Error() != "unknown language" {
		t.Errorf("Error() = %q", err.Error())
	}
}
