package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes (404 and 403 respectively).
var (
	ErrNotFound  = errors.New("todo not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries per-field validation messages, keyed by the JSON
// field name. Handlers render it as a 422 with the field-error map.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field string, messages ...string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: messages}}
}
