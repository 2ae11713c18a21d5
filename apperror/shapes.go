package apperror

import (
	"fmt"
	"strings"
)

// CastError reports a value that could not be converted to the type of
// the field it was compared against
type CastError struct {
	Path  string
	Value string
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast failed for value %q at path %q", e.Value, e.Path)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// FieldError is a single failed validation rule
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every rule that failed for a document
type ValidationError struct {
	Errors []FieldError
}

// Add records a failed rule
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Messages returns the per-field messages in the order they were added
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
