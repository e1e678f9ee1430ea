package environment

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a required environment setting is empty.
var ErrMissingField = errors.New("missing environment field")

// FieldError names the environment field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("environment: %s is required", e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a FieldError for a missing field.
func NewFieldError(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingField}
}
