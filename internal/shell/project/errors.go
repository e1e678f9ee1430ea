package project

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrInvalidYAML    = errors.New("invalid YAML syntax")
	ErrInvalidEnvFile = errors.New("invalid env file")
	ErrInvalidProject = errors.New("invalid compose project")
)

// LoadError wraps errors with the file that failed to load.
type LoadError struct {
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(file, message string, err error) *LoadError {
	return &LoadError{
		File:    file,
		Message: message,
		Err:     err,
	}
}
