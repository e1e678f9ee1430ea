package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// App ID errors
	ErrEmptyAppID   = errors.New("app id is empty")
	ErrInvalidAppID = errors.New("app id must contain only a-z, 0-9, '-' or '_'")

	// Command errors
	ErrEmptyCommand   = errors.New("compose command is empty")
	ErrInvalidCommand = errors.New("compose command could not be parsed")

	// Filesystem errors
	ErrProbeFailed = errors.New("filesystem probe failed")
)

// BuildError wraps errors with the step and path that failed.
type BuildError struct {
	Op   string // e.g. "probe"
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError.
func NewBuildError(op, path string, err error) *BuildError {
	return &BuildError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
