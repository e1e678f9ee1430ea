package composer

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrSpawnFailed is returned when the compose tool could not be started.
	ErrSpawnFailed = errors.New("compose tool could not be started")

	// ErrNonZeroExit is returned when the compose tool exits with a non-zero code.
	ErrNonZeroExit = errors.New("compose tool exited with non-zero code")
)

// ExecError describes a failed compose invocation.
// Stdout and Stderr are only set for captured invocations.
type ExecError struct {
	Command  string // e.g. "docker compose"
	Mode     Mode
	ExitCode int
	Stdout   string
	Stderr   string
	Kind     error // ErrSpawnFailed or ErrNonZeroExit
	Err      error
}

func (e *ExecError) Error() string {
	if errors.Is(e.Kind, ErrSpawnFailed) {
		return fmt.Sprintf("%s: failed to start: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

func (e *ExecError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ExitCodeOf returns the exit code carried by err, or -1 if err is not an ExecError.
func ExitCodeOf(err error) int {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr.ExitCode
	}
	return -1
}
