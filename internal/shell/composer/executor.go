// Package composer runs the docker compose tool for an Invocation.
// This is part of the Imperative Shell - it spawns processes.
package composer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/artpar/appcompose/internal/core/compose"
	"github.com/google/uuid"
)

// =============================================================================
// Modes
// =============================================================================

// Mode selects how the child process's output is handled.
type Mode int

const (
	// ModeCapture collects stdout and stderr and returns them.
	ModeCapture Mode = iota
	// ModeStream lets the child write directly to the caller's streams.
	ModeStream
)

func (m Mode) String() string {
	switch m {
	case ModeCapture:
		return "capture"
	case ModeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Result holds the captured output of a compose invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// =============================================================================
// Executor
// =============================================================================

// DefaultBinary is the container tool invoked when none is configured.
const DefaultBinary = "docker"

// Executor runs `<binary> compose <args...>`.
// Each call starts one process and waits for it; there is no retry or timeout.
type Executor struct {
	binary   string
	baseArgs []string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithBaseArgs replaces the arguments placed before the invocation's own,
// "compose" by default.
func WithBaseArgs(args ...string) Option {
	return func(e *Executor) {
		e.baseArgs = append([]string(nil), args...)
	}
}

// WithStreams sets the streams inherited by streaming invocations.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// NewExecutor creates an Executor for binary. An empty binary means DefaultBinary.
func NewExecutor(binary string, logger *slog.Logger, opts ...Option) *Executor {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		binary:   binary,
		baseArgs: []string{"compose"},
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommandLine returns the full argv that would be executed for args.
func (e *Executor) CommandLine(args []string) []string {
	out := append([]string{e.binary}, e.baseArgs...)
	return append(out, args...)
}

// Run executes inv in the given mode.
// In ModeStream the returned Result is empty.
func (e *Executor) Run(ctx context.Context, mode Mode, inv *compose.Invocation) (*Result, error) {
	return e.run(ctx, mode, inv.AppID, inv.Argv())
}

// Stream runs the tool with the caller's streams and waits for it to exit.
func (e *Executor) Stream(ctx context.Context, args []string) error {
	_, err := e.run(ctx, ModeStream, "", args)
	return err
}

// Capture runs the tool and returns its stdout and stderr.
// Non-empty stderr is logged but is not treated as a failure.
func (e *Executor) Capture(ctx context.Context, args []string) (*Result, error) {
	return e.run(ctx, ModeCapture, "", args)
}

func (e *Executor) run(ctx context.Context, mode Mode, appID string, args []string) (*Result, error) {
	id := uuid.New().String()
	logger := e.logger.With(
		"invocation_id", id,
		"mode", mode.String(),
	)
	if appID != "" {
		logger = logger.With("app_id", appID)
	}

	argv := append(append([]string(nil), e.baseArgs...), args...)
	logger.Debug("running compose",
		"command", e.binary+" "+strings.Join(argv, " "),
	)

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.binary, argv...)

	var stdout, stderr bytes.Buffer
	if mode == ModeStream {
		cmd.Stdin = e.stdin
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	runErr := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		execErr := e.newExecError(mode, runErr)
		execErr.Stdout = result.Stdout
		execErr.Stderr = result.Stderr
		result.ExitCode = execErr.ExitCode

		logger.Debug("compose failed",
			"exit_code", execErr.ExitCode,
			"duration", time.Since(start),
			"error", runErr,
		)
		return result, execErr
	}

	if mode == ModeCapture && result.Stderr != "" {
		logger.Error("compose wrote to stderr", "stderr", strings.TrimRight(result.Stderr, "\n"))
	}

	logger.Debug("compose finished",
		"exit_code", 0,
		"duration", time.Since(start),
	)
	return result, nil
}

func (e *Executor) newExecError(mode Mode, err error) *ExecError {
	execErr := &ExecError{
		Command: strings.TrimSpace(e.binary + " " + strings.Join(e.baseArgs, " ")),
		Mode:    mode,
		Err:     err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		execErr.Kind = ErrNonZeroExit
		execErr.ExitCode = exitErr.ExitCode()
		return execErr
	}

	execErr.Kind = ErrSpawnFailed
	execErr.ExitCode = -1
	return execErr
}
