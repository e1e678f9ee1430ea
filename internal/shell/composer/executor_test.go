package composer

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/artpar/appcompose/internal/core/compose"
	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available:", err)
	}
}

// shellExecutor runs script through sh instead of docker compose.
// Invocation arguments become the script's positional parameters.
func shellExecutor(script string, logger *slog.Logger, opts ...Option) *Executor {
	opts = append([]Option{WithBaseArgs("-c", script, "sh")}, opts...)
	return NewExecutor("sh", logger, opts...)
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

type noProbe struct{}

func (noProbe) Exists(string) (bool, error) { return false, nil }

// =============================================================================
// Capture Tests
// =============================================================================

func TestCapture_StderrIsLoggedNotFailure(t *testing.T) {
	requireShell(t)
	logger, logs := testLogger()
	e := shellExecutor(`echo started; echo "warning: deprecated option" >&2`, logger)

	res, err := e.Capture(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "started\n", res.Stdout)
	assert.Equal(t, "warning: deprecated option\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), `msg="compose wrote to stderr"`)
	assert.Contains(t, logs.String(), `stderr="warning: deprecated option"`)
}

func TestCapture_NoStderrNoErrorLog(t *testing.T) {
	requireShell(t)
	logger, logs := testLogger()
	e := shellExecutor(`echo ok`, logger)

	res, err := e.Capture(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestCapture_NonZeroExit(t *testing.T) {
	requireShell(t)
	logger, logs := testLogger()
	e := shellExecutor(`echo partial; echo boom >&2; exit 3`, logger)

	res, err := e.Capture(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonZeroExit)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Equal(t, "partial\n", execErr.Stdout)
	assert.Equal(t, "boom\n", execErr.Stderr)
	assert.Equal(t, ModeCapture, execErr.Mode)

	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.Equal(t, 3, ExitCodeOf(err))

	// stderr travels with the error instead of being logged
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestCapture_SpawnFailure(t *testing.T) {
	logger, _ := testLogger()
	e := NewExecutor("/nonexistent/bin/docker-appcompose-test", logger)

	_, err := e.Capture(context.Background(), []string{"ps"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawnFailed)
	assert.NotErrorIs(t, err, ErrNonZeroExit)
	assert.Contains(t, err.Error(), "failed to start")
	assert.Equal(t, -1, ExitCodeOf(err))
}

// =============================================================================
// Stream Tests
// =============================================================================

func TestStream_Success(t *testing.T) {
	requireShell(t)
	logger, _ := testLogger()
	var stdout, stderr bytes.Buffer
	e := shellExecutor(`echo streamed; echo note >&2`, logger, WithStreams(strings.NewReader(""), &stdout, &stderr))

	err := e.Stream(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", stdout.String())
	assert.Equal(t, "note\n", stderr.String())
}

func TestStream_ExitCodeOne(t *testing.T) {
	requireShell(t)
	logger, _ := testLogger()
	var out bytes.Buffer
	e := shellExecutor(`exit 1`, logger, WithStreams(nil, &out, &out))

	err := e.Stream(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonZeroExit)
	assert.Contains(t, err.Error(), "1")
	assert.Contains(t, err.Error(), "exited with code 1")
	assert.Equal(t, 1, ExitCodeOf(err))
}

func TestStream_SpawnFailure(t *testing.T) {
	logger, _ := testLogger()
	e := NewExecutor("/nonexistent/bin/docker-appcompose-test", logger)

	err := e.Stream(context.Background(), []string{"up"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawnFailed)
}

// =============================================================================
// Invocation Tests
// =============================================================================

func TestRun_PassesInvocationArgv(t *testing.T) {
	requireShell(t)
	logger, logs := testLogger()
	e := shellExecutor(`printf '%s\n' "$@"`, logger)

	env := environment.Env{
		Arch:           environment.ArchX64,
		RootFolderHost: "/runtipi",
		AppsRepoID:     "repo",
		StoragePath:    "/storage",
	}
	inv, err := compose.BuildInvocation(env, "jellyfin", "up -d", noProbe{})
	require.NoError(t, err)

	res, err := e.Run(context.Background(), ModeCapture, inv)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(res.Stdout, "\n"), "\n")
	assert.Equal(t, inv.Argv(), lines)
	assert.Contains(t, logs.String(), "app_id=jellyfin")
	assert.Contains(t, logs.String(), "invocation_id=")
}

func TestNewExecutor_Defaults(t *testing.T) {
	e := NewExecutor("", nil)
	assert.Equal(t, []string{"docker", "compose", "up", "-d"}, e.CommandLine([]string{"up", "-d"}))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "capture", ModeCapture.String())
	assert.Equal(t, "stream", ModeStream.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
