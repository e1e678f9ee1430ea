package main

import (
	"log/slog"

	"github.com/artpar/appcompose/internal/shell/app"
	"github.com/artpar/appcompose/internal/shell/composer"
	"github.com/artpar/appcompose/internal/shell/docker"
	"github.com/artpar/appcompose/internal/shell/fsprobe"
	"github.com/artpar/appcompose/internal/shell/project"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitUsageError   = 2
	ExitDockerError  = 3
	ExitComposeError = 4
)

// =============================================================================
// Wiring
// =============================================================================

// deps holds the wired service and the resources to release on exit.
type deps struct {
	service *app.Service
	docker  docker.Client
}

// Close releases the docker client, if one was created.
func (r *deps) Close() error {
	if r.docker != nil {
		return r.docker.Close()
	}
	return nil
}

// newDeps wires the compose service from configuration.
// A docker client that cannot be created is logged and left out; commands
// that need it fail with app.ErrDockerUnavailable.
func newDeps(cfg *Config, logger *slog.Logger) (*deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Arch may be empty here; the service resolves it on first use.
	if err := cfg.Environment.Env().ValidatePaths(); err != nil {
		return nil, &CommandError{Op: "validate environment", Err: err, ExitCode: ExitConfigError}
	}

	prober := fsprobe.NewOSProber()
	executor := composer.NewExecutor(cfg.Compose.Binary, logger)

	var loaderOpts []project.LoaderOption
	if cfg.Compose.OSEnv {
		loaderOpts = append(loaderOpts, project.WithOSEnv())
	}
	loader := project.NewLoader(prober.Fs(), logger, loaderOpts...)

	r := &deps{}
	if cfg.Docker.Enabled {
		dc, err := docker.NewDockerClient(cfg.Docker.Host)
		if err != nil {
			logger.Warn("docker engine client unavailable", "error", err)
		} else {
			r.docker = dc
		}
	}

	r.service = app.NewService(cfg.Environment.Env(), prober, executor, loader, r.docker, logger)
	return r, nil
}

// =============================================================================
// Errors
// =============================================================================

// CommandError carries the exit code a failed command should produce.
type CommandError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *CommandError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
