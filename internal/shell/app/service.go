// Package app provides the compose service for managed apps.
// This is part of the Imperative Shell - it probes the filesystem, talks to
// the docker engine and runs the compose tool around the pure builder.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/artpar/appcompose/internal/core/compose"
	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/artpar/appcompose/internal/shell/composer"
	"github.com/artpar/appcompose/internal/shell/docker"
	"github.com/artpar/appcompose/internal/shell/project"
	"github.com/compose-spec/compose-go/v2/types"
)

// =============================================================================
// Service Errors
// =============================================================================

// ErrDockerUnavailable is returned when an operation needs the docker engine
// and no client was configured.
var ErrDockerUnavailable = errors.New("docker engine client not configured")

// configCommand is the sub-command recorded on invocations that are only
// resolved, never executed.
const configCommand = "config"

// =============================================================================
// Service
// =============================================================================

// Service resolves and runs compose invocations for apps.
type Service struct {
	env      environment.Env
	prober   compose.PathProber
	executor *composer.Executor
	loader   *project.Loader
	docker   docker.Client
	logger   *slog.Logger

	archMu sync.Mutex
	arch   string
}

// NewService creates a new compose service.
// dockerClient may be nil; Status then fails and arch detection falls back
// to the architecture of this binary.
func NewService(env environment.Env, prober compose.PathProber, executor *composer.Executor, loader *project.Loader, dockerClient docker.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		env:      env,
		prober:   prober,
		executor: executor,
		loader:   loader,
		docker:   dockerClient,
		logger:   logger,
	}
}

// =============================================================================
// Environment
// =============================================================================

// Environment returns the env with Arch resolved.
//
// Resolution order:
//  1. Arch from configuration
//  2. Architecture reported by the docker engine
//  3. Architecture of this binary
func (s *Service) Environment(ctx context.Context) environment.Env {
	s.archMu.Lock()
	defer s.archMu.Unlock()

	if s.arch == "" {
		s.arch = s.resolveArch(ctx)
	}
	return s.env.WithArch(s.arch)
}

func (s *Service) resolveArch(ctx context.Context) string {
	if s.env.Arch != "" {
		return environment.NormalizeArch(s.env.Arch)
	}
	if s.docker != nil {
		arch, err := s.docker.Architecture(ctx)
		if err == nil {
			s.logger.Debug("using docker engine architecture", "arch", arch)
			return arch
		}
		s.logger.Warn("failed to read docker engine architecture", "error", err)
	}
	return environment.HostArch()
}

// =============================================================================
// Invocations
// =============================================================================

// Layout returns the resolved paths for appID.
func (s *Service) Layout(ctx context.Context, appID string) (compose.Layout, error) {
	env := s.Environment(ctx)
	if err := env.Validate(); err != nil {
		return compose.Layout{}, err
	}
	if err := compose.ValidateAppID(appID); err != nil {
		return compose.Layout{}, err
	}
	return compose.NewLayout(env, appID), nil
}

// Invocation builds the compose invocation for appID without running it.
func (s *Service) Invocation(ctx context.Context, appID, command string) (*compose.Invocation, error) {
	inv, err := compose.BuildInvocation(s.Environment(ctx), appID, command, s.prober)
	if err != nil {
		return nil, fmt.Errorf("failed to build compose invocation for %s: %w", appID, err)
	}
	return inv, nil
}

// InvocationArgs is Invocation for a command already split into arguments.
func (s *Service) InvocationArgs(ctx context.Context, appID string, args []string) (*compose.Invocation, error) {
	inv, err := compose.BuildInvocationArgs(s.Environment(ctx), appID, args, s.prober)
	if err != nil {
		return nil, fmt.Errorf("failed to build compose invocation for %s: %w", appID, err)
	}
	return inv, nil
}

// CommandLine returns the full argv that running inv would execute.
func (s *Service) CommandLine(inv *compose.Invocation) []string {
	return s.executor.CommandLine(inv.Argv())
}

// Compose runs command for appID and returns the captured output.
// Output on stderr is logged, not treated as failure.
func (s *Service) Compose(ctx context.Context, appID, command string) (*composer.Result, error) {
	inv, err := s.Invocation(ctx, appID, command)
	if err != nil {
		return nil, err
	}
	return s.capture(ctx, inv)
}

// ComposeArgs is Compose for a command already split into arguments.
func (s *Service) ComposeArgs(ctx context.Context, appID string, args []string) (*composer.Result, error) {
	inv, err := s.InvocationArgs(ctx, appID, args)
	if err != nil {
		return nil, err
	}
	return s.capture(ctx, inv)
}

// ComposeStream runs command for appID with output going straight to the
// caller's streams, waiting for the tool to exit.
func (s *Service) ComposeStream(ctx context.Context, appID, command string) error {
	inv, err := s.Invocation(ctx, appID, command)
	if err != nil {
		return err
	}
	return s.stream(ctx, inv)
}

// ComposeStreamArgs is ComposeStream for a command already split into arguments.
func (s *Service) ComposeStreamArgs(ctx context.Context, appID string, args []string) error {
	inv, err := s.InvocationArgs(ctx, appID, args)
	if err != nil {
		return err
	}
	return s.stream(ctx, inv)
}

func (s *Service) capture(ctx context.Context, inv *compose.Invocation) (*composer.Result, error) {
	s.logger.Info("running compose", "app_id", inv.AppID, "command", inv.Command())
	return s.executor.Run(ctx, composer.ModeCapture, inv)
}

func (s *Service) stream(ctx context.Context, inv *compose.Invocation) error {
	s.logger.Info("streaming compose", "app_id", inv.AppID, "command", inv.Command())
	_, err := s.executor.Run(ctx, composer.ModeStream, inv)
	return err
}

// =============================================================================
// Inspection
// =============================================================================

// Project loads the merged compose project for appID.
func (s *Service) Project(ctx context.Context, appID string) (*types.Project, error) {
	inv, err := s.Invocation(ctx, appID, configCommand)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, inv)
}

// Env returns the merged env-file values for appID.
func (s *Service) Env(ctx context.Context, appID string) (map[string]string, error) {
	inv, err := s.Invocation(ctx, appID, configCommand)
	if err != nil {
		return nil, err
	}
	return s.loader.Env(inv)
}

// Status lists the containers of appID's compose project.
func (s *Service) Status(ctx context.Context, appID string) ([]docker.ContainerInfo, error) {
	if err := compose.ValidateAppID(appID); err != nil {
		return nil, err
	}
	if s.docker == nil {
		return nil, ErrDockerUnavailable
	}
	return s.docker.ListProjectContainers(ctx, appID)
}
