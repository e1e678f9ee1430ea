// Package compose builds docker compose command lines for a managed app.
// This is part of the Functional Core - filesystem checks go through a
// PathProber supplied by the caller.
package compose

import (
	"fmt"
	"strings"

	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-shellwords"
)

// PathProber reports whether a path exists.
type PathProber interface {
	Exists(path string) (bool, error)
}

// =============================================================================
// Builder
// =============================================================================

// BuildInvocation resolves the env and compose files for appID and returns
// the ordered invocation for command.
//
// The order is fixed:
//  1. --env-file {storagePath}/app-data/{appId}/app.env
//  2. --env-file {rootFolderHost}/user-config/{appId}/app.env (if present)
//  3. --project-name {appId}
//  4. -f docker-compose.yml, or docker-compose.arm64.yml on arm64 when present
//  5. -f {rootFolderHost}/repos/{appsRepoId}/apps/docker-compose.common.yml
//  6. --file {rootFolderHost}/user-config/{appId}/docker-compose.yml (if present)
//  7. command
func BuildInvocation(env environment.Env, appID, command string, prober PathProber) (*Invocation, error) {
	return build(env, appID, prober, func() (string, []string, error) {
		tokens, err := splitCommand(command)
		return command, tokens, err
	})
}

// BuildInvocationArgs is BuildInvocation for a command that is already
// split into arguments, such as a process argv. The arguments are passed
// to the tool unchanged; Command reports them shell-quoted.
func BuildInvocationArgs(env environment.Env, appID string, args []string, prober PathProber) (*Invocation, error) {
	return build(env, appID, prober, func() (string, []string, error) {
		if strings.TrimSpace(strings.Join(args, "")) == "" {
			return "", nil, ErrEmptyCommand
		}
		return shellquote.Join(args...), append([]string(nil), args...), nil
	})
}

func build(env environment.Env, appID string, prober PathProber, command func() (string, []string, error)) (*Invocation, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateAppID(appID); err != nil {
		return nil, err
	}
	cmd, tokens, err := command()
	if err != nil {
		return nil, err
	}

	layout := NewLayout(env, appID)
	inv := &Invocation{
		AppID:   appID,
		Layout:  layout,
		command: cmd,
		tokens:  tokens,
	}

	inv.Flags = append(inv.Flags, Flag{FlagEnvFile, layout.DefaultEnvFile})

	userEnv, err := probe(prober, layout.UserEnvFile)
	if err != nil {
		return nil, err
	}
	if userEnv {
		inv.Flags = append(inv.Flags, Flag{FlagEnvFile, layout.UserEnvFile})
	}

	inv.Flags = append(inv.Flags, Flag{FlagProjectName, appID})

	composeFile := layout.ComposeFile
	if env.Arch == environment.ArchARM64 {
		arm, err := probe(prober, layout.ARM64ComposeFile)
		if err != nil {
			return nil, err
		}
		if arm {
			composeFile = layout.ARM64ComposeFile
		}
	}
	inv.Flags = append(inv.Flags, Flag{FlagComposeFile, composeFile})
	inv.Flags = append(inv.Flags, Flag{FlagComposeFile, layout.CommonComposeFile})

	userCompose, err := probe(prober, layout.UserComposeFile)
	if err != nil {
		return nil, err
	}
	if userCompose {
		inv.Flags = append(inv.Flags, Flag{FlagFile, layout.UserComposeFile})
	}

	return inv, nil
}

func probe(prober PathProber, path string) (bool, error) {
	ok, err := prober.Exists(path)
	if err != nil {
		return false, NewBuildError("probe", path, fmt.Errorf("%w: %w", ErrProbeFailed, err))
	}
	return ok, nil
}

// splitCommand tokenizes the sub-command with shell quoting rules.
// Variables and backticks are left alone.
func splitCommand(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	tokens, err := shellwords.Parse(command)
	if err != nil {
		return nil, NewBuildError("parse command", "", ErrInvalidCommand)
	}
	return tokens, nil
}

// =============================================================================
// App IDs
// =============================================================================

// ValidateAppID checks that id is safe to use as a path segment and project name.
// Allowed: lowercase letters, digits, '-' and '_', starting with a letter or digit.
func ValidateAppID(id string) error {
	if id == "" {
		return ErrEmptyAppID
	}
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case (r == '-' || r == '_') && i > 0:
		default:
			return ErrInvalidAppID
		}
	}
	return nil
}
