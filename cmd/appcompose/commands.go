package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/artpar/appcompose/internal/core/compose"
	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/artpar/appcompose/internal/shell/app"
	"github.com/artpar/appcompose/internal/shell/composer"
	"github.com/artpar/appcompose/internal/shell/docker"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

const usage = `usage: appcompose [-config file] <command> [args...]

commands:
  run <app-id> <compose command...>     run compose, capturing output
  stream <app-id> <compose command...>  run compose with output streamed
  args <app-id> <compose command...>    print the command line without running it
  paths <app-id>                        print the resolved file layout
  config <app-id>                       print the merged compose project
  env <app-id>                          print the merged env-file values
  status <app-id>                       list the app's containers`

// cli runs one command against the compose service.
type cli struct {
	service *app.Service
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger

	// stderrLogged is set when the logger writes to stderr, where captured
	// compose stderr already shows up as a log record on success.
	stderrLogged bool
}

// dispatch routes the command to the appropriate handler and returns the exit code.
func (c *cli) dispatch(ctx context.Context, cmd string, args []string) int {
	var err error
	switch cmd {
	// Compose commands
	case "run":
		err = c.runCmd(ctx, args)
	case "stream":
		err = c.streamCmd(ctx, args)
	case "args":
		err = c.argsCmd(ctx, args)

	// Inspection commands
	case "paths":
		err = c.pathsCmd(ctx, args)
	case "config":
		err = c.configCmd(ctx, args)
	case "env":
		err = c.envCmd(ctx, args)
	case "status":
		err = c.statusCmd(ctx, args)

	case "help":
		fmt.Fprintln(c.stdout, usage)
		return ExitSuccess
	default:
		err = usageError("unknown command: " + cmd)
	}

	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(c.stderr, "appcompose %s: %v\n", cmd, err)
	return exitCode(err)
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var execErr *composer.ExecError
	if errors.As(err, &execErr) {
		if execErr.ExitCode > 0 {
			return execErr.ExitCode
		}
		return ExitComposeError
	}
	switch {
	case errors.Is(err, app.ErrDockerUnavailable),
		errors.Is(err, docker.ErrConnectionFailed),
		errors.Is(err, docker.ErrListFailed):
		return ExitDockerError
	case errors.Is(err, environment.ErrMissingField):
		return ExitConfigError
	case errors.Is(err, compose.ErrEmptyAppID),
		errors.Is(err, compose.ErrInvalidAppID),
		errors.Is(err, compose.ErrEmptyCommand),
		errors.Is(err, compose.ErrInvalidCommand):
		return ExitUsageError
	}
	return ExitComposeError
}

func usageError(msg string) error {
	return &CommandError{Op: "usage", Err: errors.New(msg), ExitCode: ExitUsageError}
}

// appAndCommand splits "<app-id> <compose command...>". The command
// arguments are kept as the shell split them.
func appAndCommand(args []string) (string, []string, error) {
	if len(args) < 2 {
		return "", nil, usageError("expected <app-id> <compose command...>")
	}
	return args[0], args[1:], nil
}

func appOnly(args []string) (string, error) {
	if len(args) != 1 {
		return "", usageError("expected <app-id>")
	}
	return args[0], nil
}

// =============================================================================
// Compose Commands
// =============================================================================

func (c *cli) runCmd(ctx context.Context, args []string) error {
	appID, command, err := appAndCommand(args)
	if err != nil {
		return err
	}
	res, err := c.service.ComposeArgs(ctx, appID, command)
	if res != nil {
		io.WriteString(c.stdout, res.Stdout)
		if err != nil || !c.stderrLogged {
			io.WriteString(c.stderr, res.Stderr)
		}
	}
	return err
}

func (c *cli) streamCmd(ctx context.Context, args []string) error {
	appID, command, err := appAndCommand(args)
	if err != nil {
		return err
	}
	return c.service.ComposeStreamArgs(ctx, appID, command)
}

func (c *cli) argsCmd(ctx context.Context, args []string) error {
	appID, command, err := appAndCommand(args)
	if err != nil {
		return err
	}
	inv, err := c.service.InvocationArgs(ctx, appID, command)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, shellquote.Join(c.service.CommandLine(inv)...))
	return nil
}

// =============================================================================
// Inspection Commands
// =============================================================================

// layoutOutput is the YAML shape printed by `paths`.
type layoutOutput struct {
	App               string `yaml:"app"`
	Arch              string `yaml:"arch"`
	AppDataDir        string `yaml:"app_data_dir"`
	AppDir            string `yaml:"app_dir"`
	DefaultEnvFile    string `yaml:"default_env_file"`
	UserEnvFile       string `yaml:"user_env_file"`
	ComposeFile       string `yaml:"compose_file"`
	ARM64ComposeFile  string `yaml:"arm64_compose_file"`
	CommonComposeFile string `yaml:"common_compose_file"`
	UserComposeFile   string `yaml:"user_compose_file"`
}

func (c *cli) pathsCmd(ctx context.Context, args []string) error {
	appID, err := appOnly(args)
	if err != nil {
		return err
	}
	l, err := c.service.Layout(ctx, appID)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(layoutOutput{
		App:               l.AppID,
		Arch:              c.service.Environment(ctx).Arch,
		AppDataDir:        l.AppDataDir,
		AppDir:            l.AppDir,
		DefaultEnvFile:    l.DefaultEnvFile,
		UserEnvFile:       l.UserEnvFile,
		ComposeFile:       l.ComposeFile,
		ARM64ComposeFile:  l.ARM64ComposeFile,
		CommonComposeFile: l.CommonComposeFile,
		UserComposeFile:   l.UserComposeFile,
	})
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(out)
	return err
}

func (c *cli) configCmd(ctx context.Context, args []string) error {
	appID, err := appOnly(args)
	if err != nil {
		return err
	}
	project, err := c.service.Project(ctx, appID)
	if err != nil {
		return err
	}
	out, err := project.MarshalYAML()
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(out)
	return err
}

func (c *cli) envCmd(ctx context.Context, args []string) error {
	appID, err := appOnly(args)
	if err != nil {
		return err
	}
	env, err := c.service.Env(ctx, appID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.stdout, "%s=%s\n", k, env[k])
	}
	return nil
}

func (c *cli) statusCmd(ctx context.Context, args []string) error {
	appID, err := appOnly(args)
	if err != nil {
		return err
	}
	containers, err := c.service.Status(ctx, appID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tNAME\tSTATE\tSTATUS\tPORTS")
	for _, ct := range containers {
		ports := make([]string, 0, len(ct.Ports))
		for _, p := range ct.Ports {
			ports = append(ports, p.String())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ct.Service, ct.Name, ct.State, ct.Status, strings.Join(ports, ", "))
	}
	return w.Flush()
}
