// Package project loads the layered compose files of an Invocation the way
// docker compose would, without running the tool.
package project

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/artpar/appcompose/internal/core/compose"
	"github.com/compose-spec/compose-go/v2/dotenv"
	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader reads compose and env files from fs.
type Loader struct {
	fs        afero.Fs
	withOSEnv bool
	logger    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithOSEnv makes process environment variables override env-file values
// during interpolation, as docker compose does.
func WithOSEnv() LoaderOption {
	return func(l *Loader) {
		l.withOSEnv = true
	}
}

// NewLoader creates a Loader.
func NewLoader(fs afero.Fs, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{fs: fs, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// =============================================================================
// Env Files
// =============================================================================

// Env merges the invocation's env files in order. Later files win, and a
// file may reference keys set by an earlier one.
func (l *Loader) Env(inv *compose.Invocation) (map[string]string, error) {
	merged := make(map[string]string)
	lookup := func(key string) (string, bool) {
		v, ok := merged[key]
		return v, ok
	}

	for _, file := range inv.EnvFiles() {
		data, err := l.readFile(file)
		if err != nil {
			return nil, err
		}
		values, err := dotenv.UnmarshalBytesWithLookup(data, lookup)
		if err != nil {
			return nil, NewLoadError(file, err.Error(), ErrInvalidEnvFile)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

// =============================================================================
// Compose Files
// =============================================================================

// Load parses and merges the invocation's compose files into a single project.
func (l *Loader) Load(ctx context.Context, inv *compose.Invocation) (*types.Project, error) {
	env, err := l.Env(inv)
	if err != nil {
		return nil, err
	}
	if l.withOSEnv {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}

	var configFiles []types.ConfigFile
	for _, file := range inv.ComposeFiles() {
		cf, err := l.readComposeFile(file)
		if err != nil {
			return nil, err
		}
		configFiles = append(configFiles, cf)
	}

	l.logger.Debug("loading compose project",
		"app_id", inv.AppID,
		"files", inv.ComposeFiles(),
		"env_files", inv.EnvFiles(),
	)

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		WorkingDir:  inv.Layout.AppDir,
		ConfigFiles: configFiles,
		Environment: types.Mapping(env),
	}, func(opts *loader.Options) {
		opts.SetProjectName(inv.ProjectName(), true)
	})
	if err != nil {
		return nil, NewLoadError("", err.Error(), ErrInvalidProject)
	}
	return project, nil
}

func (l *Loader) readComposeFile(file string) (types.ConfigFile, error) {
	data, err := l.readFile(file)
	if err != nil {
		return types.ConfigFile{}, err
	}

	var dict map[string]interface{}
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return types.ConfigFile{}, NewLoadError(file, "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return types.ConfigFile{}, NewLoadError(file, "compose file is empty", ErrInvalidYAML)
	}

	return types.ConfigFile{
		Filename: file,
		Content:  data,
		Config:   dict,
	}, nil
}

func (l *Loader) readFile(file string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewLoadError(file, "file not found", ErrFileNotFound)
		}
		return nil, NewLoadError(file, err.Error(), err)
	}
	return data, nil
}
