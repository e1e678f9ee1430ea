package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Environment EnvironmentConfig `mapstructure:"environment"`
	Compose     ComposeConfig     `mapstructure:"compose"`
	Docker      DockerConfig      `mapstructure:"docker"`
	Log         LogConfig         `mapstructure:"log"`
}

// EnvironmentConfig describes the host the apps are managed on.
type EnvironmentConfig struct {
	// Arch is the CPU architecture label ("x64", "arm64").
	// Empty means ask the docker engine, then fall back to this binary's arch.
	Arch string `mapstructure:"arch"`

	RootFolderHost string `mapstructure:"root_folder_host"`
	AppsRepoID     string `mapstructure:"apps_repo_id"`

	// StoragePath defaults to RootFolderHost when empty.
	StoragePath string `mapstructure:"storage_path"`
}

// Env converts the config section into the value the builder consumes.
func (c EnvironmentConfig) Env() environment.Env {
	return environment.Env{
		Arch:           c.Arch,
		RootFolderHost: c.RootFolderHost,
		AppsRepoID:     c.AppsRepoID,
		StoragePath:    c.StoragePath,
	}
}

// ComposeConfig holds compose tool configuration.
type ComposeConfig struct {
	Binary string `mapstructure:"binary"`
	// OSEnv lets process environment variables override env-file values
	// when loading projects for `config`.
	OSEnv bool `mapstructure:"os_env"`
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // empty means stderr
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment.arch", "")
	v.SetDefault("environment.root_folder_host", "")
	v.SetDefault("environment.apps_repo_id", "")
	v.SetDefault("environment.storage_path", "")
	v.SetDefault("compose.binary", "docker")
	v.SetDefault("compose.os_env", true)
	v.SetDefault("docker.enabled", true)
	v.SetDefault("docker.host", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("APPCOMPOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Environment.StoragePath == "" {
		cfg.Environment.StoragePath = cfg.Environment.RootFolderHost
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level, format and output.
// The returned close function releases the log file, if any.
func SetupLogger(cfg *Config) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closeFn, nil
}
