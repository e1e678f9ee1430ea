package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Environment.Arch)
	assert.Equal(t, "", cfg.Environment.RootFolderHost)
	assert.Equal(t, "docker", cfg.Compose.Binary)
	assert.True(t, cfg.Compose.OSEnv)
	assert.True(t, cfg.Docker.Enabled)
	assert.Equal(t, "", cfg.Docker.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "", cfg.Log.File)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
environment:
  arch: arm64
  root_folder_host: /runtipi
  apps_repo_id: 29ca930b
  storage_path: /mnt/data

compose:
  binary: podman
  os_env: false

docker:
  enabled: false
  host: unix:///run/user/1000/docker.sock

log:
  level: "debug"
  format: "json"
  file: /var/log/appcompose.log
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "arm64", cfg.Environment.Arch)
	assert.Equal(t, "/runtipi", cfg.Environment.RootFolderHost)
	assert.Equal(t, "29ca930b", cfg.Environment.AppsRepoID)
	assert.Equal(t, "/mnt/data", cfg.Environment.StoragePath)
	assert.Equal(t, "podman", cfg.Compose.Binary)
	assert.False(t, cfg.Compose.OSEnv)
	assert.False(t, cfg.Docker.Enabled)
	assert.Equal(t, "unix:///run/user/1000/docker.sock", cfg.Docker.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/log/appcompose.log", cfg.Log.File)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("APPCOMPOSE_ENVIRONMENT_ARCH", "x64")
	t.Setenv("APPCOMPOSE_ENVIRONMENT_ROOT_FOLDER_HOST", "/opt/runtipi")
	t.Setenv("APPCOMPOSE_ENVIRONMENT_APPS_REPO_ID", "repo-2")
	t.Setenv("APPCOMPOSE_COMPOSE_BINARY", "/usr/local/bin/docker")
	t.Setenv("APPCOMPOSE_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "x64", cfg.Environment.Arch)
	assert.Equal(t, "/opt/runtipi", cfg.Environment.RootFolderHost)
	assert.Equal(t, "repo-2", cfg.Environment.AppsRepoID)
	assert.Equal(t, "/usr/local/bin/docker", cfg.Compose.Binary)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_StoragePathDefaultsToRoot(t *testing.T) {
	clearEnv(t)

	t.Setenv("APPCOMPOSE_ENVIRONMENT_ROOT_FOLDER_HOST", "/runtipi")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/runtipi", cfg.Environment.StoragePath)
}

func TestLoadConfig_ExplicitStoragePath(t *testing.T) {
	clearEnv(t)

	t.Setenv("APPCOMPOSE_ENVIRONMENT_ROOT_FOLDER_HOST", "/runtipi")
	t.Setenv("APPCOMPOSE_ENVIRONMENT_STORAGE_PATH", "/mnt/storage")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/mnt/storage", cfg.Environment.StoragePath)
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err) // Should not error, just use defaults

	assert.Equal(t, "docker", cfg.Compose.Binary)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: [[["), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestEnvironmentConfig_Env(t *testing.T) {
	c := EnvironmentConfig{
		Arch:           "arm64",
		RootFolderHost: "/runtipi",
		AppsRepoID:     "repo",
		StoragePath:    "/data",
	}

	env := c.Env()
	assert.Equal(t, "arm64", env.Arch)
	assert.Equal(t, "/runtipi", env.RootFolderHost)
	assert.Equal(t, "repo", env.AppsRepoID)
	assert.Equal(t, "/data", env.StoragePath)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		cfg := &Config{Log: LogConfig{Level: "info", Format: format}}

		logger, closeFn, err := SetupLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.NoError(t, closeFn())
	}
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "invalid", Format: "json"}}

	// Should fall back to info level, not panic
	logger, _, err := SetupLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appcompose.log")
	cfg := &Config{Log: LogConfig{Level: "error", Format: "text", File: path}}

	logger, closeFn, err := SetupLogger(cfg)
	require.NoError(t, err)

	logger.Error("warning: deprecated option")
	logger.Info("not written")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "warning: deprecated option")
	assert.NotContains(t, string(data), "not written")
}

func TestSetupLogger_FileError(t *testing.T) {
	cfg := &Config{Log: LogConfig{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")}}

	_, _, err := SetupLogger(cfg)
	assert.Error(t, err)
}

// =============================================================================
// Test Helpers
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APPCOMPOSE_ENVIRONMENT_ARCH",
		"APPCOMPOSE_ENVIRONMENT_ROOT_FOLDER_HOST",
		"APPCOMPOSE_ENVIRONMENT_APPS_REPO_ID",
		"APPCOMPOSE_ENVIRONMENT_STORAGE_PATH",
		"APPCOMPOSE_COMPOSE_BINARY",
		"APPCOMPOSE_COMPOSE_OS_ENV",
		"APPCOMPOSE_DOCKER_ENABLED",
		"APPCOMPOSE_DOCKER_HOST",
		"APPCOMPOSE_LOG_LEVEL",
		"APPCOMPOSE_LOG_FORMAT",
		"APPCOMPOSE_LOG_FILE",
	}
	for _, v := range envVars {
		// Empty values are ignored by viper and restored after the test.
		t.Setenv(v, "")
	}
}
