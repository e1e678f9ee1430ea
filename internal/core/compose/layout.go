package compose

import (
	"path/filepath"

	"github.com/artpar/appcompose/internal/core/environment"
)

// =============================================================================
// File Names
// =============================================================================

const (
	// AppEnvFileName is the env file injected into every compose invocation.
	AppEnvFileName = "app.env"
	// ComposeFileName is the default compose file for an app.
	ComposeFileName = "docker-compose.yml"
	// ARM64ComposeFileName replaces ComposeFileName on arm64 hosts when present.
	ARM64ComposeFileName = "docker-compose.arm64.yml"
	// CommonComposeFileName is layered on top of every app's compose file.
	CommonComposeFileName = "docker-compose.common.yml"
)

// =============================================================================
// Layout
// =============================================================================

// Layout holds every path the builder may use for one app.
// Optional paths are listed whether or not they exist on disk.
type Layout struct {
	AppID             string
	AppDataDir        string // {storagePath}/app-data/{appId}
	AppDir            string // {rootFolderHost}/apps/{appId}
	UserConfigDir     string // {rootFolderHost}/user-config/{appId}
	DefaultEnvFile    string
	UserEnvFile       string
	ComposeFile       string
	ARM64ComposeFile  string
	CommonComposeFile string
	UserComposeFile   string
}

// NewLayout computes the paths for appID under env.
// This is a pure function - it does not touch the filesystem.
func NewLayout(env environment.Env, appID string) Layout {
	appDataDir := filepath.Join(env.StoragePath, "app-data", appID)
	appDir := filepath.Join(env.RootFolderHost, "apps", appID)
	userConfigDir := filepath.Join(env.RootFolderHost, "user-config", appID)

	return Layout{
		AppID:             appID,
		AppDataDir:        appDataDir,
		AppDir:            appDir,
		UserConfigDir:     userConfigDir,
		DefaultEnvFile:    filepath.Join(appDataDir, AppEnvFileName),
		UserEnvFile:       filepath.Join(userConfigDir, AppEnvFileName),
		ComposeFile:       filepath.Join(appDir, ComposeFileName),
		ARM64ComposeFile:  filepath.Join(appDir, ARM64ComposeFileName),
		CommonComposeFile: filepath.Join(env.RootFolderHost, "repos", env.AppsRepoID, "apps", CommonComposeFileName),
		UserComposeFile:   filepath.Join(userConfigDir, ComposeFileName),
	}
}
