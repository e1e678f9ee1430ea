// Package environment describes the host environment an app is composed against.
// This is part of the Functional Core - all functions are pure with no I/O.
package environment

import (
	"runtime"
	"strings"
)

// =============================================================================
// Architecture Labels
// =============================================================================

const (
	// ArchX64 is the label used for amd64 hosts.
	ArchX64 = "x64"
	// ArchARM64 is the label used for arm64 hosts. Apps may ship a
	// docker-compose.arm64.yml that replaces the default compose file.
	ArchARM64 = "arm64"
)

// =============================================================================
// Env
// =============================================================================

// Env holds the host settings needed to resolve an app's compose files.
// It is read once by the caller and passed explicitly to the builder.
type Env struct {
	Arch           string // CPU architecture label, see NormalizeArch
	RootFolderHost string // Root of the managed-apps tree on the host
	AppsRepoID     string // Identifier of the active apps repository
	StoragePath    string // Root of persisted application data
}

// Validate checks that every field needed to build an invocation is present.
func (e Env) Validate() error {
	if strings.TrimSpace(e.Arch) == "" {
		return NewFieldError("arch")
	}
	return e.ValidatePaths()
}

// ValidatePaths checks the path fields only, for use before Arch is resolved.
func (e Env) ValidatePaths() error {
	if strings.TrimSpace(e.RootFolderHost) == "" {
		return NewFieldError("rootFolderHost")
	}
	if strings.TrimSpace(e.AppsRepoID) == "" {
		return NewFieldError("appsRepoId")
	}
	if strings.TrimSpace(e.StoragePath) == "" {
		return NewFieldError("storagePath")
	}
	return nil
}

// WithArch returns a copy of e with Arch set to the normalized label.
func (e Env) WithArch(arch string) Env {
	e.Arch = NormalizeArch(arch)
	return e
}

// =============================================================================
// Architecture Normalization
// =============================================================================

// NormalizeArch maps Go, kernel and engine architecture names onto app labels.
//
//	NormalizeArch("amd64")   // "x64"
//	NormalizeArch("x86_64")  // "x64"
//	NormalizeArch("aarch64") // "arm64"
//
// Unknown labels are lowercased and returned unchanged.
func NormalizeArch(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case "amd64", "x86_64", "x64", "x86-64":
		return ArchX64
	case "arm64", "aarch64", "arm64/v8":
		return ArchARM64
	default:
		return l
	}
}

// HostArch returns the label for the architecture this binary runs on.
func HostArch() string {
	return NormalizeArch(runtime.GOARCH)
}
