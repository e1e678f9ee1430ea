// Package fsprobe answers "does this path exist" for the compose builder.
package fsprobe

import (
	"github.com/spf13/afero"
)

// Prober checks path existence on an afero filesystem.
type Prober struct {
	fs afero.Fs
}

// NewProber creates a Prober backed by fs.
func NewProber(fs afero.Fs) *Prober {
	return &Prober{fs: fs}
}

// NewOSProber creates a Prober backed by the host filesystem.
func NewOSProber() *Prober {
	return NewProber(afero.NewOsFs())
}

// Exists reports whether path exists. A missing path is not an error;
// any other stat failure is returned to the caller.
func (p *Prober) Exists(path string) (bool, error) {
	return afero.Exists(p.fs, path)
}

// Fs returns the underlying filesystem.
func (p *Prober) Fs() afero.Fs {
	return p.fs
}
