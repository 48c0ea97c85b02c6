// SPDX-License-Identifier: MPL-2.0

package accessor

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/invowk/need/pkg/modpath"
)

type (
	// FS reads module content from an afero filesystem.
	// Module paths are used as filesystem paths unchanged.
	FS struct {
		fs      afero.Fs
		maxSize int64
	}

	// FSOption configures an FS accessor.
	FSOption func(*FS)
)

// NewFS creates an accessor over fsys.
func NewFS(fsys afero.Fs, opts ...FSOption) *FS {
	a := &FS{fs: fsys, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewOSRoot creates an accessor over the host filesystem in which the module
// root "/" is dir.
func NewOSRoot(dir string, opts ...FSOption) *FS {
	return NewFS(afero.NewBasePathFs(afero.NewOsFs(), dir), opts...)
}

// WithFSMaxSize sets the largest file the accessor will read.
func WithFSMaxSize(n int64) FSOption {
	return func(a *FS) {
		a.maxSize = n
	}
}

// Fetch reads the file at path. Directories and oversized files are errors.
func (a *FS) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := path.String()
	info, err := a.fs.Stat(name)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", name, ErrIsDirectory)
	}
	if info.Size() > a.maxSize {
		return "", tooLarge(name, info.Size(), a.maxSize)
	}

	data, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
