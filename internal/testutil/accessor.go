// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/invowk/need/pkg/modpath"
)

// ErrNoFile is returned by Files and CountingAccessor for unknown paths.
// It wraps fs.ErrNotExist.
var ErrNoFile = fmt.Errorf("no such file: %w", fs.ErrNotExist)

type (
	// Files is an in-memory accessor keyed by normalized path.
	Files map[modpath.Path]string

	// CountingAccessor serves a mutable set of files and records every path
	// it was asked for, in order.
	CountingAccessor struct {
		mu    sync.Mutex
		files Files
		calls []modpath.Path
	}
)

// Fetch returns the content stored at path.
func (f Files) Fetch(_ context.Context, path modpath.Path) (string, error) {
	content, ok := f[path]
	if !ok {
		return "", ErrNoFile
	}
	return content, nil
}

// NewCountingAccessor creates a CountingAccessor serving a copy of files.
func NewCountingAccessor(files Files) *CountingAccessor {
	c := &CountingAccessor{files: make(Files, len(files))}
	for p, content := range files {
		c.files[p] = content
	}
	return c
}

// Fetch records path and returns its content.
func (c *CountingAccessor) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, path)
	return c.files.Fetch(ctx, path)
}

// Set adds or replaces a file.
func (c *CountingAccessor) Set(path modpath.Path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = content
}

// Calls returns every fetched path in call order.
func (c *CountingAccessor) Calls() []modpath.Path {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// CallsTo returns how many times path was fetched.
func (c *CountingAccessor) CallsTo(path modpath.Path) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.calls {
		if p == path {
			n++
		}
	}
	return n
}
