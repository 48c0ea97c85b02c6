// SPDX-License-Identifier: MPL-2.0

package need

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/invowk/need/pkg/modpath"
)

// resolutionCache memoizes successful fetches by normalized path.
// Failures are never stored, so a path that later becomes available is
// fetched again on its next reference.
type resolutionCache struct {
	accessor  Accessor
	extension string
	indexName string
	manifest  string
	logger    *log.Logger

	mu      sync.Mutex
	modules map[modpath.Path]*Module
	flight  singleflight.Group
}

func newResolutionCache(acc Accessor, o *options) *resolutionCache {
	return &resolutionCache{
		accessor:  acc,
		extension: o.extension,
		indexName: o.indexName,
		manifest:  o.manifest,
		logger:    o.sink(),
		modules:   make(map[modpath.Path]*Module),
	}
}

func (c *resolutionCache) lookup(path modpath.Path) (*Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.modules[path]
	return m, ok
}

// store records m unless another caller stored the same path first, in which
// case the earlier module is returned.
func (c *resolutionCache) store(m *Module) *Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.modules[m.id]; ok {
		return existing
	}
	c.modules[m.id] = m
	return m
}

// getAtPath returns the module stored at path, fetching it on first use.
func (c *resolutionCache) getAtPath(ctx context.Context, path modpath.Path) (*Module, bool) {
	if m, ok := c.lookup(path); ok {
		return m, true
	}

	v, err, shared := c.flight.Do(string(path), func() (any, error) {
		return c.fetch(ctx, path)
	})
	if err != nil && shared && isContextError(err) && ctx.Err() == nil {
		// The shared fetch ran under another caller's context.
		v, err = c.fetch(ctx, path)
	}
	if err != nil {
		c.logger.Debug("candidate unavailable", "path", path, "err", err)
		return nil, false
	}

	c.logger.Debug("candidate found", "path", path)
	return v.(*Module), true
}

// fetch reads path through the accessor and stores the resulting module.
func (c *resolutionCache) fetch(ctx context.Context, path modpath.Path) (*Module, error) {
	if m, ok := c.lookup(path); ok {
		return m, nil
	}
	source, err := c.accessor.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(source) {
		return nil, errNotText
	}
	return c.store(newModule(path, source)), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// getFile tries name as-is, then with the source extension appended.
// Names ending in "/" explicitly denote directories and never match a file.
func (c *resolutionCache) getFile(ctx context.Context, name modpath.Path) (*Module, bool) {
	if strings.HasSuffix(string(name), modpath.Separator) {
		return nil, false
	}
	if m, ok := c.getAtPath(ctx, name); ok {
		return m, true
	}
	return c.getAtPath(ctx, name+modpath.Path(c.extension))
}

// getDirectory resolves name as a directory: through the manifest's "main"
// entry when there is one, else through the index file.
func (c *resolutionCache) getDirectory(ctx context.Context, name modpath.Path) (*Module, bool, error) {
	if c.manifest != "" {
		manifestPath := modpath.Join(string(name), c.manifest)
		if pkg, ok := c.getAtPath(ctx, manifestPath); ok {
			entry, hasMain, err := parseManifest(pkg)
			if err != nil {
				return nil, false, err
			}
			if hasMain {
				m, ok := c.getFile(ctx, modpath.Join(string(name), entry))
				return m, ok, nil
			}
		}
	}

	m, ok := c.getFile(ctx, modpath.Join(string(name), c.indexName+c.extension))
	return m, ok, nil
}

// getFileOrDirectory is the candidate check shared by relative and ancestor
// lookups.
func (c *resolutionCache) getFileOrDirectory(ctx context.Context, path modpath.Path) (*Module, bool, error) {
	if m, ok := c.getFile(ctx, path); ok {
		return m, true, nil
	}
	return c.getDirectory(ctx, path)
}
