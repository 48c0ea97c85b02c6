// SPDX-License-Identifier: MPL-2.0

package need

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/need/pkg/modpath"
)

// Resolver maps (start, name) pairs to artifacts. Each Resolver owns its
// cache and core registry; nothing is shared between instances. A Resolver is
// safe for concurrent use.
type Resolver struct {
	dependencyDir string
	cache         *resolutionCache
	core          *coreRegistry
	logger        *log.Logger
}

// New creates a Resolver that reads content through acc.
func New(acc Accessor, opts ...Option) (*Resolver, error) {
	if acc == nil {
		return nil, ErrNilAccessor
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Resolver{
		dependencyDir: o.dependencyDir,
		cache:         newResolutionCache(acc, &o),
		core:          newCoreRegistry(),
		logger:        o.sink(),
	}, nil
}

// Resolve locates name as seen from start.
//
// Malformed names and unparsable manifests return an error. A name that
// cannot be found anywhere returns ok == false with a nil error.
func (r *Resolver) Resolve(ctx context.Context, start string, name ModuleName) (Artifact, bool, error) {
	if err := name.Validate(); err != nil {
		return nil, false, err
	}

	if name.IsRelative() {
		path := modpath.Join(modpath.Separator, start, string(name))
		r.logger.Debug("resolving relative name", "name", name, "path", path)
		return r.resolveCandidate(ctx, path)
	}

	if err := name.ValidateTopLevel(); err != nil {
		return nil, false, err
	}

	if a, ok := r.core.lookup(name); ok {
		r.logger.Debug("resolved core name", "name", name)
		return a, true, nil
	}

	return r.resolveTop(ctx, start, name)
}

// RegisterCore reserves name for artifact. Core names take precedence over
// every ancestor lookup and can be registered only once.
func (r *Resolver) RegisterCore(name ModuleName, artifact Artifact) error {
	if err := name.Validate(); err != nil {
		return err
	}
	if err := name.ValidateTopLevel(); err != nil {
		return err
	}
	return r.core.register(name, artifact)
}

// CoreNames returns the registered core names in sorted order.
func (r *Resolver) CoreNames() []ModuleName {
	return r.core.names()
}

// resolveTop walks from start towards the root, looking for name inside the
// dependency directory of each level. The nearest level wins.
func (r *Resolver) resolveTop(ctx context.Context, start string, name ModuleName) (Artifact, bool, error) {
	if r.dependencyDir == "" {
		return nil, false, nil
	}

	segments := modpath.Join(modpath.Separator, strings.TrimRight(start, modpath.Separator)).Segments()
	for level := len(segments); level >= walkFloor(segments, r.dependencyDir); level-- {
		prefix := modpath.Separator + strings.Join(segments[:level], modpath.Separator)

		var candidate modpath.Path
		if level > 0 && segments[level-1] == r.dependencyDir {
			candidate = modpath.Join(prefix, string(name))
		} else {
			candidate = modpath.Join(prefix, r.dependencyDir, string(name))
		}

		a, ok, err := r.resolveCandidate(ctx, candidate)
		if err != nil || ok {
			return a, ok, err
		}
	}

	return nil, false, nil
}

// walkFloor returns the shallowest level the ancestor walk visits: the level
// ending at the deepest dependency directory in segments, or the root.
func walkFloor(segments []string, dependencyDir string) int {
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == dependencyDir {
			return i + 1
		}
	}
	return 0
}

// resolveCandidate checks path as a file, then as a directory.
func (r *Resolver) resolveCandidate(ctx context.Context, path modpath.Path) (Artifact, bool, error) {
	m, ok, err := r.cache.getFileOrDirectory(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return m, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	return nil, false, nil
}
