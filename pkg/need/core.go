// SPDX-License-Identifier: MPL-2.0

package need

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// coreRegistry maps reserved top-level names to caller-supplied artifacts.
// Entries are append-only.
type coreRegistry struct {
	mu      sync.RWMutex
	entries map[ModuleName]Artifact
}

func newCoreRegistry() *coreRegistry {
	return &coreRegistry{entries: make(map[ModuleName]Artifact)}
}

func (r *coreRegistry) register(name ModuleName, artifact Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return &DuplicateCoreError{Name: name}
	}
	r.entries[name] = artifact
	return nil
}

func (r *coreRegistry) lookup(name ModuleName) (Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.entries[name]
	return a, ok
}

func (r *coreRegistry) names() []ModuleName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.entries)
	slices.Sort(names)
	return names
}
