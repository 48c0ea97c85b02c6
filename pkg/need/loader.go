// SPDX-License-Identifier: MPL-2.0

package need

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

type (
	// Evaluator turns a fetched module into something executable. It is
	// called at most once per *Module; scope resolves the module's own
	// requires relative to its directory.
	Evaluator interface {
		Evaluate(ctx context.Context, m *Module, scope *Scope) error
	}

	// EvaluatorFunc adapts a function to the Evaluator interface.
	EvaluatorFunc func(ctx context.Context, m *Module, scope *Scope) error

	// RequireOptions controls side effects of Loader.Require.
	RequireOptions struct {
		// Core registers the resolved artifact under this core name.
		Core ModuleName
		// Main records the resolved module as the main module.
		Main bool
	}

	// CoreEntry aliases a core name to a module. An empty Target means the
	// core name resolves itself through the normal lookup.
	CoreEntry struct {
		Name   ModuleName
		Target ModuleName
	}

	// Loader requires modules through a Resolver and evaluates each module
	// exactly once.
	Loader struct {
		resolver  *Resolver
		evaluator Evaluator

		mu          sync.Mutex
		initialized map[*Module]struct{}
		main        *Module
	}

	// Scope is the sub-resolver handed to an Evaluator: it resolves names
	// relative to the directory of the module being evaluated.
	Scope struct {
		loader *Loader
		module *Module
	}
)

// Evaluate calls f(ctx, m, scope).
func (f EvaluatorFunc) Evaluate(ctx context.Context, m *Module, scope *Scope) error {
	return f(ctx, m, scope)
}

// NewLoader creates a Loader over r. A nil evaluator only resolves.
func NewLoader(r *Resolver, eval Evaluator) *Loader {
	return &Loader{
		resolver:    r,
		evaluator:   eval,
		initialized: make(map[*Module]struct{}),
	}
}

// Resolver returns the underlying resolver.
func (l *Loader) Resolver() *Resolver { return l.resolver }

// Main returns the module most recently required with RequireOptions.Main,
// or nil.
func (l *Loader) Main() *Module {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.main
}

// Require resolves name from start, applies opts and evaluates the result if
// it is a module seen for the first time. Unlike Resolver.Resolve, a name that
// cannot be found is an error (*NotFoundError).
func (l *Loader) Require(ctx context.Context, start string, name ModuleName, opts RequireOptions) (Artifact, error) {
	a, ok, err := l.resolver.Resolve(ctx, start, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Start: start, Name: name}
	}

	if opts.Core != "" {
		if err := l.resolver.RegisterCore(opts.Core, a); err != nil {
			return nil, err
		}
	}

	m, isModule := a.(*Module)
	if !isModule || !l.markInitialized(m, opts.Main) {
		return a, nil
	}

	if l.evaluator != nil {
		if err := l.evaluator.Evaluate(ctx, m, l.Scope(m)); err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", m.ID(), err)
		}
	}
	return m, nil
}

// Scope returns the sub-resolver bound to m's directory.
func (l *Loader) Scope(m *Module) *Scope {
	return &Scope{loader: l, module: m}
}

// LoadCore requires every entry as a core module, in name order.
func (l *Loader) LoadCore(ctx context.Context, start string, entries []CoreEntry) error {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b CoreEntry) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})

	for _, e := range sorted {
		target := e.Target
		if target == "" {
			target = e.Name
		}
		if _, err := l.Require(ctx, start, target, RequireOptions{Core: e.Name}); err != nil {
			return fmt.Errorf("loading core module %q: %w", e.Name, err)
		}
	}
	return nil
}

// markInitialized records m as initialized and reports whether this call did
// so. Modules are marked before evaluation so that cyclic requires see the
// partially initialized module instead of evaluating it again.
func (l *Loader) markInitialized(m *Module, isMain bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, done := l.initialized[m]; done {
		return false
	}
	l.initialized[m] = struct{}{}
	if isMain {
		l.main = m
	}
	return true
}

// Module returns the module this scope belongs to.
func (s *Scope) Module() *Module { return s.module }

// Main returns the loader's main module.
func (s *Scope) Main() *Module { return s.loader.Main() }

// Require resolves name relative to the scope's module directory.
func (s *Scope) Require(ctx context.Context, name ModuleName) (Artifact, error) {
	return s.loader.Require(ctx, s.module.Dir(), name, RequireOptions{})
}
