// SPDX-License-Identifier: MPL-2.0

package need_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/invowk/need/internal/testutil"
	"github.com/invowk/need/pkg/modpath"
	"github.com/invowk/need/pkg/need"
)

// recordingEvaluator records evaluated module IDs and follows "require:<name>"
// lines in module sources through the scope.
type recordingEvaluator struct {
	mu        sync.Mutex
	evaluated []modpath.Path
}

func (e *recordingEvaluator) Evaluate(ctx context.Context, m *need.Module, scope *need.Scope) error {
	e.mu.Lock()
	e.evaluated = append(e.evaluated, m.ID())
	e.mu.Unlock()

	if scope.Module() != m {
		return errors.New("scope belongs to another module")
	}
	for line := range strings.Lines(m.Source()) {
		name, ok := strings.CutPrefix(strings.TrimSpace(line), "require:")
		if !ok {
			continue
		}
		if _, err := scope.Require(ctx, need.ModuleName(name)); err != nil {
			return err
		}
	}
	return nil
}

func (e *recordingEvaluator) ids() []modpath.Path {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.evaluated)
}

func TestLoader_RequireEvaluatesOnce(t *testing.T) {
	t.Parallel()

	eval := &recordingEvaluator{}
	l := need.NewLoader(mustResolver(t, testutil.Files{
		"/app/main.js":                   "require:./lib/a\nrequire:dep",
		"/app/lib/a.js":                  "require:../main\nrequire:dep",
		"/app/node_modules/dep/index.js": "dep",
	}), eval)
	ctx := context.Background()

	a, err := l.Require(ctx, "/app/", "./main", need.RequireOptions{Main: true})
	if err != nil {
		t.Fatalf("Require() unexpected error: %v", err)
	}
	main, ok := a.(*need.Module)
	if !ok || main.ID() != "/app/main.js" {
		t.Fatalf("Require() = %v, want /app/main.js", a)
	}
	if l.Main() != main {
		t.Errorf("Main() = %v, want %v", l.Main(), main)
	}

	want := []modpath.Path{"/app/main.js", "/app/lib/a.js", "/app/node_modules/dep/index.js"}
	if got := eval.ids(); !slices.Equal(got, want) {
		t.Errorf("evaluation order = %v, want %v", got, want)
	}

	if _, err := l.Require(ctx, "/app/lib/", "../main", need.RequireOptions{}); err != nil {
		t.Fatalf("second Require() unexpected error: %v", err)
	}
	if got := eval.ids(); len(got) != len(want) {
		t.Errorf("modules re-evaluated: %v", got)
	}
}

func TestLoader_RequireNotFound(t *testing.T) {
	t.Parallel()

	l := need.NewLoader(mustResolver(t, testutil.Files{}), nil)

	_, err := l.Require(context.Background(), "/app/", "missing", need.RequireOptions{})
	if !errors.Is(err, need.ErrNotFound) {
		t.Fatalf("Require() error = %v, want ErrNotFound", err)
	}
	var notFound *need.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error should be *NotFoundError, got: %T", err)
	}
	if notFound.Start != "/app/" || notFound.Name != "missing" {
		t.Errorf("NotFoundError = %+v", notFound)
	}
}

func TestLoader_RequireInvalidName(t *testing.T) {
	t.Parallel()

	l := need.NewLoader(mustResolver(t, testutil.Files{}), nil)

	_, err := l.Require(context.Background(), "/app/", "/abs", need.RequireOptions{})
	if !errors.Is(err, need.ErrInvalidRequest) {
		t.Errorf("Require() error = %v, want ErrInvalidRequest", err)
	}
}

func TestLoader_EvaluatorError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	calls := 0
	l := need.NewLoader(mustResolver(t, testutil.Files{"/a.js": "a"}),
		need.EvaluatorFunc(func(context.Context, *need.Module, *need.Scope) error {
			calls++
			return errBoom
		}))

	_, err := l.Require(context.Background(), "/", "./a", need.RequireOptions{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Require() error = %v, want errBoom", err)
	}
	if !strings.Contains(err.Error(), "/a.js") {
		t.Errorf("error %q does not name the module", err)
	}

	// The module stays marked, so a failing module is not evaluated twice.
	if _, err := l.Require(context.Background(), "/", "./a", need.RequireOptions{}); err != nil {
		t.Errorf("second Require() unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("evaluator called %d times, want 1", calls)
	}
}

func TestLoader_RequireAsCore(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(testutil.Files{
		"/lib/events.js": "events",
	})
	l := need.NewLoader(mustResolver(t, acc), nil)
	ctx := context.Background()

	a, err := l.Require(ctx, "/lib/", "./events", need.RequireOptions{Core: "events"})
	if err != nil {
		t.Fatalf("Require() unexpected error: %v", err)
	}

	before := len(acc.Calls())
	got, err := l.Require(ctx, "/anywhere/else/", "events", need.RequireOptions{})
	if err != nil {
		t.Fatalf("Require(events) unexpected error: %v", err)
	}
	if got != a {
		t.Errorf("core name resolved to %v, want %v", got, a)
	}
	if after := len(acc.Calls()); after != before {
		t.Errorf("core lookup reached the accessor %d times", after-before)
	}

	_, err = l.Require(ctx, "/lib/", "./events", need.RequireOptions{Core: "events"})
	if !errors.Is(err, need.ErrDuplicateCore) {
		t.Errorf("re-registering core error = %v, want ErrDuplicateCore", err)
	}
}

func TestLoader_LoadCore(t *testing.T) {
	t.Parallel()

	eval := &recordingEvaluator{}
	l := need.NewLoader(mustResolver(t, testutil.Files{
		"/core/node_modules/util.js":          "util",
		"/core/node_modules/stream/index.js":  "require:util",
		"/core/node_modules/polyfill/path.js": "path",
	}), eval)

	err := l.LoadCore(context.Background(), "/core/", []need.CoreEntry{
		{Name: "util"},
		{Name: "stream"},
		{Name: "path", Target: "polyfill/path"},
	})
	if err != nil {
		t.Fatalf("LoadCore() unexpected error: %v", err)
	}

	want := []need.ModuleName{"path", "stream", "util"}
	if names := l.Resolver().CoreNames(); !slices.Equal(names, want) {
		t.Errorf("CoreNames() = %v, want %v", names, want)
	}

	a, ok, err := l.Resolver().Resolve(context.Background(), "/elsewhere/", "path")
	if err != nil || !ok {
		t.Fatalf("Resolve(path) = (%v, %v, %v)", a, ok, err)
	}
	if m := a.(*need.Module); m.ID() != "/core/node_modules/polyfill/path.js" {
		t.Errorf("core path = %q", m.ID())
	}

	// Entries load in name order; stream pulls in util as a regular require.
	wantEval := []modpath.Path{
		"/core/node_modules/polyfill/path.js",
		"/core/node_modules/stream/index.js",
		"/core/node_modules/util.js",
	}
	if got := eval.ids(); !slices.Equal(got, wantEval) {
		t.Errorf("evaluation order = %v, want %v", got, wantEval)
	}
}

func TestLoader_LoadCoreMissing(t *testing.T) {
	t.Parallel()

	l := need.NewLoader(mustResolver(t, testutil.Files{}), nil)

	err := l.LoadCore(context.Background(), "/", []need.CoreEntry{{Name: "absent"}})
	if !errors.Is(err, need.ErrNotFound) {
		t.Errorf("LoadCore() error = %v, want ErrNotFound", err)
	}
}

func TestLoader_CorePayloadIsNotEvaluated(t *testing.T) {
	t.Parallel()

	r := mustResolver(t, testutil.Files{})
	if err := r.RegisterCore("os", struct{ Name string }{"os"}); err != nil {
		t.Fatalf("RegisterCore() unexpected error: %v", err)
	}
	called := false
	l := need.NewLoader(r, need.EvaluatorFunc(func(context.Context, *need.Module, *need.Scope) error {
		called = true
		return nil
	}))

	if _, err := l.Require(context.Background(), "/", "os", need.RequireOptions{}); err != nil {
		t.Fatalf("Require(os) unexpected error: %v", err)
	}
	if called {
		t.Error("evaluator was called for a core payload")
	}
}

func TestModule_Dir(t *testing.T) {
	t.Parallel()

	m := mustResolveModule(t, mustResolver(t, testutil.Files{"/proj/lib/index.js": "x"}), "/proj/", "./lib")
	if got := m.Dir(); got != "/proj/lib/" {
		t.Errorf("Dir() = %q, want /proj/lib/", got)
	}
}

func TestLoader_ScopeResolvesFromModuleDir(t *testing.T) {
	t.Parallel()

	r := mustResolver(t, testutil.Files{
		"/proj/lib/index.js":  "lib",
		"/proj/lib/helper.js": "lib helper",
		"/proj/helper.js":     "root helper",
	})
	l := need.NewLoader(r, nil)
	m := mustResolveModule(t, r, "/proj/", "./lib")

	scope := l.Scope(m)
	if scope.Module() != m {
		t.Fatal("Scope().Module() is not the module it was created for")
	}
	a, err := scope.Require(context.Background(), "./helper")
	if err != nil {
		t.Fatalf("Require() unexpected error: %v", err)
	}
	got, ok := a.(*need.Module)
	if !ok {
		t.Fatalf("Require() returned %T, want *need.Module", a)
	}
	if got.ID() != "/proj/lib/helper.js" {
		t.Errorf("Require() ID = %q, want /proj/lib/helper.js", got.ID())
	}
}
