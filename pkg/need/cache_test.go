// SPDX-License-Identifier: MPL-2.0

package need

import (
	"context"
	"errors"
	"testing"

	"github.com/invowk/need/internal/testutil"
	"github.com/invowk/need/pkg/modpath"
)

func newTestCache(acc Accessor, opts ...Option) *resolutionCache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newResolutionCache(acc, &o)
}

func TestResolutionCache_GetAtPathMemoizesSuccess(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(testutil.Files{"/a.js": "a"})
	c := newTestCache(acc)
	ctx := context.Background()

	first, ok := c.getAtPath(ctx, "/a.js")
	if !ok {
		t.Fatal("getAtPath(/a.js) not found")
	}
	second, ok := c.getAtPath(ctx, "/a.js")
	if !ok || first != second {
		t.Fatalf("second getAtPath returned %p, want identical %p", second, first)
	}
	if first.ID() != "/a.js" || first.Source() != "a" {
		t.Errorf("module = {%q, %q}", first.ID(), first.Source())
	}
	if n := acc.CallsTo("/a.js"); n != 1 {
		t.Errorf("accessor called %d times for /a.js, want 1", n)
	}
}

func TestResolutionCache_FailuresAreRetried(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(nil)
	c := newTestCache(acc)
	ctx := context.Background()

	if _, ok := c.getAtPath(ctx, "/late.js"); ok {
		t.Fatal("getAtPath(/late.js) found a missing file")
	}
	acc.Set("/late.js", "late")
	m, ok := c.getAtPath(ctx, "/late.js")
	if !ok || m.Source() != "late" {
		t.Fatalf("getAtPath(/late.js) after it appeared = (%v, %v)", m, ok)
	}
	if n := acc.CallsTo("/late.js"); n != 2 {
		t.Errorf("accessor called %d times, want 2", n)
	}
}

func TestResolutionCache_RejectsNonText(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(testutil.Files{"/bin.js": string([]byte{0xff, 0xfe})})
	c := newTestCache(acc)

	if _, ok := c.getAtPath(context.Background(), "/bin.js"); ok {
		t.Error("getAtPath accepted invalid UTF-8 content")
	}
}

func TestResolutionCache_GetFile(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(testutil.Files{
		"/lib":     "exact",
		"/util.js": "with extension",
	})
	c := newTestCache(acc)
	ctx := context.Background()

	if m, ok := c.getFile(ctx, "/lib"); !ok || m.Source() != "exact" {
		t.Errorf("getFile(/lib) = (%v, %v), want exact match", m, ok)
	}
	if m, ok := c.getFile(ctx, "/util"); !ok || m.ID() != "/util.js" {
		t.Errorf("getFile(/util) = (%v, %v), want /util.js", m, ok)
	}
	if _, ok := c.getFile(ctx, "/util/"); ok {
		t.Error("getFile accepted a name with a trailing slash")
	}
	if n := acc.CallsTo("/util/"); n != 0 {
		t.Errorf("trailing slash name reached the accessor %d times", n)
	}
}

func TestResolutionCache_GetDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   testutil.Files
		opts    []Option
		wantID  modpath.Path
		wantOK  bool
		wantErr error
	}{
		{
			name: "manifest main wins over index",
			files: testutil.Files{
				"/pkg/package.json": `{"main": "lib/foo"}`,
				"/pkg/lib/foo.js":   "foo",
				"/pkg/index.js":     "index",
			},
			wantID: "/pkg/lib/foo.js",
			wantOK: true,
		},
		{
			name: "main is normalized",
			files: testutil.Files{
				"/pkg/package.json": `{"main": "./dist/../lib/foo.js"}`,
				"/pkg/lib/foo.js":   "foo",
			},
			wantID: "/pkg/lib/foo.js",
			wantOK: true,
		},
		{
			name: "repeated main key uses the last value",
			files: testutil.Files{
				"/pkg/package.json": `{"main": "a", "main": "b"}`,
				"/pkg/a.js":         "a",
				"/pkg/b.js":         "b",
			},
			wantID: "/pkg/b.js",
			wantOK: true,
		},
		{
			name: "repeated unrelated key is not an error",
			files: testutil.Files{
				"/pkg/package.json": `{"main": "b", "version": "1", "version": "2"}`,
				"/pkg/b.js":         "b",
			},
			wantID: "/pkg/b.js",
			wantOK: true,
		},
		{
			name: "missing main does not fall back to index",
			files: testutil.Files{
				"/pkg/package.json": `{"main": "missing"}`,
				"/pkg/index.js":     "index",
			},
			wantOK: false,
		},
		{
			name: "no manifest uses index",
			files: testutil.Files{
				"/pkg/index.js": "index",
			},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "manifest without main uses index",
			files: testutil.Files{
				"/pkg/package.json": `{"name": "pkg"}`,
				"/pkg/index.js":     "index",
			},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "non-string main uses index",
			files: testutil.Files{
				"/pkg/package.json": `{"main": ["a.js"]}`,
				"/pkg/index.js":     "index",
			},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "array manifest uses index",
			files: testutil.Files{
				"/pkg/package.json": `["lib/foo"]`,
				"/pkg/index.js":     "index",
			},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "null manifest uses index",
			files: testutil.Files{
				"/pkg/package.json": `null`,
				"/pkg/index.js":     "index",
			},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "malformed manifest is fatal",
			files: testutil.Files{
				"/pkg/package.json": `{"main": `,
				"/pkg/index.js":     "index",
			},
			wantErr: ErrManifestParse,
		},
		{
			name: "disabled manifest is never read",
			files: testutil.Files{
				"/pkg/package.json": `{"main": `,
				"/pkg/index.js":     "index",
			},
			opts:   []Option{WithManifest("")},
			wantID: "/pkg/index.js",
			wantOK: true,
		},
		{
			name: "custom manifest, index and extension",
			files: testutil.Files{
				"/pkg/module.json": `{"main": "entry"}`,
				"/pkg/entry.mjs":   "entry",
			},
			opts:   []Option{WithManifest("module.json"), WithExtension(".mjs"), WithIndexName("main")},
			wantID: "/pkg/entry.mjs",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(tt.files, tt.opts...)
			m, ok, err := c.getDirectory(context.Background(), "/pkg")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("getDirectory() error = %v, want %v", err, tt.wantErr)
				}
				var manifestErr *ManifestError
				if !errors.As(err, &manifestErr) || manifestErr.Path != "/pkg/package.json" {
					t.Errorf("error should be *ManifestError for /pkg/package.json, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("getDirectory() unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("getDirectory() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && m.ID() != tt.wantID {
				t.Errorf("getDirectory() = %q, want %q", m.ID(), tt.wantID)
			}
		})
	}
}

func TestResolutionCache_ConcurrentFetchesShareOneModule(t *testing.T) {
	t.Parallel()

	acc := testutil.NewCountingAccessor(testutil.Files{"/a.js": "a"})
	c := newTestCache(acc)

	const workers = 16
	results := make(chan *Module, workers)
	for range workers {
		go func() {
			m, _ := c.getAtPath(context.Background(), "/a.js")
			results <- m
		}()
	}

	first := <-results
	for range workers - 1 {
		if m := <-results; m != first {
			t.Fatalf("concurrent getAtPath returned distinct modules %p and %p", first, m)
		}
	}
}
