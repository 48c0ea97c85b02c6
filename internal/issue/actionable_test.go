// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("no candidate matched")
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "resolve module"}, "failed to resolve module"},
		{"with resource", &ActionableError{Operation: "resolve module", Resource: "lodash"}, "failed to resolve module: lodash"},
		{"with cause", &ActionableError{Operation: "resolve module", Cause: cause}, "failed to resolve module: no candidate matched"},
		{
			"resource and cause",
			&ActionableError{Operation: "read module manifest", Resource: "/app/node_modules/x/package.json", Cause: cause},
			"failed to read module manifest: /app/node_modules/x/package.json: no candidate matched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_UnwrapChain(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("reading /etc/need/config.cue: %w", fs.ErrNotExist)
	err := NewErrorContext().WithOperation("load configuration").Wrap(wrapped).BuildError()

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is() did not reach the wrapped sentinel")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As() did not find *ActionableError")
	}
	if ae.Unwrap() != wrapped {
		t.Errorf("Unwrap() = %v, want %v", ae.Unwrap(), wrapped)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	ae := &ActionableError{
		Operation:   "open module backend",
		Resource:    "https://cdn.example.com",
		Suggestions: []string{"Check the backend base_url", "Retry with --verbose"},
		Cause:       fmt.Errorf("GET /index.js: %w", inner),
	}

	brief := ae.Format(false)
	for _, want := range []string{"failed to open module backend", "  • Check the backend base_url", "  • Retry with --verbose"} {
		if !strings.Contains(brief, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, brief)
		}
	}
	if strings.Contains(brief, "Error chain:") {
		t.Errorf("Format(false) includes the error chain:\n%s", brief)
	}

	verbose := ae.Format(true)
	for _, want := range []string{"Error chain:", "1. GET /index.js: connection refused", "2. connection refused"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestActionableError_FormatWithoutSuggestions(t *testing.T) {
	t.Parallel()

	ae := &ActionableError{Operation: "validate module name", Resource: "/abs"}
	if got := ae.Format(true); got != "failed to validate module name: /abs" {
		t.Errorf("Format(true) = %q", got)
	}
	if ae.HasSuggestions() {
		t.Error("HasSuggestions() = true, want false")
	}
}

func TestActionableError_Issue(t *testing.T) {
	t.Parallel()

	if got := (&ActionableError{Operation: "x"}).Issue(); got != nil {
		t.Errorf("Issue() = %v, want nil", got)
	}
	ae := &ActionableError{Operation: "x", IssueId: ModuleNotFoundId}
	if got := ae.Issue(); got == nil || got.Id() != ModuleNotFoundId {
		t.Errorf("Issue() = %v, want the ModuleNotFoundId entry", got)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad json")
	ae := NewErrorContext().
		WithOperation("read module manifest").
		WithResource("/lib/package.json").
		WithSuggestion("Fix the JSON syntax").
		WithSuggestion("Remove the manifest to fall back to index.js").
		WithIssue(ManifestParseErrorId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.Operation != "read module manifest" || ae.Resource != "/lib/package.json" {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if ae.IssueId != ManifestParseErrorId || ae.Cause != cause {
		t.Errorf("IssueId/Cause = %v/%v", ae.IssueId, ae.Cause)
	}
}

func TestErrorContext_RequiresOperation(t *testing.T) {
	t.Parallel()

	c := NewErrorContext().WithResource("lodash").Wrap(errors.New("x"))
	if ae := c.Build(); ae != nil {
		t.Errorf("Build() = %v, want nil", ae)
	}
	if err := c.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want a nil interface", err)
	}
}

func TestErrorContext_BuildsIndependentErrors(t *testing.T) {
	t.Parallel()

	c := NewErrorContext().WithOperation("load configuration").WithSuggestion("first")
	first := c.Build()
	c.WithSuggestion("second").WithResource("need.cue")
	second := c.Build()

	if len(first.Suggestions) != 1 || first.Resource != "" {
		t.Errorf("first error changed after later builder calls: %+v", first)
	}
	if len(second.Suggestions) != 2 || second.Resource != "need.cue" {
		t.Errorf("second = %+v", second)
	}
}
