// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"
	"testing"
)

var allIds = []Id{
	ModuleNotFoundId,
	InvalidModuleNameId,
	DuplicateCoreId,
	ManifestParseErrorId,
	ConfigLoadFailedId,
	BackendUnavailableId,
}

func stubRender(t *testing.T) {
	t.Helper()
	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if ModuleNotFoundId != 1 {
		t.Errorf("ModuleNotFoundId = %d, want 1", ModuleNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ModuleNotFoundId, false, "Module not found"},
		{InvalidModuleNameId, false, "Invalid module name"},
		{DuplicateCoreId, false, "Core module defined twice"},
		{ManifestParseErrorId, false, "Malformed package manifest"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{BackendUnavailableId, false, "Content backend unavailable"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("issue.Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(allIds) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}

	ids := make([]Id, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.Id())
	}
	if !slices.Equal(ids, allIds) {
		t.Errorf("Values() ids = %v, want %v in order", ids, allIds)
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := Get(ManifestParseErrorId)

	docs := issue.DocLinks()
	if len(docs) == 0 {
		t.Fatal("DocLinks() is empty")
	}
	docs[0] = "modified"
	if issue.DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a clone")
	}

	ext := issue.ExtLinks()
	if len(ext) == 0 {
		t.Fatal("ExtLinks() is empty")
	}
	ext[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestAllIssuesHaveDocLinks(t *testing.T) {
	for _, issue := range Values() {
		if len(issue.DocLinks()) == 0 {
			t.Errorf("Issue %d has no doc links", issue.Id())
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	for _, want := range []string{"See also", "<https://docs.example.com>", "<https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output should contain %q:\n%s", want, rendered)
		}
	}
}

func TestIssue_Render_NoLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{
		id:    Id(9998),
		mdMsg: "# Test Issue\n\nNo links here.",
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	// Uses the real glamour renderer with a style that emits no ANSI codes.
	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
