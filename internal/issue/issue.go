// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies an entry of the issue catalog.
type Id int

const (
	ModuleNotFoundId Id = iota + 1
	InvalidModuleNameId
	DuplicateCoreId
	ManifestParseErrorId
	ConfigLoadFailedId
	BackendUnavailableId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the glamour style at
// stylePath ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

const docsBase = "https://github.com/invowk/need/blob/main/docs/"

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The name could not be resolved from the starting directory.

## Where we looked (in order):
1. Core modules registered in your config
2. ` + "`node_modules`" + ` of the starting directory and every ancestor, nearest first
3. For each candidate: the file itself, the file with ` + "`.js`" + ` appended,
   the directory's ` + "`package.json`" + ` "main" entry, and finally ` + "`index.js`" + `

## Things you can try:
- Check where resolution starts:
~~~
$ need resolve lib --from ./src --verbose
~~~
- Make sure the backend root points at your project:
~~~
$ need config show
~~~`,
		docLinks: []HttpLink{docsBase + "resolution.md"},
	}

	invalidModuleNameIssue = &Issue{
		id: InvalidModuleNameId,
		mdMsg: `
# Invalid module name!

Module names may only contain letters, digits and ` + "`_ ~ / . -`" + `.

## Rules:
- Names cannot be empty or start with ` + "`/`" + `
- Relative names start with ` + "`./`" + ` or ` + "`../`" + `
- Top-level names cannot have a segment starting with ` + "`.`" + ` and cannot end with ` + "`/`" + `

## Things you can try:
~~~
$ need check ./lib/util
~~~`,
		docLinks: []HttpLink{docsBase + "names.md"},
	}

	duplicateCoreIssue = &Issue{
		id: DuplicateCoreId,
		mdMsg: `
# Core module defined twice!

A core name can only be registered once per resolver.

## Things you can try:
- Remove the duplicate entry from the ` + "`core`" + ` section of your config
- List what is currently configured:
~~~
$ need core
~~~`,
		docLinks: []HttpLink{docsBase + "core.md"},
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Malformed package manifest!

A ` + "`package.json`" + ` was found on the resolution path but it is not valid JSON.
Resolution stops here instead of silently skipping the package.

## Things you can try:
- Validate the file:
~~~
$ python3 -m json.tool path/to/package.json
~~~
- Remove the file if the package does not need a "main" entry`,
		docLinks: []HttpLink{docsBase + "resolution.md#manifests"},
		extLinks: []HttpLink{"https://docs.npmjs.com/cli/configuring-npm/package-json#main"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The config file could not be read or did not match the schema.

## Things you can try:
- See which file is used:
~~~
$ need config path
~~~
- Start over from the defaults:
~~~
$ need config init
~~~
- Check the CUE syntax of the file`,
		docLinks: []HttpLink{docsBase + "configuration.md"},
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	backendUnavailableIssue = &Issue{
		id: BackendUnavailableId,
		mdMsg: `
# Content backend unavailable!

The configured backend could not be prepared.

## Things you can try:
- For ` + "`fs`" + `: check that ` + "`backend.root`" + ` exists
- For ` + "`http`" + `: check that ` + "`backend.base_url`" + ` is an absolute http(s) URL
- For ` + "`git`" + `: check ` + "`backend.git_url`" + ` and ` + "`backend.git_ref`" + `, and that
  credentials are available (SSH key in ~/.ssh, or GITHUB_TOKEN / GITLAB_TOKEN / GIT_TOKEN)`,
		docLinks: []HttpLink{docsBase + "backends.md"},
	}

	issues = map[Id]*Issue{
		moduleNotFoundIssue.Id():     moduleNotFoundIssue,
		invalidModuleNameIssue.Id():  invalidModuleNameIssue,
		duplicateCoreIssue.Id():      duplicateCoreIssue,
		manifestParseErrorIssue.Id(): manifestParseErrorIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		backendUnavailableIssue.Id(): backendUnavailableIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	all := maps.Values(issues)
	slices.SortFunc(all, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return all
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
