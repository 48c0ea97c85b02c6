// SPDX-License-Identifier: MPL-2.0

package need

import "github.com/invowk/need/pkg/modpath"

type (
	// Artifact is anything a Resolver can return: a *Module fetched through
	// the accessor, or whatever payload was registered for a core name.
	Artifact any

	// Module is a source unit fetched through the accessor. Its ID is fixed
	// at creation and always equals the normalized path it was fetched from.
	Module struct {
		id     modpath.Path
		source string
	}
)

func newModule(id modpath.Path, source string) *Module {
	return &Module{id: id, source: source}
}

// ID returns the normalized path the module was fetched from.
func (m *Module) ID() modpath.Path { return m.id }

// Source returns the module's source text.
func (m *Module) Source() string { return m.source }

// Dir returns the location relative names inside this module resolve from.
func (m *Module) Dir() string { return string(m.id.Dir()) }
