// SPDX-License-Identifier: MPL-2.0

// Package issue turns resolver and configuration failures into messages a
// user can act on: ActionableError carries the failed operation, the module
// or file involved and fix hints, and links to a markdown catalog entry that
// the CLI renders with glamour in verbose mode.
package issue
