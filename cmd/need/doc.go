// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for need.
//
// The command tree is built around an App composition root: every handler
// receives the App and reaches configuration, the content backend and the
// output streams through it, so tests can swap any of them.
package cmd
