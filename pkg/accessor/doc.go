// SPDX-License-Identifier: MPL-2.0

// Package accessor provides content backends for the need resolver.
//
// Every backend implements need.Accessor: it maps a normalized module path
// such as "/proj/node_modules/lib/index.js" to the text stored there.
//
//   - FS reads from any afero filesystem; NewOSRoot maps "/" onto a directory.
//   - HTTP issues GET requests below a base URL.
//   - Git reads blobs from a commit tree, usually cloned into memory by CloneGit.
//   - Traced wraps another backend and records one span per fetch.
//
// Backends report every miss as an error. The resolver treats any error as
// "nothing usable here" and moves on to its next candidate.
package accessor
