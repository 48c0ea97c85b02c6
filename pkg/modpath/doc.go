// SPDX-License-Identifier: MPL-2.0

// Package modpath provides purely textual handling of module paths.
//
// A module path is a "/"-separated string that never contains "." or ".."
// segments once normalized. Normalization never consults a filesystem and has
// no notion of symlinks: [Join] only rewrites text, which lets the same paths
// address files on disk, URLs on a web server, or blobs in a git tree.
package modpath
