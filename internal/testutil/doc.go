// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by resolver, accessor, config and
// CLI tests.
//
// Fixture helpers lay out module trees (WriteFiles on an afero.Fs, Files as an
// in-memory accessor) and CountingAccessor records every path fetched so tests
// can assert on lookup order and memoization. MustSetenv returns a cleanup
// func that restores the previous environment.
package testutil
