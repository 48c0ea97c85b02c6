// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// These benchmarks cover the hot paths of module resolution:
//   - path normalization
//   - manifest extraction
//   - cold and warm resolution through the ancestor walk
//   - filesystem-backed resolution
//   - CUE config loading
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -bench . -cpuprofile default.pgo
package benchmark
