// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Two flows are supported:
//
//  1. [Unify] compiles an embedded schema and user CUE data, unifies the data
//     with a schema definition and validates the result (used for config files).
//  2. [ExtractJSON] syntax-checks JSON through CUE's JSON decoder and returns
//     the unevaluated syntax tree, which [LookupString] reads with last-wins
//     semantics for repeated keys (used for package manifests, whose
//     unexpected shapes are not errors).
//
// Both flows guard against oversized input and format CUE errors with
// JSON-path prefixes:
//
//	v, err := cueutil.Unify(configSchema, data, "#Config",
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
//	if err != nil {
//	    return err // config.cue: backend.kind: 2 errors in empty disjunction ...
//	}
package cueutil
