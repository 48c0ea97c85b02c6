// SPDX-License-Identifier: MPL-2.0

// Package need resolves module names to source artifacts the way CommonJS
// package managers lay them out.
//
// A [Resolver] is built around a single injected [Accessor], the only thing
// that ever touches bytes. Given a starting location and a requested
// [ModuleName], it:
//
//   - resolves relative names ("./x", "../x") against the start location;
//   - returns pre-registered core artifacts for reserved top-level names;
//   - otherwise walks from the start location towards the root, looking for
//     the name inside the dependency directory ("node_modules") of every
//     ancestor, nearest ancestor first;
//   - treats each candidate as a file (trying the source extension as a
//     fallback) and then as a directory, whose manifest ("package.json") may
//     redirect to a "main" entry before the implicit "index.js" is tried.
//
// Every successful fetch is memoized by normalized path for the lifetime of
// the Resolver, so re-resolving the same path returns the identical [*Module].
// Failed fetches are never memoized: content that appears later is found on
// the next reference.
//
// # Errors
//
// Malformed names ([ErrInvalidRequest]), duplicate core registrations
// ([ErrDuplicateCore]) and unparsable manifests ([ErrManifestParse]) are
// returned as errors. A name that simply cannot be found is not an error:
// [Resolver.Resolve] reports it with ok == false so callers can try elsewhere.
//
// # Loading
//
// [Loader] layers the consumer side on top: it requires modules, registers
// core aliases, and hands each [*Module] exactly once to an injected
// [Evaluator] together with a [Scope] bound to the module's directory. This
// package never executes source itself.
package need
