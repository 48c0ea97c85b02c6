// SPDX-License-Identifier: MPL-2.0

package need

import (
	"context"

	"github.com/invowk/need/pkg/modpath"
)

type (
	// Accessor fetches the raw text stored at a normalized path.
	//
	// Any returned error only means "nothing usable here": the Resolver moves
	// on to the next candidate. Implementations own cancellation and timeout
	// semantics and are called one path at a time.
	Accessor interface {
		Fetch(ctx context.Context, path modpath.Path) (string, error)
	}

	// AccessorFunc adapts a function to the Accessor interface.
	AccessorFunc func(ctx context.Context, path modpath.Path) (string, error)
)

// Fetch calls f(ctx, path).
func (f AccessorFunc) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	return f(ctx, path)
}
