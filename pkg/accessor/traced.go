// SPDX-License-Identifier: MPL-2.0

package accessor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/invowk/need/pkg/modpath"
	"github.com/invowk/need/pkg/need"
)

// TracerName is the instrumentation name used by Traced.
const TracerName = "github.com/invowk/need/pkg/accessor"

// Span attribute keys recorded by Traced.
const (
	AttrPath    = "need.fetch.path"
	AttrBackend = "need.fetch.backend"
	AttrFound   = "need.fetch.found"
	AttrBytes   = "need.fetch.bytes"
)

type (
	// Traced wraps an accessor and records one span per fetch.
	// Misses are ordinary outcomes of resolution and leave the span status
	// unset; any other failure marks the span as an error.
	Traced struct {
		next    need.Accessor
		backend string
		tracer  trace.Tracer
	}

	// TracedOption configures a Traced accessor.
	TracedOption func(*Traced)
)

// NewTraced wraps next. backend names the wrapped backend in span attributes.
func NewTraced(next need.Accessor, backend string, opts ...TracedOption) *Traced {
	t := &Traced{
		next:    next,
		backend: backend,
		tracer:  otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTracerProvider uses tp instead of the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracedOption {
	return func(t *Traced) {
		t.tracer = tp.Tracer(TracerName)
	}
}

// Fetch delegates to the wrapped accessor inside a span.
func (t *Traced) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	ctx, span := t.tracer.Start(ctx, "accessor.Fetch",
		trace.WithAttributes(
			attribute.String(AttrPath, path.String()),
			attribute.String(AttrBackend, t.backend),
		),
	)
	defer span.End()

	content, err := t.next.Fetch(ctx, path)
	if err != nil {
		span.SetAttributes(attribute.Bool(AttrFound, false))
		if !IsNotExist(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return "", err
	}

	span.SetAttributes(
		attribute.Bool(AttrFound, true),
		attribute.Int(AttrBytes, len(content)),
	)
	return content, nil
}
