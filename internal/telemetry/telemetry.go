// SPDX-License-Identifier: MPL-2.0

// Package telemetry configures OpenTelemetry tracing for the need CLI.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type (
	// ShutdownFunc flushes pending spans and releases exporter resources.
	ShutdownFunc func(context.Context) error

	// Config controls tracer provider setup.
	Config struct {
		// Enabled turns tracing on. When false Setup returns a no-op provider.
		Enabled bool
		// ServiceName and ServiceVersion are recorded on the trace resource.
		ServiceName    string
		ServiceVersion string
		// Writer receives exported spans as JSON.
		Writer io.Writer
	}
)

// Setup builds a tracer provider from cfg and installs it as the global
// provider. Spans are exported synchronously so that a short-lived command
// never loses them on exit.
func Setup(ctx context.Context, cfg Config) (trace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	if cfg.Writer == nil {
		return nil, nil, fmt.Errorf("telemetry: a span writer is required")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp, tp.Shutdown, nil
}
