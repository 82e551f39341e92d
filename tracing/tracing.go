// Package tracing wires OpenTelemetry with an OTLP exporter and carries
// the span helpers the HTTP and gRPC surfaces share.
package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk_trace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNewExporter reports a failure to construct the OTLP exporter.
var ErrNewExporter = errors.New("tracing: failed to create OTLP exporter")

const tracerName = "github.com/pg-sharding/pguuidv7/tracing"

// New initializes OpenTelemetry tracing with an OTLP HTTP exporter and
// W3C trace context propagation, and installs the provider globally.
// Callers must Shutdown the returned provider to flush buffered spans.
func New(ctx context.Context, opts ...Option) (*sdk_trace.TracerProvider, error) {
	cfg := &config{
		host: defaultHost,
		port: defaultPort,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.host+":"+cfg.port),
		otlptracehttp.WithInsecure(),
	)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, errors.Join(ErrNewExporter, err)
	}

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceInstanceID(cfg.serviceID),
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.serviceVersion),
			semconv.DeploymentEnvironment(cfg.envName),
		),
	)

	provider := sdk_trace.NewTracerProvider(
		sdk_trace.WithBatcher(exporter),
		sdk_trace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider, nil
}

// Start creates a new span.
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// Continue creates a child span of the span stored in ctx. When that span
// is not recording, the context and span come back unchanged.
func Continue(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return ctx, span
	}
	return Start(ctx, name, opts...)
}
