package metrics

import (
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewStdoutTracerProvider returns a provider that batches spans and writes
// them to w as JSON. Callers own Shutdown, which flushes pending spans.
func NewStdoutTracerProvider(w io.Writer, serviceVersion string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", defaultTracerName),
		attribute.String("service.version", serviceVersion),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
