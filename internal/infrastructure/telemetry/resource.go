// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope profiling for the dashboard service.
package telemetry

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported as the service.version resource attribute
const ServiceVersion = "1.0.0"

// shutdownTimeout bounds each provider's final flush.
const shutdownTimeout = 10 * time.Second

// newResource merges the SDK defaults with the service identity so every
// signal is attributed the same way.
func newResource(serviceName string) (*resource.Resource, error) {
	own := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(ServiceVersion),
	)
	res, err := resource.Merge(resource.Default(), own)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	return res, nil
}
