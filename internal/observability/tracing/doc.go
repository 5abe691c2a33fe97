// Package tracing exposes the OpenTelemetry tracer for scrape runs.
//
// No exporter is configured here; cmd binaries or tests install a TracerProvider with
// otel.SetTracerProvider, and spans started through Tracer follow it.
package tracing
