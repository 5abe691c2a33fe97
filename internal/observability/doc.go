// Package observability groups the logging, metrics and tracing used by the scraper
// and the worker.
//
// Subpackages:
//   - logging: slog JSON logger with run-scoped attributes
//   - metrics: Prometheus counters for fetches, candidates and drops
//   - tracing: OpenTelemetry tracer for pipeline spans
package observability
