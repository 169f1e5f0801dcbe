// Package observability groups the logging, metrics and tracing helpers
// shared by the api, worker and farmctl binaries.
//
// Subpackages:
//   - logging: slog setup and request-scoped loggers
//   - metrics: Prometheus collectors for HTTP, analysis, cart and telemetry
//   - tracing: OpenTelemetry HTTP middleware and tracer access
package observability
