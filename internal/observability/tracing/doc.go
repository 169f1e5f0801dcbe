// Package tracing wires OpenTelemetry into the HTTP API.
//
// Init installs a sampling TracerProvider and the W3C propagators;
// Middleware opens a server span per request, named after the normalized
// route so span names stay low-cardinality. Without Init the global no-op
// provider is used and Middleware costs next to nothing.
package tracing
