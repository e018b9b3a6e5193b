// Package observability defines the tracing and structured-logging contract
// used across the dispatcher, cache, and provider implementations. Spans and
// observers travel through context.Context; components that find none in the
// context emit nothing, so instrumentation is always optional.
//
// Package slogobs provides the default implementation backed by log/slog.
package observability
