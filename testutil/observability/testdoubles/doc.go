// Package testdoubles provides test doubles (spies) for the observability interfaces.
//
// This package contains spy implementations for the dependency-free observability
// interfaces used by the Canceller, the Store and the Postgres journal:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and their final status
//   - ContextualLoggerSpy: captures structured logging with context
//   - LogHandlerSpy: captures slog handler records, for use behind a *slog.Logger
//
// These test doubles enable testing of observability instrumentation
// without requiring actual telemetry backends.
package testdoubles
