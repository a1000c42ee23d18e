// Package slogobs adapts Go's log/slog into an observability.Provider.
// Spans, metrics, and log lines all flow through one slog.Logger, so a
// single writer captures the full trace of a generation call without any
// external telemetry backend. The zero-argument New reads CELESTE_LOG_FORMAT
// and CELESTE_LOG_LEVEL from the environment; options override both.
package slogobs
