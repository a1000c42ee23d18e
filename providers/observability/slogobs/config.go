package slogobs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the shape of emitted log lines.
type Format string

const (
	// FormatCompact is one line per record with attributes as trailing JSON.
	FormatCompact Format = "compact"
	// FormatPretty spreads attributes over bulleted follow-up lines.
	FormatPretty Format = "pretty"
	// FormatJSON emits one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug and is filtered out unless the
// level is lowered explicitly or via CELESTE_LOG_LEVEL=trace.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat maps a format name to a Format, case-insensitively.
// Unknown names fall back to FormatCompact.
func ParseFormat(name string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatPretty:
		return FormatPretty
	case FormatJSON:
		return FormatJSON
	default:
		return FormatCompact
	}
}

// ParseLevel maps a level name (trace, debug, info, warn, warning, error)
// to a slog.Level, case-insensitively. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelName is the inverse of ParseLevel for the levels this package emits.
func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// formatFromEnv reads CELESTE_LOG_FORMAT, then LOG_FORMAT.
func formatFromEnv() Format {
	if v := os.Getenv("CELESTE_LOG_FORMAT"); v != "" {
		return ParseFormat(v)
	}
	return ParseFormat(os.Getenv("LOG_FORMAT"))
}

// levelFromEnv reads CELESTE_LOG_LEVEL, then LOG_LEVEL.
func levelFromEnv() slog.Level {
	if v := os.Getenv("CELESTE_LOG_LEVEL"); v != "" {
		return ParseLevel(v)
	}
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// Option configures New.
type Option func(*config)

type config struct {
	format    Format
	level     slog.Level
	output    io.Writer
	colors    bool
	colorsSet bool
	logger    *slog.Logger
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithLevel sets the minimum level that is emitted.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput redirects log lines away from os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithColors forces ANSI colors on or off. Without it, colors are enabled
// only when the output is a terminal and the format is not JSON.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
		c.colorsSet = true
	}
}

// WithLogger routes everything through an existing slog.Logger, ignoring
// the format, level, output, and color options.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		format: formatFromEnv(),
		level:  levelFromEnv(),
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
