package slogobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"compact", FormatCompact},
		{"pretty", FormatPretty},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" Pretty ", FormatPretty},
		{"", FormatCompact},
		{"yaml", FormatCompact},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
	}

	for _, tt := range tests {
		if got := levelName(tt.level); got != tt.want {
			t.Errorf("levelName(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFormatFromEnv(t *testing.T) {
	t.Run("primary wins over fallback", func(t *testing.T) {
		t.Setenv("CELESTE_LOG_FORMAT", "pretty")
		t.Setenv("LOG_FORMAT", "json")
		if got := formatFromEnv(); got != FormatPretty {
			t.Errorf("formatFromEnv() = %v, want pretty", got)
		}
	})

	t.Run("fallback applies when primary unset", func(t *testing.T) {
		t.Setenv("CELESTE_LOG_FORMAT", "")
		t.Setenv("LOG_FORMAT", "json")
		if got := formatFromEnv(); got != FormatJSON {
			t.Errorf("formatFromEnv() = %v, want json", got)
		}
	})

	t.Run("default is compact", func(t *testing.T) {
		t.Setenv("CELESTE_LOG_FORMAT", "")
		t.Setenv("LOG_FORMAT", "")
		if got := formatFromEnv(); got != FormatCompact {
			t.Errorf("formatFromEnv() = %v, want compact", got)
		}
	})
}

func TestLevelFromEnv(t *testing.T) {
	t.Run("primary wins over fallback", func(t *testing.T) {
		t.Setenv("CELESTE_LOG_LEVEL", "error")
		t.Setenv("LOG_LEVEL", "debug")
		if got := levelFromEnv(); got != slog.LevelError {
			t.Errorf("levelFromEnv() = %v, want error", got)
		}
	})

	t.Run("default is info", func(t *testing.T) {
		t.Setenv("CELESTE_LOG_LEVEL", "")
		t.Setenv("LOG_LEVEL", "")
		if got := levelFromEnv(); got != slog.LevelInfo {
			t.Errorf("levelFromEnv() = %v, want info", got)
		}
	})
}

func TestOptions(t *testing.T) {
	var out bytes.Buffer
	cfg := newConfig(
		WithFormat(FormatJSON),
		WithLevel(slog.LevelDebug),
		WithOutput(&out),
		WithColors(true),
	)

	if cfg.format != FormatJSON {
		t.Errorf("format = %v, want json", cfg.format)
	}
	if cfg.level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", cfg.level)
	}
	if cfg.output != &out {
		t.Error("output writer not applied")
	}
	if !cfg.colors || !cfg.colorsSet {
		t.Error("WithColors(true) must set and mark colors")
	}
}

func TestWithLoggerTakesPrecedence(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	obs := New(WithLogger(logger), WithFormat(FormatJSON))
	obs.Info(context.Background(), "routed")

	if !bytes.Contains(out.Bytes(), []byte("routed")) {
		t.Errorf("expected message through provided logger, got %q", out.String())
	}
}
