package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/withceleste/celeste/providers/observability"
)

// Observer routes spans, metrics, and log messages through a slog.Logger.
type Observer struct {
	logger  *slog.Logger
	metrics *metricSet
}

var _ observability.Provider = (*Observer)(nil)

// New builds an Observer. Without options it emits compact lines at INFO
// level to stdout, honoring CELESTE_LOG_FORMAT and CELESTE_LOG_LEVEL.
//
//	observer := slogobs.New(
//	    slogobs.WithFormat(slogobs.FormatJSON),
//	    slogobs.WithLevel(slog.LevelDebug),
//	)
func New(opts ...Option) *Observer {
	cfg := newConfig(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(newHandler(cfg))
	}

	return &Observer{
		logger:  logger,
		metrics: newMetricSet(logger),
	}
}

// StartSpan logs the span opening at DEBUG and returns a span whose End
// logs the elapsed time together with every attribute gathered so far.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	s := &span{
		name:    name,
		started: time.Now(),
		logger:  o.logger,
		attrs:   attrs,
	}

	logAttrs := append([]slog.Attr{
		slog.String("span", name),
		slog.String("event", "span.start"),
	}, slogAttrs(attrs)...)
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span", logAttrs...)

	return ctx, s
}

// Counter returns the accumulating counter registered under name.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counterNamed(name)
}

// Histogram returns the histogram registered under name.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogramNamed(name)
}

// Trace logs below DEBUG; see LevelTrace.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, LevelTrace, msg, slogAttrs(attrs)...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, slogAttrs(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, slogAttrs(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, slogAttrs(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, slogAttrs(attrs)...)
}

// span collects attributes over its lifetime and reports them on End.
type span struct {
	name    string
	started time.Time
	logger  *slog.Logger

	mu    sync.Mutex
	attrs []observability.Attribute
}

func (s *span) End() {
	s.mu.Lock()
	attrs := s.attrs
	s.mu.Unlock()

	logAttrs := append([]slog.Attr{
		slog.String("span", s.name),
		slog.String("event", "span.end"),
		slog.Duration("duration", time.Since(s.started)),
	}, slogAttrs(attrs)...)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span", logAttrs...)
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, status))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

func (s *span) RecordError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	s.attrs = append(s.attrs, observability.Error(err))
	s.mu.Unlock()

	s.logger.LogAttrs(context.Background(), slog.LevelError, "span",
		slog.String("span", s.name),
		slog.String("event", "error"),
		slog.String("error", err.Error()),
	)
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	logAttrs := append([]slog.Attr{
		slog.String("span", s.name),
		slog.String("event", name),
	}, slogAttrs(attrs)...)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span", logAttrs...)
}

func slogAttrs(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}
