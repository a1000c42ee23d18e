package middleware

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/providers/transport"
)

// LogLevel controls how much detail the logging middleware emits per
// request.
type LogLevel int

const (
	// LogLevelMinimal logs only the provider, total duration, and
	// response size. Use this when you want lightweight audit trails
	// without noise.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard logs everything in Minimal plus the request URL
	// and body sizes. This is the recommended default for most
	// applications.
	LogLevelStandard

	// LogLevelVerbose logs everything in Standard plus the request and
	// response bodies, each truncated to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It will log raw
	// prompt and response payloads, which may contain sensitive user
	// data, secrets, or PII. It is intended solely for local debugging.
	LogLevelVerbose
)

// truncateLen is the maximum body length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a MiddlewareConfig that emits structured
// slog entries before and after every provider call. Both blocking and
// streaming calls are covered: for streams the completion entry is
// emitted once the event source is exhausted or fails.
//
// The logger parameter must not be nil. Use slog.Default() if you have
// not configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send:   buildSendLogging(logger, level),
		Stream: buildStreamLogging(logger, level),
	}
}

func buildSendLogging(logger *slog.Logger, level LogLevel) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, req *transport.Request) ([]byte, error) {
			logger.InfoContext(ctx, "provider send", requestAttrs(req, level)...)

			start := time.Now()
			body, err := next(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "provider send failed",
					slog.String("provider", string(req.Provider)),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "provider send completed", responseAttrs(req, body, elapsed, level)...)
			return body, nil
		}
	}
}

func buildStreamLogging(logger *slog.Logger, level LogLevel) client.StreamMiddleware {
	return func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, req *transport.Request) (transport.EventSource, error) {
			logger.InfoContext(ctx, "provider stream", requestAttrs(req, level)...)

			start := time.Now()
			source, err := next(ctx, req)
			if err != nil {
				logger.ErrorContext(ctx, "provider stream failed",
					slog.String("provider", string(req.Provider)),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			return &loggingSource{
				source:   source,
				logger:   logger,
				ctx:      ctx,
				provider: string(req.Provider),
				start:    start,
			}, nil
		}
	}
}

// loggingSource counts events and emits a completion entry when the
// stream ends, reporting how it ended.
type loggingSource struct {
	source   transport.EventSource
	logger   *slog.Logger
	ctx      context.Context
	provider string
	start    time.Time

	events int
	logged bool
}

func (s *loggingSource) Next() ([]byte, error) {
	payload, err := s.source.Next()
	switch {
	case err == io.EOF:
		s.finish("provider stream completed", nil)
	case err != nil:
		s.finish("provider stream failed", err)
	default:
		s.events++
	}
	return payload, err
}

func (s *loggingSource) Close() error {
	s.finish("provider stream closed", nil)
	return s.source.Close()
}

func (s *loggingSource) finish(msg string, err error) {
	if s.logged {
		return
	}
	s.logged = true

	attrs := []any{
		slog.String("provider", s.provider),
		slog.Int("events", s.events),
		slog.Duration("duration", time.Since(s.start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.ErrorContext(s.ctx, msg, attrs...)
		return
	}
	s.logger.InfoContext(s.ctx, msg, attrs...)
}

func requestAttrs(req *transport.Request, level LogLevel) []any {
	attrs := []any{
		slog.String("provider", string(req.Provider)),
	}
	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.String("url", req.URL),
			slog.Int("request_bytes", len(req.Body)),
		)
	}
	if level >= LogLevelVerbose && len(req.Body) > 0 {
		attrs = append(attrs, slog.String("request_body", truncate(string(req.Body))))
	}
	return attrs
}

func responseAttrs(req *transport.Request, body []byte, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("provider", string(req.Provider)),
		slog.Duration("duration", elapsed),
		slog.Int("response_bytes", len(body)),
	}
	if level >= LogLevelVerbose && len(body) > 0 {
		attrs = append(attrs, slog.String("response_body", truncate(string(body))))
	}
	return attrs
}

func truncate(s string) string {
	if len(s) <= truncateLen {
		return s
	}
	return s[:truncateLen] + "..."
}
