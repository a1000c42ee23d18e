package middleware

import (
	"context"
	"time"

	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/providers/transport"
)

// NewTimeoutMiddleware creates a MiddlewareConfig that enforces a
// per-request deadline on both blocking and streaming provider calls.
//
// For blocking calls the implementation wraps the context with
// context.WithTimeout and defers cancel() — the context is automatically
// canceled once the provider returns or the deadline expires.
//
// For streaming calls the timeout wraps the context before opening the
// stream, but the cancel function is NOT deferred immediately. Instead
// it fires once the event source is exhausted, errors, or is closed, so
// the timeout governs the complete lifetime of the stream rather than
// just the time to the first event.
//
// If the caller supplies a context that already has a shorter deadline,
// that shorter deadline wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send:   buildSendTimeout(timeout),
		Stream: buildStreamTimeout(timeout),
	}
}

func buildSendTimeout(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, req *transport.Request) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, req)
		}
	}
}

func buildStreamTimeout(timeout time.Duration) client.StreamMiddleware {
	return func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, req *transport.Request) (transport.EventSource, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)

			source, err := next(ctx, req)
			if err != nil {
				// Pre-stream error — cancel immediately.
				cancel()
				return nil, err
			}

			return &cancelOnDoneSource{source: source, cancel: cancel}, nil
		}
	}
}

// cancelOnDoneSource releases the timeout context once the stream ends,
// whichever way it ends.
type cancelOnDoneSource struct {
	source transport.EventSource
	cancel context.CancelFunc
}

func (s *cancelOnDoneSource) Next() ([]byte, error) {
	payload, err := s.source.Next()
	if err != nil {
		// Exhaustion (io.EOF) and failure both end the stream's lifetime.
		s.cancel()
	}
	return payload, err
}

func (s *cancelOnDoneSource) Close() error {
	s.cancel()
	return s.source.Close()
}
