package client

import (
	"context"

	"github.com/withceleste/celeste/providers/transport"
)

// SendFunc performs a blocking provider call and returns the raw
// response body. It is the base unit threaded through the send
// middleware chain.
type SendFunc func(ctx context.Context, req *transport.Request) ([]byte, error)

// StreamFunc opens a streaming provider call and returns its event
// source. It is the base unit threaded through the stream middleware
// chain.
type StreamFunc func(ctx context.Context, req *transport.Request) (transport.EventSource, error)

// Middleware intercepts and optionally transforms blocking provider
// calls. Each Middleware receives the next SendFunc in the chain and
// returns a new SendFunc that wraps it. Middlewares are applied
// outermost-first: the first middleware in the slice is the outermost
// wrapper.
type Middleware func(next SendFunc) SendFunc

// StreamMiddleware is the streaming counterpart of Middleware. If nil in
// a MiddlewareConfig, streaming calls skip that entry in the chain.
type StreamMiddleware func(next StreamFunc) StreamFunc

// MiddlewareConfig pairs a send middleware with its optional streaming
// counterpart. A nil Stream means streaming calls bypass this entry
// entirely (mid-stream effects like retries cannot be applied
// transparently, so several middlewares are send-only).
type MiddlewareConfig struct {
	// Send is applied to blocking calls. Required.
	Send Middleware

	// Stream is applied to streaming calls. Optional.
	Stream StreamMiddleware
}

// buildSendChain constructs the linear send chain over the transport.
// Middlewares are applied in reverse order so that the first entry in
// the slice becomes the outermost wrapper, i.e. the first to execute on
// an incoming request.
func buildSendChain(tr transport.Transport, middlewares []MiddlewareConfig) SendFunc {
	var chain SendFunc = func(ctx context.Context, req *transport.Request) ([]byte, error) {
		return tr.Send(ctx, req)
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Send != nil {
			chain = middlewares[i].Send(chain)
		}
	}
	return chain
}

// buildStreamChain constructs the linear stream chain over the
// transport. Entries with a nil Stream field are skipped.
func buildStreamChain(tr transport.Transport, middlewares []MiddlewareConfig) StreamFunc {
	var chain StreamFunc = func(ctx context.Context, req *transport.Request) (transport.EventSource, error) {
		return tr.OpenStream(ctx, req)
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Stream != nil {
			chain = middlewares[i].Stream(chain)
		}
	}
	return chain
}
