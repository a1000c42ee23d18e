// Package transport moves provider request bodies over the wire. It
// exposes a small [Transport] interface with one-shot and streaming
// entry points so higher layers stay independent of the mechanics:
// HTTP POST for blocking calls, Server-Sent Events or WebSockets for
// streams. Provider adapters build a [Request]; the transport owns
// connection handling, status checking, and event framing.
package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/withceleste/celeste/core"
)

// Request is a fully-shaped provider API call: the body has already been
// through parameter mapping and the header through credential
// resolution.
type Request struct {
	// Provider tags errors and observability events.
	Provider core.Provider

	Method string
	URL    string
	Header http.Header

	// Body is the serialized request payload. For WebSocket streams it
	// is sent as the first message after the dial.
	Body []byte

	// WebSocket selects a WebSocket dial instead of an SSE POST when the
	// request is streamed.
	WebSocket bool

	// TrailerFrames are extra WebSocket messages sent in order after Body.
	// Message protocols that need an end-of-input frame after the payload
	// (realtime speech) use this.
	TrailerFrames [][]byte
}

// Transport sends provider requests.
type Transport interface {
	// Send performs a blocking call and returns the raw response body.
	Send(ctx context.Context, req *Request) ([]byte, error)

	// OpenStream starts a streaming call. The returned EventSource must
	// be drained or closed by the caller.
	OpenStream(ctx context.Context, req *Request) (EventSource, error)
}

// EventSource yields raw event payloads from an open stream.
type EventSource interface {
	// Next returns the next event payload. It returns io.EOF once the
	// stream is exhausted.
	Next() ([]byte, error)

	// Close releases the underlying connection. It is safe to call
	// multiple times and after exhaustion.
	Close() error
}

// Error reports a failed provider call at the wire level.
type Error struct {
	Provider   core.Provider
	StatusCode int
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
	default:
		return fmt.Sprintf("%s: transport error", e.Provider)
	}
}

func (e *Error) Unwrap() error { return e.Cause }
