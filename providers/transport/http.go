package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/withceleste/celeste/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HTTP is the standard Transport: plain POSTs for blocking calls, SSE for
// HTTP streams, and WebSockets when the request asks for one.
type HTTP struct {
	client *http.Client
}

var _ Transport = (*HTTP)(nil)

// NewHTTP wraps the given client; pass nil to use http.DefaultClient.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client}
}

// Send performs the request and returns the response body.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) propagate through the wrapped cause
//   - Non-2xx statuses return a *Error carrying the status and body text
//   - Response body close errors are logged but never override the primary error
func (t *HTTP) Send(ctx context.Context, req *Request) ([]byte, error) {
	span := observability.SpanFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventRequestStart,
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, req.URL),
			observability.Int(observability.AttrHTTPRequestBodySize, len(req.Body)),
		)
	}

	httpReq, err := t.buildRequest(ctx, req, false)
	if err != nil {
		return nil, &Error{Provider: req.Provider, Cause: err}
	}

	requestStart := time.Now()
	res, err := t.client.Do(httpReq)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return nil, &Error{Provider: req.Provider, Cause: err}
	}
	defer closeWithLog(res.Body, req.URL)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, &Error{Provider: req.Provider, StatusCode: res.StatusCode, Cause: err}
	}

	if span != nil {
		span.AddEvent(observability.EventRequestEnd,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &Error{Provider: req.Provider, StatusCode: res.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// OpenStream starts a streaming call. HTTP streams are consumed as
// Server-Sent Events; requests with WebSocket set are dialed as
// WebSockets with the request body sent as the opening message.
func (t *HTTP) OpenStream(ctx context.Context, req *Request) (EventSource, error) {
	if req.WebSocket {
		return dialWebSocket(ctx, req)
	}

	span := observability.SpanFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventRequestStart,
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, req.URL),
			observability.Int(observability.AttrHTTPRequestBodySize, len(req.Body)),
		)
	}

	httpReq, err := t.buildRequest(ctx, req, true)
	if err != nil {
		return nil, &Error{Provider: req.Provider, Cause: err}
	}

	res, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: req.Provider, Cause: err}
	}

	// Non-2xx: read the (bounded) body for the error and close before
	// returning.
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer closeWithLog(res.Body, req.URL)
		errorBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, &Error{Provider: req.Provider, StatusCode: res.StatusCode, Cause: readErr}
		}
		return nil, &Error{Provider: req.Provider, StatusCode: res.StatusCode, Body: string(errorBody)}
	}

	if span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		)
	}

	return newSSESource(res.Body), nil
}

func (t *HTTP) buildRequest(ctx context.Context, req *Request, stream bool) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Set(key, value)
		}
	}
	return httpReq, nil
}

// closeWithLog closes the body, logging close errors without letting them
// override the function's primary error.
func closeWithLog(body io.Closer, url string) {
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error(), "url", url)
	}
}
