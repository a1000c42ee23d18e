package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/credentials"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/params"
	"github.com/withceleste/celeste/core/registry"
	"github.com/withceleste/celeste/core/streaming"
	"github.com/withceleste/celeste/providers/observability"
	"github.com/withceleste/celeste/providers/transport"
)

// Client executes unified requests for one (modality, operation,
// provider, model) binding. It owns the full call pipeline: constraint
// validation and parameter mapping, credential injection, dispatch
// through the middleware chain, and response or stream normalization.
// Clients are cheap to create and safe for concurrent use.
type Client struct {
	modality  core.Modality
	operation core.Operation
	model     registry.Model
	adapter   Adapter
	mapper    *params.Mapper

	send   SendFunc
	stream StreamFunc

	credentials *credentials.Resolver
	observer    observability.Provider
}

// Config assembles a Client from the composition root's shared pieces.
type Config struct {
	Modality  core.Modality
	Operation core.Operation
	Model     registry.Model
	Adapter   Adapter

	Transport   transport.Transport
	Middlewares []MiddlewareConfig
	Credentials *credentials.Resolver
	Observer    observability.Provider
}

// New binds a client. The model must already support the (modality,
// operation) pair; the façade checks this before construction, and New
// re-checks to keep direct construction safe.
func New(cfg Config) (*Client, error) {
	if !cfg.Model.Supports(cfg.Modality, cfg.Operation) {
		return nil, &core.OperationNotSupportedError{
			ModelID:   cfg.Model.ID,
			Modality:  cfg.Modality,
			Operation: cfg.Operation,
		}
	}

	mapper := cfg.Adapter.Mapper(cfg.Modality, cfg.Operation)
	if mapper == nil {
		// No declared parameters: an empty mapper still rejects unknown
		// unified params and merges extra-body payloads.
		mapper = params.New(cfg.Adapter.Provider(), cfg.Modality, cfg.Operation)
	}

	return &Client{
		modality:    cfg.Modality,
		operation:   cfg.Operation,
		model:       cfg.Model,
		adapter:     cfg.Adapter,
		mapper:      mapper,
		send:        buildSendChain(cfg.Transport, cfg.Middlewares),
		stream:      buildStreamChain(cfg.Transport, cfg.Middlewares),
		credentials: cfg.Credentials,
		observer:    cfg.Observer,
	}, nil
}

// Model returns the bound model.
func (c *Client) Model() registry.Model { return c.model }

// Result pairs a completed response with its error for asynchronous
// delivery.
type Result struct {
	Response *envelope.Response
	Err      error
}

// Generate performs a blocking call and returns the unified response.
func (c *Client) Generate(ctx context.Context, req *envelope.Request) (*envelope.Response, error) {
	result := <-c.GenerateAsync(ctx, req)
	return result.Response, result.Err
}

// GenerateAsync starts the call and returns a channel that delivers the
// single result. The channel is buffered; abandoning it does not leak
// the goroutine.
func (c *Client) GenerateAsync(ctx context.Context, req *envelope.Request) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		response, err := c.generate(ctx, req)
		results <- Result{Response: response, Err: err}
	}()
	return results
}

func (c *Client) generate(ctx context.Context, req *envelope.Request) (*envelope.Response, error) {
	requestID := uuid.NewString()
	c.fillRequest(req)

	ctx, span := c.startSpan(ctx, observability.SpanGenerate, requestID, false)
	defer span.End()

	start := time.Now()
	wireReq, err := c.buildWireRequest(req)
	if err != nil {
		return nil, c.fail(ctx, span, requestID, err)
	}

	raw, err := c.send(ctx, wireReq)
	if err != nil {
		return nil, c.fail(ctx, span, requestID, c.wrapProviderError(requestID, err))
	}

	content, finish, err := c.adapter.ParseResponse(req, raw)
	if err != nil {
		return nil, c.fail(ctx, span, requestID, c.wrapProviderError(requestID, err))
	}

	usage, metadata := c.mapper.Inbound(raw)
	response := &envelope.Response{
		Content:      content,
		Usage:        usage,
		FinishReason: finish,
		Metadata:     metadata,
		Provider:     c.adapter.Provider(),
		Model:        c.model.ID,
		RequestID:    requestID,
	}

	c.recordSuccess(ctx, span, response, time.Since(start))
	return response, nil
}

// Stream opens a streamed call. Models that do not declare streaming
// support are rejected up front with *core.StreamingNotSupportedError.
func (c *Client) Stream(ctx context.Context, req *envelope.Request) (*streaming.Stream, error) {
	if !c.model.Streaming {
		return nil, &core.StreamingNotSupportedError{ModelID: c.model.ID}
	}

	parse := c.adapter.ParseEvent(req)
	if parse == nil {
		return nil, &core.StreamingNotSupportedError{ModelID: c.model.ID}
	}

	requestID := uuid.NewString()
	c.fillRequest(req)
	req.Stream = true

	ctx, span := c.startSpan(ctx, observability.SpanStream, requestID, true)
	defer span.End()

	wireReq, err := c.buildWireRequest(req)
	if err != nil {
		return nil, c.fail(ctx, span, requestID, err)
	}

	source, err := c.stream(ctx, wireReq)
	if err != nil {
		return nil, c.fail(ctx, span, requestID, c.wrapProviderError(requestID, err))
	}

	cfg := streaming.Config{
		Provider:  c.adapter.Provider(),
		Model:     c.model.ID,
		RequestID: requestID,
		Source:    source,
		Parse:     parse,
	}
	if binary, ok := c.adapter.(BinaryStreamer); ok {
		cfg.MIMEType = binary.StreamMIMEType(req)
	}

	span.SetStatus(observability.StatusOK, "stream opened")
	return streaming.New(cfg), nil
}

// fillRequest stamps the client's binding onto the request so adapters
// see the full routing context.
func (c *Client) fillRequest(req *envelope.Request) {
	req.Modality = c.modality
	req.Operation = c.operation
	req.Provider = c.adapter.Provider()
	req.Model = c.model.ID
}

// buildWireRequest runs the pre-dispatch half of the pipeline. Any error
// here means the provider was never contacted.
func (c *Client) buildWireRequest(req *envelope.Request) (*transport.Request, error) {
	wireReq, err := c.adapter.InitRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := c.mapper.Outbound(wireReq.Body, c.model, req.Params, req.ExtraBody)
	if err != nil {
		return nil, err
	}
	wireReq.Body = body
	wireReq.Provider = c.adapter.Provider()

	if c.credentials != nil {
		if wireReq.Header == nil {
			wireReq.Header = make(http.Header)
		}
		if err := c.credentials.Apply(c.adapter.Provider(), wireReq.Header); err != nil {
			return nil, err
		}
	}
	return wireReq, nil
}

// wrapProviderError tags wire and parse failures with the provider and
// request id. Errors already carrying call context pass through.
func (c *Client) wrapProviderError(requestID string, err error) error {
	return &core.ProviderError{
		Provider:  c.adapter.Provider(),
		RequestID: requestID,
		Cause:     err,
	}
}

func (c *Client) startSpan(ctx context.Context, name, requestID string, streamed bool) (context.Context, observability.Span) {
	if c.observer == nil {
		return ctx, noopSpan{}
	}
	ctx, span := c.observer.StartSpan(ctx, name,
		observability.String(observability.AttrGenProvider, string(c.adapter.Provider())),
		observability.String(observability.AttrGenModel, c.model.ID),
		observability.String(observability.AttrGenModality, string(c.modality)),
		observability.String(observability.AttrGenOperation, string(c.operation)),
		observability.String(observability.AttrGenRequestID, requestID),
		observability.Bool(observability.AttrGenStreaming, streamed),
	)
	ctx = observability.ContextWithSpan(ctx, span)
	ctx = observability.ContextWithObserver(ctx, c.observer)
	return ctx, span
}

func (c *Client) fail(ctx context.Context, span observability.Span, requestID string, err error) error {
	span.RecordError(err)
	span.SetStatus(observability.StatusError, "call failed")
	if c.observer != nil {
		c.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
			observability.String(observability.AttrStatus, "error"),
			observability.String(observability.AttrGenModel, c.model.ID),
		)
	}
	return err
}

func (c *Client) recordSuccess(ctx context.Context, span observability.Span, response *envelope.Response, elapsed time.Duration) {
	span.SetAttributes(
		observability.String(observability.AttrGenFinishReason, string(response.FinishReason)),
		observability.Int(observability.AttrGenTokensTotal, response.Usage.TotalTokens),
	)
	span.SetStatus(observability.StatusOK, "")

	if c.observer == nil {
		return
	}
	c.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "ok"),
		observability.String(observability.AttrGenModel, c.model.ID),
	)
	c.observer.Histogram(observability.MetricRequestDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrGenModel, c.model.ID),
	)
	if response.Usage.TotalTokens > 0 {
		c.observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(response.Usage.TotalTokens),
			observability.String(observability.AttrGenModel, c.model.ID),
		)
	}
}

// noopSpan keeps the span call sites branch-free when no observer is
// configured.
type noopSpan struct{}

func (noopSpan) End()                                        {}
func (noopSpan) SetAttributes(...observability.Attribute)    {}
func (noopSpan) SetStatus(observability.StatusCode, string)  {}
func (noopSpan) RecordError(error)                           {}
func (noopSpan) AddEvent(string, ...observability.Attribute) {}
