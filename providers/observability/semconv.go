package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- Generation Attributes ---

const (
	// AttrGenProvider is the name of the model provider (e.g., "openai", "elevenlabs")
	AttrGenProvider = "gen.provider"

	// AttrGenModel is the model identifier (e.g., "gpt-4o-mini", "claude-sonnet-4-20250514")
	AttrGenModel = "gen.model"

	// AttrGenModality is the output modality of the call (e.g., "text", "images")
	AttrGenModality = "gen.modality"

	// AttrGenOperation is the operation being performed (e.g., "generate", "speak")
	AttrGenOperation = "gen.operation"

	// AttrGenRequestID is the client-assigned request identifier
	AttrGenRequestID = "gen.request.id"

	// AttrGenFinishReason is the reason the generation finished
	AttrGenFinishReason = "gen.finish_reason"

	// AttrGenStreaming indicates whether the call is streamed
	AttrGenStreaming = "gen.streaming"
)

// --- Token Usage Attributes ---

const (
	// AttrGenTokensInput is the number of input tokens
	AttrGenTokensInput = "gen.tokens.input" // #nosec G101 -- Not a credential, token refers to model tokens

	// AttrGenTokensOutput is the number of output tokens
	AttrGenTokensOutput = "gen.tokens.output" // #nosec G101 -- Not a credential, token refers to model tokens

	// AttrGenTokensTotal is the total number of tokens
	AttrGenTokensTotal = "gen.tokens.total" // #nosec G101 -- Not a credential, token refers to model tokens
)

// --- Streaming Attributes ---

const (
	// AttrStreamChunks is the number of content chunks delivered
	AttrStreamChunks = "stream.chunks"

	// AttrStreamDuration is the wall time between the first and last chunk
	AttrStreamDuration = "stream.duration"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanGenerate is the span name for blocking generation calls
	SpanGenerate = "client.generate"

	// SpanStream is the span name for streamed generation calls
	SpanStream = "client.stream"

	// SpanProviderRequest is the span name for provider API requests
	SpanProviderRequest = "provider.request"
)

// --- Event Names ---

const (
	// EventRequestStart marks the start of a provider request
	EventRequestStart = "provider.request.start"

	// EventRequestEnd marks the end of a provider request
	EventRequestEnd = "provider.request.end"

	// EventStreamFirstChunk marks the arrival of the first stream chunk
	EventStreamFirstChunk = "stream.first_chunk"

	// EventStreamEnd marks stream exhaustion
	EventStreamEnd = "stream.end"
)

// --- Metric Names ---

const (
	// MetricRequestCount is the counter for generation requests
	MetricRequestCount = "celeste.request.count"

	// MetricRequestDuration is the histogram for request duration
	MetricRequestDuration = "celeste.request.duration"

	// MetricTokensTotal is the counter for total tokens
	MetricTokensTotal = "celeste.tokens.total"

	// MetricTokensInput is the counter for input tokens
	MetricTokensInput = "celeste.tokens.input"

	// MetricTokensOutput is the counter for output tokens
	MetricTokensOutput = "celeste.tokens.output"

	// MetricStreamChunks is the counter for delivered stream chunks
	MetricStreamChunks = "celeste.stream.chunks"
)
