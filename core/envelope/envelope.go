// Package envelope defines the fixed-shape request and response wrappers
// that normalize provider-specific data into one contract. Envelopes are
// ephemeral: a Request is built fresh per call, a Response is constructed
// once from the raw vendor payload and owned by the caller afterwards.
package envelope

import (
	"github.com/withceleste/celeste/core"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single turn in a conversation input.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request carries the unified inputs and parameters for one call. It is
// never shared across calls and never persisted.
type Request struct {
	Modality  core.Modality
	Operation core.Operation
	Provider  core.Provider
	Model     string

	// Prompt and Messages are the text inputs; media operations attach
	// binary inputs as artifacts (an image to edit, audio to transcribe).
	Prompt   string
	Messages []Message
	Inputs   []Artifact

	// Params maps unified parameter names to values. Every entry must have
	// a mapping rule for the resolved provider/operation; provider-specific
	// fields without a unified name go through ExtraBody instead.
	Params map[string]any

	// ExtraBody is the escape hatch: fields merged shallow-recursively into
	// the outgoing vendor request without overwriting mapped fields.
	ExtraBody map[string]any

	// Stream marks the request for the streaming path.
	Stream bool
}

// Usage holds normalized consumption counters. Counters with a unified
// name are promoted to struct fields; everything the vendor reported is
// retained verbatim in Raw under its unified name when known, vendor name
// otherwise.
type Usage struct {
	InputTokens     int                `json:"input_tokens,omitempty"`
	OutputTokens    int                `json:"output_tokens,omitempty"`
	TotalTokens     int                `json:"total_tokens,omitempty"`
	CachedTokens    int                `json:"cached_tokens,omitempty"`
	ReasoningTokens int                `json:"reasoning_tokens,omitempty"`
	Raw             map[string]float64 `json:"raw,omitempty"`
}

// IsZero reports whether no counter was populated.
func (u Usage) IsZero() bool {
	return u.InputTokens == 0 && u.OutputTokens == 0 && u.TotalTokens == 0 &&
		u.CachedTokens == 0 && u.ReasoningTokens == 0 && len(u.Raw) == 0
}

// Merge overlays counters reported later in a call (streaming usage frames
// arrive incrementally; the last non-zero value wins per field).
func (u Usage) Merge(other Usage) Usage {
	out := u
	if other.InputTokens != 0 {
		out.InputTokens = other.InputTokens
	}
	if other.OutputTokens != 0 {
		out.OutputTokens = other.OutputTokens
	}
	if other.TotalTokens != 0 {
		out.TotalTokens = other.TotalTokens
	}
	if other.CachedTokens != 0 {
		out.CachedTokens = other.CachedTokens
	}
	if other.ReasoningTokens != 0 {
		out.ReasoningTokens = other.ReasoningTokens
	}
	if len(other.Raw) > 0 {
		if out.Raw == nil {
			out.Raw = make(map[string]float64, len(other.Raw))
		}
		for k, v := range other.Raw {
			out.Raw[k] = v
		}
	}
	return out
}

// FinishReason is the normalized completion signal of a call.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
)

// Response is the unified result of one call. Content holds the typed
// payload: string for text, []Artifact for media, [][]float64 for
// embeddings. Metadata is the opaque pass-through bag of vendor fields the
// inbound mapping pass did not consume.
type Response struct {
	Content      any
	Usage        Usage
	FinishReason FinishReason
	Metadata     map[string]any

	Provider  core.Provider
	Model     string
	RequestID string
}

// Text returns the content as a string, or "" when the call produced
// non-text content.
func (r *Response) Text() string {
	s, _ := r.Content.(string)
	return s
}

// Artifacts returns the content as media artifacts, or nil.
func (r *Response) Artifacts() []Artifact {
	switch v := r.Content.(type) {
	case []Artifact:
		return v
	case Artifact:
		return []Artifact{v}
	default:
		return nil
	}
}

// Embeddings returns the content as embedding vectors, or nil.
func (r *Response) Embeddings() [][]float64 {
	switch v := r.Content.(type) {
	case [][]float64:
		return v
	case []float64:
		return [][]float64{v}
	default:
		return nil
	}
}

// Chunk is one incremental unit of a streaming response. Text carries a
// content delta for text streams, Data a binary delta for media streams.
// Usage and FinishReason are typically present only on the final chunks.
type Chunk struct {
	Text         string
	Data         []byte
	Usage        *Usage
	FinishReason FinishReason
	Metadata     map[string]any

	// Hidden marks a control frame that updates running stream metadata
	// (accumulated usage, finish reason) without being surfaced to the
	// caller as a user-visible chunk.
	Hidden bool
}
