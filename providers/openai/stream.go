package openai

import (
	"encoding/json"
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

/*
	CHAT COMPLETIONS STREAMING

	SSE chunks from /v1/chat/completions with stream=true. Each chunk
	carries incremental deltas; the final chunk before [DONE] has an empty
	choice list and the usage object (stream_options.include_usage). The
	[DONE] sentinel itself never reaches the parser — the transport's SSE
	source reports it as end of stream.
*/

type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"`
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// streamDelta carries the incremental content of one chunk. All fields
// are optional; a chunk may carry only a role, only content, or nothing
// but a finish reason.
type streamDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
	Refusal *string `json:"refusal,omitempty"`
}

// parseChatStreamEvent converts one SSE payload into a normalized chunk.
// Usage-only and finish-only frames come back Hidden: their counters and
// finish reason fold into the stream accumulator without surfacing an
// empty chunk to the caller.
func parseChatStreamEvent(payload []byte) (envelope.Chunk, error) {
	var wire chatCompletionStreamChunk
	if err := json.Unmarshal(payload, &wire); err != nil {
		return envelope.Chunk{}, fmt.Errorf("openai: decoding stream chunk: %w", err)
	}

	chunk := envelope.Chunk{Usage: wire.Usage.toUsage()}

	if len(wire.Choices) == 0 {
		// Usage frame, or an empty keep-alive.
		chunk.Hidden = true
		return chunk, nil
	}

	choice := wire.Choices[0]
	if choice.Delta.Refusal != nil && *choice.Delta.Refusal != "" {
		return envelope.Chunk{}, fmt.Errorf("openai: model refused: %s", *choice.Delta.Refusal)
	}
	if choice.Delta.Content != nil {
		chunk.Text = *choice.Delta.Content
	}
	if choice.FinishReason != nil && *choice.FinishReason != "" {
		chunk.FinishReason = normalizeFinishReason(*choice.FinishReason)
	}

	// Role-only and finish-only frames carry no caller-visible content.
	chunk.Hidden = chunk.Text == ""
	return chunk, nil
}
