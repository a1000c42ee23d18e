package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

// streamEvent is the union of every Messages SSE payload. The type field
// discriminates; only the fields for that type are populated.
type streamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Usage *wireUsage `json:"usage"`
	} `json:"message"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseMessagesStreamEvent folds the Messages SSE lifecycle into chunks.
// message_start and message_delta surface as hidden frames carrying usage
// and the stop reason; only content_block_delta text is user-visible.
func parseMessagesStreamEvent(payload []byte) (envelope.Chunk, error) {
	var event streamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return envelope.Chunk{}, fmt.Errorf("anthropic: decoding stream event: %w", err)
	}

	switch event.Type {
	case "message_start":
		chunk := envelope.Chunk{Hidden: true}
		if event.Message != nil {
			chunk.Usage = event.Message.Usage.toUsage()
		}
		return chunk, nil

	case "content_block_delta":
		if event.Delta == nil || event.Delta.Type != "text_delta" {
			return envelope.Chunk{Hidden: true}, nil
		}
		return envelope.Chunk{Text: event.Delta.Text, Hidden: event.Delta.Text == ""}, nil

	case "message_delta":
		chunk := envelope.Chunk{Hidden: true}
		if event.Delta != nil && event.Delta.StopReason != "" {
			chunk.FinishReason = normalizeStopReason(event.Delta.StopReason)
		}
		if event.Usage != nil {
			chunk.Usage = &envelope.Usage{OutputTokens: event.Usage.OutputTokens}
		}
		return chunk, nil

	case "error":
		if event.Error != nil {
			return envelope.Chunk{}, fmt.Errorf("anthropic: stream error %s: %s", event.Error.Type, event.Error.Message)
		}
		return envelope.Chunk{}, fmt.Errorf("anthropic: stream error")

	default:
		// ping, content_block_start, content_block_stop, message_stop.
		return envelope.Chunk{Hidden: true}, nil
	}
}
