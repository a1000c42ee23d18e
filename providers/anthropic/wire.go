package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

type messagesRequest struct {
	Model    string        `json:"model"`
	System   string        `json:"system,omitempty"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *wireUsage     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireUsage struct {
	InputTokens          int `json:"input_tokens"`
	OutputTokens         int `json:"output_tokens"`
	CacheReadInputTokens int `json:"cache_read_input_tokens"`
}

func (u *wireUsage) toUsage() *envelope.Usage {
	if u == nil {
		return nil
	}
	return &envelope.Usage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.InputTokens + u.OutputTokens,
		CachedTokens: u.CacheReadInputTokens,
	}
}

func parseMessagesResponse(body []byte) (any, envelope.FinishReason, error) {
	var wire messagesResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, "", fmt.Errorf("anthropic: decoding messages response: %w", err)
	}
	text := joinTextBlocks(wire.Content)
	if text == "" {
		return nil, "", fmt.Errorf("anthropic: messages response carries no text content")
	}
	return text, normalizeStopReason(wire.StopReason), nil
}

func joinTextBlocks(blocks []contentBlock) string {
	var text string
	for _, block := range blocks {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

func normalizeStopReason(reason string) envelope.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence", "":
		return envelope.FinishStop
	case "max_tokens":
		return envelope.FinishLength
	default:
		return envelope.FinishReason(reason)
	}
}
