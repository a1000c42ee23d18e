package openai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

/*
	CHAT COMPLETIONS API

	Request and response shapes for /v1/chat/completions. Parameter fields
	(temperature, max_completion_tokens, ...) are not declared here: the
	mapper writes them into the serialized body by path, so the skeleton
	only carries the model, the messages, and the streaming switches.
*/

type chatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []chatMessage  `json:"messages"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamOptions configures streaming behavior; include_usage makes the
// final SSE chunk carry the usage object.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

type chatUsage struct {
	PromptTokens            int `json:"prompt_tokens"`
	CompletionTokens        int `json:"completion_tokens"`
	TotalTokens             int `json:"total_tokens"`
	CompletionTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	} `json:"completion_tokens_details,omitempty"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens,omitempty"`
	} `json:"prompt_tokens_details,omitempty"`
}

// toUsage converts the vendor usage block for streaming chunks, where the
// mapper's inbound pass never runs.
func (u *chatUsage) toUsage() *envelope.Usage {
	if u == nil {
		return nil
	}
	usage := &envelope.Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
	if u.CompletionTokensDetails != nil {
		usage.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	if u.PromptTokensDetails != nil {
		usage.CachedTokens = u.PromptTokensDetails.CachedTokens
	}
	return usage
}

func parseChatResponse(body []byte) (any, envelope.FinishReason, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("openai: decoding chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("openai: chat response has no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, envelope.FinishContentFilter, fmt.Errorf("openai: model refused: %s", choice.Message.Refusal)
	}
	return choice.Message.Content, normalizeFinishReason(choice.FinishReason), nil
}

// normalizeFinishReason maps vendor finish reasons onto the unified set.
// Unknown values pass through verbatim rather than being guessed at.
func normalizeFinishReason(reason string) envelope.FinishReason {
	switch reason {
	case "stop", "":
		return envelope.FinishStop
	case "length":
		return envelope.FinishLength
	case "content_filter":
		return envelope.FinishContentFilter
	default:
		return envelope.FinishReason(reason)
	}
}

/*
	EMBEDDINGS API
*/

type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func parseEmbeddingsResponse(body []byte) (any, envelope.FinishReason, error) {
	var resp embeddingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("openai: decoding embeddings response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, "", fmt.Errorf("openai: embeddings response has no data")
	}
	vectors := make([][]float64, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, "", fmt.Errorf("openai: embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, envelope.FinishStop, nil
}

/*
	IMAGES API
*/

type imagesRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type imagesResponse struct {
	Data []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

func parseImagesResponse(body []byte) (any, envelope.FinishReason, error) {
	var resp imagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("openai: decoding images response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, "", fmt.Errorf("openai: images response has no data")
	}

	artifacts := make([]envelope.Artifact, 0, len(resp.Data))
	for _, item := range resp.Data {
		artifact := envelope.Artifact{URL: item.URL, MIMEType: "image/png"}
		if item.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(item.B64JSON)
			if err != nil {
				return nil, "", fmt.Errorf("openai: decoding image data: %w", err)
			}
			artifact.Data = data
		}
		if item.RevisedPrompt != "" {
			artifact.Metadata = map[string]any{"revised_prompt": item.RevisedPrompt}
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, envelope.FinishStop, nil
}
