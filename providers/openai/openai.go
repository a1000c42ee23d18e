package openai

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/params"
	"github.com/withceleste/celeste/core/streaming"
	"github.com/withceleste/celeste/providers/transport"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	chatCompletionsEndpoint = "/chat/completions"
	embeddingsEndpoint      = "/embeddings"
	imagesEndpoint          = "/images/generations"
)

// Adapter speaks the OpenAI wire formats. One adapter instance serves the
// text, embeddings, and images modalities; it is stateless and safe for
// concurrent use.
type Adapter struct {
	baseURL string
	mappers map[mapperKey]*params.Mapper
}

type mapperKey struct {
	modality  core.Modality
	operation core.Operation
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API base URL (Azure deployments, proxies,
// compatible endpoints).
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = baseURL }
}

// New returns an adapter with its parameter mapping tables built.
func New(opts ...Option) *Adapter {
	a := &Adapter{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(a)
	}
	a.mappers = map[mapperKey]*params.Mapper{
		{core.ModalityText, core.OperationGenerate}:    textMapper(),
		{core.ModalityEmbeddings, core.OperationEmbed}: embeddingsMapper(),
		{core.ModalityImages, core.OperationGenerate}:  imagesMapper(),
	}
	return a
}

func (a *Adapter) Provider() core.Provider { return core.ProviderOpenAI }

// Mapper returns the translation table for the pair, nil when the pair is
// not served.
func (a *Adapter) Mapper(modality core.Modality, operation core.Operation) *params.Mapper {
	return a.mappers[mapperKey{modality, operation}]
}

func textMapper() *params.Mapper {
	return params.New(core.ProviderOpenAI, core.ModalityText, core.OperationGenerate,
		params.Rule{Param: core.ParamTemperature, Field: "temperature"},
		params.Rule{Param: core.ParamTopP, Field: "top_p"},
		params.Rule{Param: core.ParamMaxTokens, Field: "max_completion_tokens"},
		params.Rule{Param: core.ParamSeed, Field: "seed"},
		params.Rule{Param: core.ParamStop, Field: "stop"},
	).WithUsage(params.UsageMapping{
		Object: "usage",
		Fields: map[string]string{
			"prompt_tokens":     core.UsageInputTokens,
			"completion_tokens": core.UsageOutputTokens,
			"total_tokens":      core.UsageTotalTokens,

			"prompt_tokens_details.cached_tokens":        core.UsageCachedTokens,
			"completion_tokens_details.reasoning_tokens": core.UsageReasoningTokens,
		},
	}).WithConsumed("choices", "usage")
}

func embeddingsMapper() *params.Mapper {
	return params.New(core.ProviderOpenAI, core.ModalityEmbeddings, core.OperationEmbed,
		params.Rule{Param: "dimensions", Field: "dimensions"},
	).WithUsage(params.UsageMapping{
		Object: "usage",
		Fields: map[string]string{
			"prompt_tokens": core.UsageInputTokens,
			"total_tokens":  core.UsageTotalTokens,
		},
	}).WithConsumed("data", "usage")
}

func imagesMapper() *params.Mapper {
	return params.New(core.ProviderOpenAI, core.ModalityImages, core.OperationGenerate,
		params.Rule{Param: "size", Field: "size"},
		params.Rule{Param: "quality", Field: "quality"},
		params.Rule{Param: "n", Field: "n"},
	).WithUsage(params.UsageMapping{
		Object: "usage",
		Fields: map[string]string{
			"input_tokens":  core.UsageInputTokens,
			"output_tokens": core.UsageOutputTokens,
			"total_tokens":  core.UsageTotalTokens,
		},
	}).WithConsumed("data", "usage")
}

// InitRequest builds the wire skeleton for the pair: endpoint URL and the
// base body carrying the model id and inputs.
func (a *Adapter) InitRequest(req *envelope.Request) (*transport.Request, error) {
	switch {
	case req.Modality == core.ModalityText && req.Operation == core.OperationGenerate:
		return a.initChatRequest(req)
	case req.Modality == core.ModalityEmbeddings && req.Operation == core.OperationEmbed:
		return a.initEmbeddingsRequest(req)
	case req.Modality == core.ModalityImages && req.Operation == core.OperationGenerate:
		return a.initImagesRequest(req)
	default:
		return nil, &core.OperationNotSupportedError{
			ModelID:   req.Model,
			Modality:  req.Modality,
			Operation: req.Operation,
		}
	}
}

func (a *Adapter) initChatRequest(req *envelope.Request) (*transport.Request, error) {
	wire := chatCompletionRequest{
		Model:    req.Model,
		Messages: buildChatMessages(req),
	}
	if len(wire.Messages) == 0 {
		return nil, fmt.Errorf("openai: text generation needs a prompt or messages")
	}
	if req.Stream {
		wire.Stream = true
		wire.StreamOptions = &streamOptions{IncludeUsage: true}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("openai: encoding chat request: %w", err)
	}
	return &transport.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + chatCompletionsEndpoint,
		Body:   body,
	}, nil
}

func (a *Adapter) initEmbeddingsRequest(req *envelope.Request) (*transport.Request, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("openai: embeddings need input text")
	}
	body, err := json.Marshal(embeddingsRequest{Model: req.Model, Input: req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("openai: encoding embeddings request: %w", err)
	}
	return &transport.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + embeddingsEndpoint,
		Body:   body,
	}, nil
}

func (a *Adapter) initImagesRequest(req *envelope.Request) (*transport.Request, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("openai: image generation needs a prompt")
	}
	body, err := json.Marshal(imagesRequest{Model: req.Model, Prompt: req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("openai: encoding images request: %w", err)
	}
	return &transport.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + imagesEndpoint,
		Body:   body,
	}, nil
}

// buildChatMessages converts the unified inputs into chat messages. An
// explicit message list wins over the bare prompt.
func buildChatMessages(req *envelope.Request) []chatMessage {
	if len(req.Messages) > 0 {
		messages := make([]chatMessage, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
		}
		return messages
	}
	if req.Prompt != "" {
		return []chatMessage{{Role: string(envelope.RoleUser), Content: req.Prompt}}
	}
	return nil
}

// ParseResponse extracts typed content and the normalized finish reason
// from a blocking response.
func (a *Adapter) ParseResponse(req *envelope.Request, body []byte) (any, envelope.FinishReason, error) {
	switch req.Modality {
	case core.ModalityText:
		return parseChatResponse(body)
	case core.ModalityEmbeddings:
		return parseEmbeddingsResponse(body)
	case core.ModalityImages:
		return parseImagesResponse(body)
	default:
		return nil, "", fmt.Errorf("openai: no response parser for modality %s", req.Modality)
	}
}

// ParseEvent returns the SSE chunk parser for streamed text generation.
// Other pairs do not stream.
func (a *Adapter) ParseEvent(req *envelope.Request) streaming.ParseEvent {
	if req.Modality == core.ModalityText && req.Operation == core.OperationGenerate {
		return parseChatStreamEvent
	}
	return nil
}

var _ client.Adapter = (*Adapter)(nil)
