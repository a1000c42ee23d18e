package anthropic

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
	defaultBaseURL   = "https://api.anthropic.com/v1"
	messagesEndpoint = "/messages"

	// apiVersion pins the Messages API revision. Anthropic requires the
	// header on every call.
	apiVersion = "2023-06-01"

	// defaultMaxTokens caps generation when the caller sets no limit.
	// The Messages API rejects requests without max_tokens.
	defaultMaxTokens = 4096
)

// Adapter speaks the Anthropic Messages wire format. It serves text
// generation only; it is stateless and safe for concurrent use.
type Adapter struct {
	baseURL string
	mapper  *params.Mapper
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = baseURL }
}

// New returns an adapter with its parameter mapping table built.
func New(opts ...Option) *Adapter {
	a := &Adapter{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(a)
	}
	a.mapper = textMapper()
	return a
}

func (a *Adapter) Provider() core.Provider { return core.ProviderAnthropic }

// Mapper returns the translation table for text generation, nil for any
// other pair.
func (a *Adapter) Mapper(modality core.Modality, operation core.Operation) *params.Mapper {
	if modality == core.ModalityText && operation == core.OperationGenerate {
		return a.mapper
	}
	return nil
}

func textMapper() *params.Mapper {
	return params.New(core.ProviderAnthropic, core.ModalityText, core.OperationGenerate,
		params.Rule{Param: core.ParamTemperature, Field: "temperature"},
		params.Rule{Param: core.ParamTopP, Field: "top_p"},
		params.Rule{Param: core.ParamMaxTokens, Field: "max_tokens", Default: defaultMaxTokens},
		params.Rule{Param: core.ParamStop, Field: "stop_sequences"},
	).WithUsage(params.UsageMapping{
		Object: "usage",
		Fields: map[string]string{
			"input_tokens":            core.UsageInputTokens,
			"output_tokens":           core.UsageOutputTokens,
			"cache_read_input_tokens": core.UsageCachedTokens,
		},
	}).WithConsumed("content", "usage")
}

// InitRequest builds the Messages call skeleton: endpoint, version header,
// model id, and the message list with any system turn lifted out.
func (a *Adapter) InitRequest(req *envelope.Request) (*transport.Request, error) {
	if req.Modality != core.ModalityText || req.Operation != core.OperationGenerate {
		return nil, &core.OperationNotSupportedError{
			ModelID:   req.Model,
			Modality:  req.Modality,
			Operation: req.Operation,
		}
	}

	system, messages := splitSystemTurns(req)
	if len(messages) == 0 {
		return nil, fmt.Errorf("anthropic: text generation needs a prompt or messages")
	}

	wire := messagesRequest{
		Model:    req.Model,
		System:   system,
		Messages: messages,
		Stream:   req.Stream,
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("anthropic: encoding messages request: %w", err)
	}

	header := http.Header{}
	header.Set("anthropic-version", apiVersion)
	return &transport.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + messagesEndpoint,
		Header: header,
		Body:   body,
	}, nil
}

// splitSystemTurns converts the unified inputs into Messages form. The
// API takes the system prompt as a top-level field, not a message role;
// consecutive system turns are joined with blank lines.
func splitSystemTurns(req *envelope.Request) (string, []wireMessage) {
	if len(req.Messages) == 0 {
		if req.Prompt == "" {
			return "", nil
		}
		return "", []wireMessage{{Role: string(envelope.RoleUser), Content: req.Prompt}}
	}

	var system string
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == envelope.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		messages = append(messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	return system, messages
}

// ParseResponse extracts the generated text and normalized stop reason
// from a blocking Messages response.
func (a *Adapter) ParseResponse(req *envelope.Request, body []byte) (any, envelope.FinishReason, error) {
	if req.Modality != core.ModalityText {
		return nil, "", fmt.Errorf("anthropic: no response parser for modality %s", req.Modality)
	}
	return parseMessagesResponse(body)
}

// ParseEvent returns the SSE event parser for streamed text generation.
func (a *Adapter) ParseEvent(req *envelope.Request) streaming.ParseEvent {
	if req.Modality == core.ModalityText && req.Operation == core.OperationGenerate {
		return parseMessagesStreamEvent
	}
	return nil
}

var _ client.Adapter = (*Adapter)(nil)
