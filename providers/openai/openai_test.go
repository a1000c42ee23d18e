package openai

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/envelope"
)

func TestInitChatRequest(t *testing.T) {
	adapter := New()

	req := &envelope.Request{
		Modality:  core.ModalityText,
		Operation: core.OperationGenerate,
		Model:     "gpt-4o",
		Prompt:    "hello",
	}

	wire, err := adapter.InitRequest(req)
	if err != nil {
		t.Fatalf("InitRequest() error = %v", err)
	}
	if wire.URL != defaultBaseURL+chatCompletionsEndpoint {
		t.Errorf("URL = %s", wire.URL)
	}

	body := gjson.ParseBytes(wire.Body)
	if got := body.Get("model").String(); got != "gpt-4o" {
		t.Errorf("model = %q", got)
	}
	if got := body.Get("messages.0.role").String(); got != "user" {
		t.Errorf("messages.0.role = %q", got)
	}
	if got := body.Get("messages.0.content").String(); got != "hello" {
		t.Errorf("messages.0.content = %q", got)
	}
	if body.Get("stream").Exists() {
		t.Error("non-streaming request should not set stream")
	}
}

func TestInitChatRequest_MessagesWinOverPrompt(t *testing.T) {
	adapter := New()

	req := &envelope.Request{
		Modality:  core.ModalityText,
		Operation: core.OperationGenerate,
		Model:     "gpt-4o",
		Prompt:    "ignored",
		Messages: []envelope.Message{
			{Role: envelope.RoleSystem, Content: "be brief"},
			{Role: envelope.RoleUser, Content: "hi"},
		},
	}

	wire, err := adapter.InitRequest(req)
	if err != nil {
		t.Fatalf("InitRequest() error = %v", err)
	}
	body := gjson.ParseBytes(wire.Body)
	if got := body.Get("messages.#").Int(); got != 2 {
		t.Fatalf("message count = %d, want 2", got)
	}
	if got := body.Get("messages.0.role").String(); got != "system" {
		t.Errorf("messages.0.role = %q", got)
	}
}

func TestInitChatRequest_StreamingFlags(t *testing.T) {
	adapter := New()

	req := &envelope.Request{
		Modality:  core.ModalityText,
		Operation: core.OperationGenerate,
		Model:     "gpt-4o",
		Prompt:    "hello",
		Stream:    true,
	}

	wire, err := adapter.InitRequest(req)
	if err != nil {
		t.Fatalf("InitRequest() error = %v", err)
	}
	body := gjson.ParseBytes(wire.Body)
	if !body.Get("stream").Bool() {
		t.Error("stream = false, want true")
	}
	if !body.Get("stream_options.include_usage").Bool() {
		t.Error("stream_options.include_usage = false, want true")
	}
}

func TestInitRequest_MissingInputs(t *testing.T) {
	adapter := New()

	tests := []struct {
		name string
		req  *envelope.Request
	}{
		{
			name: "text without prompt or messages",
			req:  &envelope.Request{Modality: core.ModalityText, Operation: core.OperationGenerate, Model: "gpt-4o"},
		},
		{
			name: "embeddings without input",
			req:  &envelope.Request{Modality: core.ModalityEmbeddings, Operation: core.OperationEmbed, Model: "text-embedding-3-small"},
		},
		{
			name: "images without prompt",
			req:  &envelope.Request{Modality: core.ModalityImages, Operation: core.OperationGenerate, Model: "gpt-image-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := adapter.InitRequest(tt.req); err == nil {
				t.Error("InitRequest() expected error")
			}
		})
	}
}

func TestInitRequest_UnsupportedPair(t *testing.T) {
	adapter := New()

	req := &envelope.Request{Modality: core.ModalityAudio, Operation: core.OperationSpeak, Model: "gpt-4o"}
	if _, err := adapter.InitRequest(req); err == nil {
		t.Error("InitRequest() expected error for unsupported pair")
	}
}

func TestParseChatResponse(t *testing.T) {
	body := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 9, "completion_tokens": 4, "total_tokens": 13}
	}`

	adapter := New()
	req := &envelope.Request{Modality: core.ModalityText, Operation: core.OperationGenerate}

	content, finish, err := adapter.ParseResponse(req, []byte(body))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if content != "Hi there" {
		t.Errorf("content = %v", content)
	}
	if finish != envelope.FinishStop {
		t.Errorf("finish = %s, want stop", finish)
	}
}

func TestParseChatResponse_Refusal(t *testing.T) {
	body := `{"choices": [{"message": {"role": "assistant", "refusal": "cannot comply"}, "finish_reason": "stop"}]}`

	adapter := New()
	req := &envelope.Request{Modality: core.ModalityText}

	_, finish, err := adapter.ParseResponse(req, []byte(body))
	if err == nil {
		t.Fatal("ParseResponse() expected refusal error")
	}
	if finish != envelope.FinishContentFilter {
		t.Errorf("finish = %s, want content_filter", finish)
	}
}

func TestParseEmbeddingsResponse(t *testing.T) {
	// Out-of-order indices must land at their declared positions.
	body := `{"data": [
		{"index": 1, "embedding": [0.3, 0.4]},
		{"index": 0, "embedding": [0.1, 0.2]}
	]}`

	adapter := New()
	req := &envelope.Request{Modality: core.ModalityEmbeddings}

	content, _, err := adapter.ParseResponse(req, []byte(body))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	vectors, ok := content.([][]float64)
	if !ok {
		t.Fatalf("content type = %T", content)
	}
	if len(vectors) != 2 || vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestParseImagesResponse(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
	body := `{"data": [{"b64_json": "` + encoded + `", "revised_prompt": "a red fox"}]}`

	adapter := New()
	req := &envelope.Request{Modality: core.ModalityImages}

	content, _, err := adapter.ParseResponse(req, []byte(body))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	artifacts, ok := content.([]envelope.Artifact)
	if !ok {
		t.Fatalf("content type = %T", content)
	}
	if len(artifacts) != 1 {
		t.Fatalf("artifact count = %d", len(artifacts))
	}
	if artifacts[0].MIMEType != "image/png" || len(artifacts[0].Data) != 4 {
		t.Errorf("artifact = %+v", artifacts[0])
	}
	if artifacts[0].Metadata["revised_prompt"] != "a red fox" {
		t.Errorf("metadata = %v", artifacts[0].Metadata)
	}
}

func TestParseChatStreamEvent(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantText   string
		wantHidden bool
		wantFinish envelope.FinishReason
		wantErr    bool
	}{
		{
			name:     "content delta",
			payload:  `{"choices": [{"delta": {"content": "Hel"}, "finish_reason": null}]}`,
			wantText: "Hel",
		},
		{
			name:       "role-only frame is hidden",
			payload:    `{"choices": [{"delta": {"role": "assistant"}, "finish_reason": null}]}`,
			wantHidden: true,
		},
		{
			name:       "finish frame is hidden and carries the reason",
			payload:    `{"choices": [{"delta": {}, "finish_reason": "stop"}]}`,
			wantHidden: true,
			wantFinish: envelope.FinishStop,
		},
		{
			name:       "length finish",
			payload:    `{"choices": [{"delta": {}, "finish_reason": "length"}]}`,
			wantHidden: true,
			wantFinish: envelope.FinishLength,
		},
		{
			name:       "usage frame is hidden",
			payload:    `{"choices": [], "usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}}`,
			wantHidden: true,
		},
		{
			name:    "invalid JSON",
			payload: `{nope`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := parseChatStreamEvent([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseChatStreamEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if chunk.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", chunk.Text, tt.wantText)
			}
			if chunk.Hidden != tt.wantHidden {
				t.Errorf("Hidden = %v, want %v", chunk.Hidden, tt.wantHidden)
			}
			if chunk.FinishReason != tt.wantFinish {
				t.Errorf("FinishReason = %q, want %q", chunk.FinishReason, tt.wantFinish)
			}
		})
	}
}

func TestParseChatStreamEvent_UsagePromotion(t *testing.T) {
	payload := `{"choices": [], "usage": {
		"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12,
		"completion_tokens_details": {"reasoning_tokens": 3},
		"prompt_tokens_details": {"cached_tokens": 2}
	}}`

	chunk, err := parseChatStreamEvent([]byte(payload))
	if err != nil {
		t.Fatalf("parseChatStreamEvent() error = %v", err)
	}
	if chunk.Usage == nil {
		t.Fatal("Usage = nil")
	}
	if chunk.Usage.InputTokens != 5 || chunk.Usage.OutputTokens != 7 || chunk.Usage.TotalTokens != 12 {
		t.Errorf("Usage = %+v", chunk.Usage)
	}
	if chunk.Usage.ReasoningTokens != 3 || chunk.Usage.CachedTokens != 2 {
		t.Errorf("detail tokens = %+v", chunk.Usage)
	}
}

// Blocking and streamed calls must report the same detail counters.
func TestChatUsage_DetailCountersPromoted(t *testing.T) {
	adapter := New()
	mapper := adapter.Mapper(core.ModalityText, core.OperationGenerate)

	raw := []byte(`{
		"choices": [{"message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
		"usage": {
			"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12,
			"completion_tokens_details": {"reasoning_tokens": 3},
			"prompt_tokens_details": {"cached_tokens": 2, "audio_tokens": 1}
		}
	}`)

	usage, _ := mapper.Inbound(raw)

	if usage.InputTokens != 5 || usage.OutputTokens != 7 || usage.TotalTokens != 12 {
		t.Errorf("Usage = %+v", usage)
	}
	if usage.ReasoningTokens != 3 || usage.CachedTokens != 2 {
		t.Errorf("detail tokens = %+v", usage)
	}
	if usage.Raw["prompt_tokens_details.audio_tokens"] != 1 {
		t.Errorf("undeclared detail counter not preserved: %v", usage.Raw)
	}
}

func TestMapperCoverage(t *testing.T) {
	adapter := New()

	served := []struct {
		modality  core.Modality
		operation core.Operation
	}{
		{core.ModalityText, core.OperationGenerate},
		{core.ModalityEmbeddings, core.OperationEmbed},
		{core.ModalityImages, core.OperationGenerate},
	}
	for _, pair := range served {
		if adapter.Mapper(pair.modality, pair.operation) == nil {
			t.Errorf("Mapper(%s, %s) = nil", pair.modality, pair.operation)
		}
	}
	if adapter.Mapper(core.ModalityAudio, core.OperationSpeak) != nil {
		t.Error("Mapper for unserved pair should be nil")
	}
}

func TestWithBaseURL(t *testing.T) {
	adapter := New(WithBaseURL("https://proxy.example.com/v1"))

	req := &envelope.Request{Modality: core.ModalityText, Operation: core.OperationGenerate, Model: "gpt-4o", Prompt: "x"}
	wire, err := adapter.InitRequest(req)
	if err != nil {
		t.Fatalf("InitRequest() error = %v", err)
	}
	if !strings.HasPrefix(wire.URL, "https://proxy.example.com/v1") {
		t.Errorf("URL = %s", wire.URL)
	}
}
