package celeste

import (
	"context"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/streaming"
)

// CallOption customizes a single request.
type CallOption func(*envelope.Request)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CallOption {
	return WithParam(core.ParamTemperature, t)
}

// WithMaxTokens caps the generated token count.
func WithMaxTokens(n int) CallOption {
	return WithParam(core.ParamMaxTokens, n)
}

// WithTopP sets the nucleus sampling mass.
func WithTopP(p float64) CallOption {
	return WithParam(core.ParamTopP, p)
}

// WithSeed pins the sampling seed on providers that honor one.
func WithSeed(seed int) CallOption {
	return WithParam(core.ParamSeed, seed)
}

// WithStop sets the stop sequences.
func WithStop(sequences ...string) CallOption {
	return WithParam(core.ParamStop, sequences)
}

// WithParam sets one unified parameter by name. The resolved provider
// must have a mapping rule for it; provider-specific fields without a
// unified name go through WithExtraBody.
func WithParam(name string, value any) CallOption {
	return func(req *envelope.Request) {
		if req.Params == nil {
			req.Params = make(map[string]any)
		}
		req.Params[name] = value
	}
}

// WithMessages replaces the bare prompt with a full conversation.
func WithMessages(messages ...envelope.Message) CallOption {
	return func(req *envelope.Request) { req.Messages = messages }
}

// WithSystem prepends a system turn to the conversation.
func WithSystem(content string) CallOption {
	return func(req *envelope.Request) {
		req.Messages = append([]envelope.Message{{Role: envelope.RoleSystem, Content: content}}, req.Messages...)
	}
}

// WithInputs attaches binary inputs (an image to edit, audio to
// transcribe).
func WithInputs(inputs ...envelope.Artifact) CallOption {
	return func(req *envelope.Request) { req.Inputs = inputs }
}

// WithExtraBody merges provider-specific fields into the outgoing wire
// request without overwriting mapped fields.
func WithExtraBody(extra map[string]any) CallOption {
	return func(req *envelope.Request) { req.ExtraBody = extra }
}

func buildRequest(prompt string, opts []CallOption) *envelope.Request {
	req := &envelope.Request{Prompt: prompt}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// TextClient is the text-modality namespace bound to one provider and
// model.
type TextClient struct {
	root     *Celeste
	provider core.Provider
	model    string
}

// Text returns the text namespace for a provider and model. Binding is
// lazy; an unknown model surfaces on the first call.
func (c *Celeste) Text(provider core.Provider, modelID string) *TextClient {
	return &TextClient{root: c, provider: provider, model: modelID}
}

// Generate performs a blocking text generation.
func (t *TextClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (*envelope.Response, error) {
	cl, err := t.root.CreateClient(core.ModalityText, core.OperationGenerate, t.provider, t.model)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Generate(ctx, buildRequest(prompt, opts))
	if err != nil {
		return nil, err
	}
	t.root.recordCost(resp)
	return resp, nil
}

// Stream opens a streamed text generation.
func (t *TextClient) Stream(ctx context.Context, prompt string, opts ...CallOption) (*streaming.Stream, error) {
	cl, err := t.root.CreateClient(core.ModalityText, core.OperationGenerate, t.provider, t.model)
	if err != nil {
		return nil, err
	}
	return cl.Stream(ctx, buildRequest(prompt, opts))
}

// ImagesClient is the image-modality namespace bound to one provider and
// model.
type ImagesClient struct {
	root     *Celeste
	provider core.Provider
	model    string
}

// Images returns the image namespace for a provider and model.
func (c *Celeste) Images(provider core.Provider, modelID string) *ImagesClient {
	return &ImagesClient{root: c, provider: provider, model: modelID}
}

// Generate synthesizes images from a prompt.
func (i *ImagesClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (*envelope.Response, error) {
	cl, err := i.root.CreateClient(core.ModalityImages, core.OperationGenerate, i.provider, i.model)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Generate(ctx, buildRequest(prompt, opts))
	if err != nil {
		return nil, err
	}
	i.root.recordCost(resp)
	return resp, nil
}

// Edit transforms input images under a prompt.
func (i *ImagesClient) Edit(ctx context.Context, prompt string, opts ...CallOption) (*envelope.Response, error) {
	cl, err := i.root.CreateClient(core.ModalityImages, core.OperationEdit, i.provider, i.model)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Generate(ctx, buildRequest(prompt, opts))
	if err != nil {
		return nil, err
	}
	i.root.recordCost(resp)
	return resp, nil
}

// AudioClient is the audio-modality namespace bound to one provider and
// model.
type AudioClient struct {
	root     *Celeste
	provider core.Provider
	model    string
}

// Audio returns the audio namespace for a provider and model.
func (c *Celeste) Audio(provider core.Provider, modelID string) *AudioClient {
	return &AudioClient{root: c, provider: provider, model: modelID}
}

// Speak synthesizes speech from text and returns the encoded audio as
// artifacts.
func (a *AudioClient) Speak(ctx context.Context, text string, opts ...CallOption) (*envelope.Response, error) {
	cl, err := a.root.CreateClient(core.ModalityAudio, core.OperationSpeak, a.provider, a.model)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Generate(ctx, buildRequest(text, opts))
	if err != nil {
		return nil, err
	}
	a.root.recordCost(resp)
	return resp, nil
}

// SpeakStream synthesizes speech and yields audio chunks as they are
// produced.
func (a *AudioClient) SpeakStream(ctx context.Context, text string, opts ...CallOption) (*streaming.Stream, error) {
	cl, err := a.root.CreateClient(core.ModalityAudio, core.OperationSpeak, a.provider, a.model)
	if err != nil {
		return nil, err
	}
	return cl.Stream(ctx, buildRequest(text, opts))
}

// Transcribe converts input audio to text. The audio travels as an input
// artifact.
func (a *AudioClient) Transcribe(ctx context.Context, audio envelope.Artifact, opts ...CallOption) (*envelope.Response, error) {
	cl, err := a.root.CreateClient(core.ModalityAudio, core.OperationTranscribe, a.provider, a.model)
	if err != nil {
		return nil, err
	}
	req := buildRequest("", opts)
	req.Inputs = append(req.Inputs, audio)
	resp, err := cl.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	a.root.recordCost(resp)
	return resp, nil
}

// EmbeddingsClient is the embeddings namespace bound to one provider and
// model.
type EmbeddingsClient struct {
	root     *Celeste
	provider core.Provider
	model    string
}

// Embeddings returns the embeddings namespace for a provider and model.
func (c *Celeste) Embeddings(provider core.Provider, modelID string) *EmbeddingsClient {
	return &EmbeddingsClient{root: c, provider: provider, model: modelID}
}

// Embed converts input text into vectors. The response content is a
// [][]float64 in input order.
func (e *EmbeddingsClient) Embed(ctx context.Context, input string, opts ...CallOption) (*envelope.Response, error) {
	cl, err := e.root.CreateClient(core.ModalityEmbeddings, core.OperationEmbed, e.provider, e.model)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Generate(ctx, buildRequest(input, opts))
	if err != nil {
		return nil, err
	}
	e.root.recordCost(resp)
	return resp, nil
}
