package elevenlabs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/params"
	"github.com/withceleste/celeste/core/streaming"
	"github.com/withceleste/celeste/providers/transport"
)

const (
	defaultBaseURL   = "https://api.elevenlabs.io/v1"
	defaultStreamURL = "wss://api.elevenlabs.io/v1"

	// defaultVoiceID is the "Rachel" stock voice.
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

	defaultOutputFormat = "mp3_44100_128"
)

// Speech parameters this adapter maps. Voice and output format shape the
// request URL; the rest land in voice_settings.
const (
	ParamVoice        = "voice"
	ParamOutputFormat = "output_format"
	ParamSpeed        = "speed"
)

// Adapter speaks the ElevenLabs synthesis wire format. It serves the
// audio modality's speak operation only; stateless and safe for
// concurrent use.
type Adapter struct {
	baseURL   string
	streamURL string
	mapper    *params.Mapper
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL overrides the HTTP API base URL.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = baseURL }
}

// WithStreamURL overrides the WebSocket base URL.
func WithStreamURL(streamURL string) Option {
	return func(a *Adapter) { a.streamURL = streamURL }
}

// New returns an adapter with its parameter mapping table built.
func New(opts ...Option) *Adapter {
	a := &Adapter{baseURL: defaultBaseURL, streamURL: defaultStreamURL}
	for _, opt := range opts {
		opt(a)
	}
	a.mapper = speechMapper()
	return a
}

func (a *Adapter) Provider() core.Provider { return core.ProviderElevenLabs }

// Mapper returns the translation table for speech synthesis, nil for any
// other pair.
func (a *Adapter) Mapper(modality core.Modality, operation core.Operation) *params.Mapper {
	if modality == core.ModalityAudio && operation == core.OperationSpeak {
		return a.mapper
	}
	return nil
}

// speechMapper declares voice and output_format with no body field: both
// are consumed while building the request URL. Validation still runs, so
// an unmapped parameter is rejected before dispatch.
func speechMapper() *params.Mapper {
	return params.New(core.ProviderElevenLabs, core.ModalityAudio, core.OperationSpeak,
		params.Rule{Param: ParamVoice, Field: ""},
		params.Rule{Param: ParamOutputFormat, Field: ""},
		params.Rule{Param: ParamSpeed, Field: "voice_settings.speed"},
		params.Rule{Param: "stability", Field: "voice_settings.stability"},
		params.Rule{Param: "similarity_boost", Field: "voice_settings.similarity_boost"},
	)
}

// InitRequest builds the synthesis call: the voice id lives in the URL
// path, the output format in the query, and the text in the body. A
// streamed request dials the stream-input WebSocket instead and closes
// the input side with an empty-text trailer frame.
func (a *Adapter) InitRequest(req *envelope.Request) (*transport.Request, error) {
	if req.Modality != core.ModalityAudio || req.Operation != core.OperationSpeak {
		return nil, &core.OperationNotSupportedError{
			ModelID:   req.Model,
			Modality:  req.Modality,
			Operation: req.Operation,
		}
	}
	if req.Prompt == "" {
		return nil, fmt.Errorf("elevenlabs: speech synthesis needs text")
	}

	voice := stringParam(req, ParamVoice, defaultVoiceID)
	format := stringParam(req, ParamOutputFormat, defaultOutputFormat)

	if req.Stream {
		return a.initStreamRequest(req, voice, format)
	}

	body, err := json.Marshal(synthesisRequest{Text: req.Prompt, ModelID: req.Model})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encoding synthesis request: %w", err)
	}
	return &transport.Request{
		Method: http.MethodPost,
		URL: fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
			a.baseURL, url.PathEscape(voice), url.QueryEscape(format)),
		Body: body,
	}, nil
}

// initStreamRequest shapes the stream-input opening. The first WebSocket
// message carries the text (parameter mapping adds voice_settings to it
// afterwards); the trailer frame's empty text tells the server the input
// is complete.
func (a *Adapter) initStreamRequest(req *envelope.Request, voice, format string) (*transport.Request, error) {
	body, err := json.Marshal(streamInputMessage{Text: req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encoding stream input: %w", err)
	}
	eos, err := json.Marshal(streamInputMessage{Text: ""})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encoding end-of-input frame: %w", err)
	}

	query := url.Values{}
	query.Set("model_id", req.Model)
	query.Set("output_format", format)
	return &transport.Request{
		URL: fmt.Sprintf("%s/text-to-speech/%s/stream-input?%s",
			a.streamURL, url.PathEscape(voice), query.Encode()),
		WebSocket:     true,
		Body:          body,
		TrailerFrames: [][]byte{eos},
	}, nil
}

// ParseResponse wraps the raw encoded audio in an artifact labeled with
// the MIME type the requested output format implies.
func (a *Adapter) ParseResponse(req *envelope.Request, body []byte) (any, envelope.FinishReason, error) {
	if req.Modality != core.ModalityAudio {
		return nil, "", fmt.Errorf("elevenlabs: no response parser for modality %s", req.Modality)
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("elevenlabs: synthesis response carries no audio")
	}
	format := stringParam(req, ParamOutputFormat, defaultOutputFormat)
	artifact := envelope.Artifact{
		Data:     body,
		MIMEType: formatMIMEType(format),
		Metadata: map[string]any{"output_format": format},
	}
	return []envelope.Artifact{artifact}, envelope.FinishStop, nil
}

// ParseEvent returns the stream-input message parser.
func (a *Adapter) ParseEvent(req *envelope.Request) streaming.ParseEvent {
	if req.Modality == core.ModalityAudio && req.Operation == core.OperationSpeak {
		return parseStreamInputEvent
	}
	return nil
}

// StreamMIMEType labels the audio artifact a stream accumulates into.
func (a *Adapter) StreamMIMEType(req *envelope.Request) string {
	return formatMIMEType(stringParam(req, ParamOutputFormat, defaultOutputFormat))
}

func stringParam(req *envelope.Request, name, fallback string) string {
	if v, ok := req.Params[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

var (
	_ client.Adapter        = (*Adapter)(nil)
	_ client.BinaryStreamer = (*Adapter)(nil)
)
