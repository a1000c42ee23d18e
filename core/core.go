package core

// Modality identifies the kind of content an operation produces.
type Modality string

const (
	ModalityText       Modality = "text"
	ModalityImages     Modality = "images"
	ModalityVideos     Modality = "videos"
	ModalityAudio      Modality = "audio"
	ModalityEmbeddings Modality = "embeddings"
)

// Operation identifies the action requested against a modality.
type Operation string

const (
	OperationGenerate   Operation = "generate"
	OperationEdit       Operation = "edit"
	OperationAnalyze    Operation = "analyze"
	OperationTranscribe Operation = "transcribe"
	OperationEmbed      Operation = "embed"
	OperationSpeak      Operation = "speak"
)

// Provider is the canonical identifier of a concrete vendor implementation.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGoogle     Provider = "google"
	ProviderMistral    Provider = "mistral"
	ProviderCohere     Provider = "cohere"
	ProviderXAI        Provider = "xai"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderDeepSeek   Provider = "deepseek"
)

// Unified parameter names shared across modalities. Modality-specific
// parameters (voice, size, dimensions, ...) are plain strings declared by
// the provider packages that map them.
const (
	ParamTemperature = "temperature"
	ParamMaxTokens   = "max_tokens"
	ParamSeed        = "seed"
	ParamTopP        = "top_p"
	ParamStop        = "stop"
)

// Unified usage field names. Providers map their native usage counters to
// these names during the inbound mapping pass; counters without a unified
// name are preserved under their vendor name.
const (
	UsageInputTokens     = "input_tokens"
	UsageOutputTokens    = "output_tokens"
	UsageTotalTokens     = "total_tokens"
	UsageCachedTokens    = "cached_tokens"
	UsageReasoningTokens = "reasoning_tokens"
	UsageBilledUnits     = "billed_units"
	UsageNumImages       = "num_images"
)
