package cost

import (
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

// DefaultCurrency is the currency all rate cards and breakdowns use.
const DefaultCurrency = "USD"

// Cost is the monetary breakdown of a single call. All values are in USD.
// Fields are zero when the pricing mode does not produce that component:
// a text generation fills Input/Output, an image generation fills Image,
// a speech synthesis fills Audio.
type Cost struct {
	// Input is the cost of non-cached input tokens
	Input float64 `json:"input,omitempty"`

	// Output is the cost of output tokens
	Output float64 `json:"output,omitempty"`

	// CacheRead is the discounted cost of cached input tokens
	CacheRead float64 `json:"cache_read,omitempty"`

	// Reasoning is the cost of reasoning tokens, for models that bill
	// chain-of-thought output separately
	Reasoning float64 `json:"reasoning,omitempty"`

	// Image is the cost of generated images
	Image float64 `json:"image,omitempty"`

	// Audio is the cost of synthesized or transcribed audio
	Audio float64 `json:"audio,omitempty"`

	// Video is the cost of generated video
	Video float64 `json:"video,omitempty"`

	// explicitTotal overrides the component sum when the provider reports
	// the billed amount directly in its response.
	explicitTotal *float64
}

// Explicit returns a Cost whose total is the provider-reported amount
// rather than a sum of components. Some providers return the billed cost
// in the response body instead of usage counters.
func Explicit(total float64) Cost {
	return Cost{explicitTotal: &total}
}

// Total returns the explicit provider-reported total when set, otherwise
// the sum of all components.
func (c Cost) Total() float64 {
	if c.explicitTotal != nil {
		return *c.explicitTotal
	}
	return c.Input + c.Output + c.CacheRead + c.Reasoning + c.Image + c.Audio + c.Video
}

// IsZero reports whether no cost component was populated.
func (c Cost) IsZero() bool {
	return c.explicitTotal == nil && c.Total() == 0
}

// String returns a formatted representation of the total cost.
func (c Cost) String() string {
	return fmt.Sprintf("%.6f %s", c.Total(), DefaultCurrency)
}

// ModelCost is the rate card for one model. Token rates are expressed in
// USD per one million tokens; media rates are per generated unit. A zero
// rate means the model does not bill that dimension.
//
// Example usage:
//
//	rates := cost.ModelCost{
//	    InputPerMillion:       2.50,
//	    OutputPerMillion:      10.00,
//	    CachedInputPerMillion: 1.25,
//	}
//	c := rates.ForUsage(resp.Usage)
type ModelCost struct {
	// InputPerMillion is the cost in USD per 1 million input tokens
	InputPerMillion float64 `json:"input_per_million,omitempty" yaml:"input_per_million"`

	// OutputPerMillion is the cost in USD per 1 million output tokens
	OutputPerMillion float64 `json:"output_per_million,omitempty" yaml:"output_per_million"`

	// CachedInputPerMillion is the discounted rate for cached input tokens
	CachedInputPerMillion float64 `json:"cached_input_per_million,omitempty" yaml:"cached_input_per_million"`

	// ReasoningPerMillion is the rate for reasoning tokens. When zero,
	// reasoning tokens bill at the output rate.
	ReasoningPerMillion float64 `json:"reasoning_per_million,omitempty" yaml:"reasoning_per_million"`

	// PerImage is the cost in USD per generated image
	PerImage float64 `json:"per_image,omitempty" yaml:"per_image"`

	// PerCharacter is the cost in USD per input character, used by
	// speech synthesis models
	PerCharacter float64 `json:"per_character,omitempty" yaml:"per_character"`

	// PerSecond is the cost in USD per second of audio or video
	PerSecond float64 `json:"per_second,omitempty" yaml:"per_second"`
}

// IsZero reports whether the rate card has no billable dimension.
func (mc ModelCost) IsZero() bool {
	return mc == ModelCost{}
}

// ForUsage calculates the token-based cost of a call. Cached tokens are
// subtracted from the billable input and charged at the cached rate;
// reasoning tokens bill at the reasoning rate when set, otherwise at the
// output rate.
func (mc ModelCost) ForUsage(u envelope.Usage) Cost {
	var c Cost

	billableInput := u.InputTokens - u.CachedTokens
	if billableInput < 0 {
		billableInput = 0
	}
	c.Input = perMillion(billableInput, mc.InputPerMillion)
	c.Output = perMillion(u.OutputTokens, mc.OutputPerMillion)

	if u.CachedTokens > 0 {
		c.CacheRead = perMillion(u.CachedTokens, mc.CachedInputPerMillion)
	}

	if u.ReasoningTokens > 0 {
		rate := mc.ReasoningPerMillion
		if rate == 0 {
			rate = mc.OutputPerMillion
		}
		c.Reasoning = perMillion(u.ReasoningTokens, rate)
	}

	return c
}

// ForImages calculates the cost of generating count images.
func (mc ModelCost) ForImages(count int) Cost {
	return Cost{Image: float64(count) * mc.PerImage}
}

// ForSpeech calculates the cost of synthesizing speech from the given
// number of input characters.
func (mc ModelCost) ForSpeech(characters int) Cost {
	return Cost{Audio: float64(characters) * mc.PerCharacter}
}

// ForDuration calculates the per-second cost for the given length of
// audio or video output.
func (mc ModelCost) ForDuration(seconds float64, video bool) Cost {
	amount := seconds * mc.PerSecond
	if video {
		return Cost{Video: amount}
	}
	return Cost{Audio: amount}
}

// String returns a formatted representation of the token rates.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputPerMillion, mc.OutputPerMillion)
}

func perMillion(tokens int, rate float64) float64 {
	return (float64(tokens) / 1_000_000.0) * rate
}
