package celeste

import (
	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/constraint"
	"github.com/withceleste/celeste/core/registry"
)

// builtinModels is the first-party model set. It is deliberately small:
// one well-known model per served (provider, modality) pair, enough to
// use the library without a catalog file. Deployments extend or replace
// it with WithModels and WithCatalogFile.
func builtinModels() []registry.Model {
	return []registry.Model{
		{
			ID:          "gpt-4o",
			Provider:    core.ProviderOpenAI,
			DisplayName: "GPT-4o",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityText: {core.OperationGenerate},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				core.ParamTemperature: constraint.Range{Min: 0, Max: 2},
				core.ParamTopP:        constraint.Range{Min: 0, Max: 1},
				core.ParamMaxTokens:   constraint.Min{Bound: 1},
				core.ParamSeed:        constraint.Int{},
			},
		},
		{
			ID:          "gpt-4o-mini",
			Provider:    core.ProviderOpenAI,
			DisplayName: "GPT-4o mini",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityText: {core.OperationGenerate},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				core.ParamTemperature: constraint.Range{Min: 0, Max: 2},
				core.ParamTopP:        constraint.Range{Min: 0, Max: 1},
				core.ParamMaxTokens:   constraint.Min{Bound: 1},
				core.ParamSeed:        constraint.Int{},
			},
		},
		{
			ID:          "text-embedding-3-small",
			Provider:    core.ProviderOpenAI,
			DisplayName: "Text Embedding 3 Small",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityEmbeddings: {core.OperationEmbed},
			},
			Constraints: map[string]constraint.Constraint{
				"dimensions": constraint.Range{Min: 1, Max: 1536},
			},
		},
		{
			ID:          "gpt-image-1",
			Provider:    core.ProviderOpenAI,
			DisplayName: "GPT Image 1",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityImages: {core.OperationGenerate},
			},
			Constraints: map[string]constraint.Constraint{
				"size": constraint.Choice{Options: []any{"1024x1024", "1536x1024", "1024x1536", "auto"}},
				"n":    constraint.Range{Min: 1, Max: 10},
			},
		},
		{
			ID:          "claude-sonnet-4-20250514",
			Provider:    core.ProviderAnthropic,
			DisplayName: "Claude Sonnet 4",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityText: {core.OperationGenerate},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				core.ParamTemperature: constraint.Range{Min: 0, Max: 1},
				core.ParamTopP:        constraint.Range{Min: 0, Max: 1},
				core.ParamMaxTokens:   constraint.Min{Bound: 1},
			},
		},
		{
			ID:          "claude-3-5-haiku-20241022",
			Provider:    core.ProviderAnthropic,
			DisplayName: "Claude 3.5 Haiku",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityText: {core.OperationGenerate},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				core.ParamTemperature: constraint.Range{Min: 0, Max: 1},
				core.ParamTopP:        constraint.Range{Min: 0, Max: 1},
				core.ParamMaxTokens:   constraint.Min{Bound: 1},
			},
		},
		{
			ID:          "eleven_multilingual_v2",
			Provider:    core.ProviderElevenLabs,
			DisplayName: "Eleven Multilingual v2",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityAudio: {core.OperationSpeak},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				"speed":     constraint.Range{Min: 0.7, Max: 1.2},
				"stability": constraint.Range{Min: 0, Max: 1},
			},
		},
		{
			ID:          "eleven_turbo_v2_5",
			Provider:    core.ProviderElevenLabs,
			DisplayName: "Eleven Turbo v2.5",
			Operations: map[core.Modality][]core.Operation{
				core.ModalityAudio: {core.OperationSpeak},
			},
			Streaming: true,
			Constraints: map[string]constraint.Constraint{
				"speed":     constraint.Range{Min: 0.7, Max: 1.2},
				"stability": constraint.Range{Min: 0, Max: 1},
			},
		},
	}
}
