package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/constraint"
)

const sampleCatalog = `
models:
  - id: gpt-test-mini
    provider: openai
    display_name: GPT Test Mini
    streaming: true
    operations:
      text: [generate]
      embeddings: [embed]
    parameters:
      temperature:
        type: range
        min: 0
        max: 2
      max_tokens:
        type: range
        min: 1
        max: 4096
      response_format:
        type: choice
        options: [text, json_object]
  - id: paint-test
    provider: openai
    operations:
      images: [generate]
    parameters:
      size:
        type: dimensions
        min_pixels: 65536
        max_pixels: 4194304
        min_aspect_ratio: 0.25
        max_aspect_ratio: 4
        presets:
          square: 1024x1024
`

// TestLoad parses a representative catalog and checks that identity,
// operation support, and constraints all survive the round trip.
func TestLoad(t *testing.T) {
	models, err := Load(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("Load() returned %d models, want 2", len(models))
	}

	gpt := models[0]
	if gpt.ID != "gpt-test-mini" || gpt.Provider != core.ProviderOpenAI {
		t.Errorf("model identity = (%q, %q), want (gpt-test-mini, openai)", gpt.ID, gpt.Provider)
	}
	if gpt.DisplayName != "GPT Test Mini" {
		t.Errorf("DisplayName = %q", gpt.DisplayName)
	}
	if !gpt.Streaming {
		t.Error("expected streaming model")
	}
	if !gpt.Supports(core.ModalityText, core.OperationGenerate) {
		t.Error("expected text/generate support")
	}
	if !gpt.Supports(core.ModalityEmbeddings, core.OperationEmbed) {
		t.Error("expected embeddings/embed support")
	}
	if gpt.Supports(core.ModalityImages, core.OperationGenerate) {
		t.Error("did not expect images/generate support")
	}

	temp, ok := gpt.Constraints["temperature"].(constraint.Range)
	if !ok {
		t.Fatalf("temperature constraint is %T, want constraint.Range", gpt.Constraints["temperature"])
	}
	if temp.Min != 0 || temp.Max != 2 {
		t.Errorf("temperature range = [%v, %v], want [0, 2]", temp.Min, temp.Max)
	}
	if _, err := temp.Validate(2.5); err == nil {
		t.Error("expected 2.5 to violate temperature range")
	}

	choice, ok := gpt.Constraints["response_format"].(constraint.Choice)
	if !ok {
		t.Fatalf("response_format constraint is %T, want constraint.Choice", gpt.Constraints["response_format"])
	}
	if len(choice.Options) != 2 {
		t.Errorf("response_format options = %v", choice.Options)
	}

	paint := models[1]
	dims, ok := paint.Constraints["size"].(constraint.Dimensions)
	if !ok {
		t.Fatalf("size constraint is %T, want constraint.Dimensions", paint.Constraints["size"])
	}
	got, err := dims.Validate("square")
	if err != nil {
		t.Fatalf("Validate(square) error = %v", err)
	}
	if got != "1024x1024" {
		t.Errorf("preset normalized to %v, want 1024x1024", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "malformed yaml",
			yaml:    "models:\n  - id: [unclosed",
			wantMsg: "parsing catalog",
		},
		{
			name:    "missing id",
			yaml:    "models:\n  - provider: openai",
			wantMsg: "missing id",
		},
		{
			name:    "missing provider",
			yaml:    "models:\n  - id: some-model",
			wantMsg: "missing provider",
		},
		{
			name: "unknown constraint type",
			yaml: `
models:
  - id: m
    provider: openai
    parameters:
      temperature:
        type: fancy
`,
			wantMsg: `unknown constraint type "fancy"`,
		},
		{
			name: "constraint without type",
			yaml: `
models:
  - id: m
    provider: openai
    parameters:
      temperature:
        min: 0
`,
			wantMsg: "missing constraint type",
		},
		{
			name: "range without bounds",
			yaml: `
models:
  - id: m
    provider: openai
    parameters:
      temperature:
        type: range
        min: 0
`,
			wantMsg: "range requires min and max",
		},
		{
			name: "invalid pattern expression",
			yaml: `
models:
  - id: m
    provider: openai
    parameters:
      voice:
        type: pattern
        expr: "[unterminated"
`,
			wantMsg: "pattern expr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

// TestLoadFile exercises the file path entry point with a temp catalog.
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatal(err)
	}

	models, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(models) != 2 {
		t.Errorf("LoadFile() returned %d models, want 2", len(models))
	}

	if _, err := LoadFile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
