// Package catalog loads model definitions from YAML documents into
// registry entries. A catalog file declares models, the (modality,
// operation) pairs they support, and per-parameter validation rules, so
// deployments can extend or override the built-in model set without
// recompiling.
package catalog

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/constraint"
	"github.com/withceleste/celeste/core/registry"
)

// document is the top-level YAML shape.
type document struct {
	Models []modelSpec `yaml:"models"`
}

type modelSpec struct {
	ID          string                   `yaml:"id"`
	Provider    string                   `yaml:"provider"`
	DisplayName string                   `yaml:"display_name"`
	Streaming   bool                     `yaml:"streaming"`
	Operations  map[string][]string      `yaml:"operations"`
	Parameters  map[string]ruleSpec      `yaml:"parameters"`
}

// ruleSpec is the YAML shape of a single parameter constraint, dispatched
// on its "type" field.
type ruleSpec struct {
	Type string `yaml:"type"`

	// range / min / max
	Min           *float64  `yaml:"min"`
	Max           *float64  `yaml:"max"`
	Step          float64   `yaml:"step"`
	SpecialValues []float64 `yaml:"special_values"`

	// choice
	Options  []any `yaml:"options"`
	FoldCase bool  `yaml:"fold_case"`

	// pattern
	Expr string `yaml:"expr"`

	// string
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`

	// dimensions
	MinPixels      int               `yaml:"min_pixels"`
	MaxPixels      int               `yaml:"max_pixels"`
	MinAspectRatio float64           `yaml:"min_aspect_ratio"`
	MaxAspectRatio float64           `yaml:"max_aspect_ratio"`
	Presets        map[string]string `yaml:"presets"`
}

// Load parses a YAML catalog document and returns the models it declares,
// in document order. It returns an error for malformed YAML, an unknown
// constraint type, or a model without an id or provider.
func Load(r io.Reader) ([]registry.Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	models := make([]registry.Model, 0, len(doc.Models))
	for i, spec := range doc.Models {
		model, err := buildModel(spec)
		if err != nil {
			return nil, fmt.Errorf("catalog model %d (%q): %w", i, spec.ID, err)
		}
		models = append(models, model)
	}
	return models, nil
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path string) ([]registry.Model, error) {
	f, err := os.Open(path) // #nosec G304 -- catalog path is operator-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func buildModel(spec modelSpec) (registry.Model, error) {
	if spec.ID == "" {
		return registry.Model{}, fmt.Errorf("missing id")
	}
	if spec.Provider == "" {
		return registry.Model{}, fmt.Errorf("missing provider")
	}

	operations := make(map[core.Modality][]core.Operation, len(spec.Operations))
	for modality, ops := range spec.Operations {
		converted := make([]core.Operation, len(ops))
		for i, op := range ops {
			converted[i] = core.Operation(op)
		}
		operations[core.Modality(modality)] = converted
	}

	var constraints map[string]constraint.Constraint
	if len(spec.Parameters) > 0 {
		constraints = make(map[string]constraint.Constraint, len(spec.Parameters))
		for name, rule := range spec.Parameters {
			c, err := buildConstraint(rule)
			if err != nil {
				return registry.Model{}, fmt.Errorf("parameter %q: %w", name, err)
			}
			constraints[name] = c
		}
	}

	return registry.Model{
		ID:          spec.ID,
		Provider:    core.Provider(spec.Provider),
		DisplayName: spec.DisplayName,
		Operations:  operations,
		Streaming:   spec.Streaming,
		Constraints: constraints,
	}, nil
}

func buildConstraint(spec ruleSpec) (constraint.Constraint, error) {
	switch spec.Type {
	case "range":
		if spec.Min == nil || spec.Max == nil {
			return nil, fmt.Errorf("range requires min and max")
		}
		return constraint.Range{
			Min:           *spec.Min,
			Max:           *spec.Max,
			Step:          spec.Step,
			SpecialValues: spec.SpecialValues,
		}, nil
	case "min":
		if spec.Min == nil {
			return nil, fmt.Errorf("min requires min")
		}
		return constraint.Min{Bound: *spec.Min}, nil
	case "max":
		if spec.Max == nil {
			return nil, fmt.Errorf("max requires max")
		}
		return constraint.Max{Bound: *spec.Max}, nil
	case "choice":
		if len(spec.Options) == 0 {
			return nil, fmt.Errorf("choice requires options")
		}
		return constraint.Choice{Options: spec.Options, FoldCase: spec.FoldCase}, nil
	case "pattern":
		if spec.Expr == "" {
			return nil, fmt.Errorf("pattern requires expr")
		}
		// NewPattern panics on a bad expression; catalog files are
		// operator input, so pre-compile and report instead.
		if _, err := regexp.Compile(spec.Expr); err != nil {
			return nil, fmt.Errorf("pattern expr: %w", err)
		}
		return constraint.NewPattern(spec.Expr), nil
	case "string":
		return constraint.Str{MinLength: spec.MinLength, MaxLength: spec.MaxLength}, nil
	case "int":
		return constraint.Int{}, nil
	case "float":
		return constraint.Float{}, nil
	case "bool":
		return constraint.Bool{}, nil
	case "dimensions":
		return constraint.Dimensions{
			MinPixels:      spec.MinPixels,
			MaxPixels:      spec.MaxPixels,
			MinAspectRatio: spec.MinAspectRatio,
			MaxAspectRatio: spec.MaxAspectRatio,
			Presets:        spec.Presets,
		}, nil
	case "":
		return nil, fmt.Errorf("missing constraint type")
	default:
		return nil, fmt.Errorf("unknown constraint type %q", spec.Type)
	}
}
