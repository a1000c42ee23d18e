// Package params translates the unified parameter set into each vendor's
// request shape and back. A [Mapper] is an ordered rule table scoped to
// (provider, modality, operation), built once at provider registration and
// immutable afterwards.
//
// The outbound pass validates every constrained parameter through the
// model's constraint set before a single byte is written, so a failing
// call never produces a partial request. The inbound pass extracts known
// vendor usage counters into the unified [envelope.Usage] shape and keeps
// everything it does not recognize in an opaque metadata bag.
package params

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/registry"
)

// Transform converts a validated unified value into the vendor's
// representation (unit changes, renamed enums, wrapping into objects).
type Transform func(value any) (any, error)

// Rule maps one unified parameter into the vendor request.
type Rule struct {
	// Param is the unified parameter name.
	Param string

	// Field is the vendor field path in sjson syntax, e.g.
	// "generationConfig.temperature". An empty Field marks a parameter
	// that is validated here but consumed by the provider's request
	// builder instead of the body (e.g. a voice id spliced into the URL).
	Field string

	// Transform, when set, runs after validation and before the write.
	Transform Transform

	// Default, when non-nil, is injected at Field when the caller did not
	// supply the parameter. Defaults are registration-time values and are
	// not re-validated per call.
	Default any
}

// UsageMapping describes where a vendor reports consumption counters.
// Object is the gjson path of the usage object ("" for the response
// root); Fields maps vendor counter names to unified usage field names.
// Counters found under Object without a unified name are preserved under
// their vendor name.
type UsageMapping struct {
	Object string
	Fields map[string]string
}

// Mapper is the per-(provider, modality, operation) translation table.
type Mapper struct {
	provider  core.Provider
	modality  core.Modality
	operation core.Operation

	rules []Rule
	index map[string]int

	usage UsageMapping

	// consumed lists top-level vendor response fields the provider's
	// content/finish parsing consumes; they are excluded from the
	// metadata bag to avoid duplicating bulky payloads.
	consumed map[string]bool
}

// New builds a mapper from an ordered rule list. Rule order defines write
// order into the vendor request.
func New(provider core.Provider, modality core.Modality, operation core.Operation, rules ...Rule) *Mapper {
	m := &Mapper{
		provider:  provider,
		modality:  modality,
		operation: operation,
		rules:     append([]Rule(nil), rules...),
		index:     make(map[string]int, len(rules)),
		consumed:  make(map[string]bool),
	}
	for i, r := range m.rules {
		m.index[r.Param] = i
	}
	return m
}

// WithUsage declares the vendor's usage reporting shape.
func (m *Mapper) WithUsage(mapping UsageMapping) *Mapper {
	m.usage = mapping
	return m
}

// WithConsumed declares top-level response fields consumed by content
// parsing, excluding them from the metadata bag.
func (m *Mapper) WithConsumed(fields ...string) *Mapper {
	for _, f := range fields {
		m.consumed[f] = true
	}
	return m
}

// Chain layers this mapper over a provider-level base: rules here
// override base rules with the same parameter name, base rules fill in
// the rest, and the usage mapping falls back to the base when undeclared.
func (m *Mapper) Chain(base *Mapper) *Mapper {
	if base == nil {
		return m
	}
	merged := New(m.provider, m.modality, m.operation)
	for _, r := range base.rules {
		if i, overridden := m.index[r.Param]; overridden {
			r = m.rules[i]
		}
		merged.rules = append(merged.rules, r)
		merged.index[r.Param] = len(merged.rules) - 1
	}
	for _, r := range m.rules {
		if _, present := merged.index[r.Param]; !present {
			merged.rules = append(merged.rules, r)
			merged.index[r.Param] = len(merged.rules) - 1
		}
	}
	merged.usage = m.usage
	if merged.usage.Fields == nil && merged.usage.Object == "" {
		merged.usage = base.usage
	}
	for f := range base.consumed {
		merged.consumed[f] = true
	}
	for f := range m.consumed {
		merged.consumed[f] = true
	}
	return merged
}

// Rule returns the rule registered for a unified parameter name.
func (m *Mapper) Rule(param string) (Rule, bool) {
	i, ok := m.index[param]
	if !ok {
		return Rule{}, false
	}
	return m.rules[i], true
}

// Outbound validates params against the model's constraints and writes
// them into body (a JSON object) at their vendor field paths, injects
// declared defaults for absent parameters, and deep-merges the extra-body
// escape hatch without overwriting any mapped field.
//
// A parameter without a rule is rejected: silent drop would lose caller
// intent, and provider-specific fields have the escape hatch.
func (m *Mapper) Outbound(body []byte, model registry.Model, paramValues map[string]any, extraBody map[string]any) ([]byte, error) {
	if len(body) == 0 {
		body = []byte("{}")
	}

	// Validate everything first so a failing call sends nothing.
	names := make([]string, 0, len(paramValues))
	for name := range paramValues {
		names = append(names, name)
	}
	sort.Strings(names)

	validated := make(map[string]any, len(paramValues))
	for _, name := range names {
		value := paramValues[name]
		rule, ok := m.Rule(name)
		if !ok {
			return nil, &core.ParameterValidationError{
				Parameter: name,
				Value:     value,
				Rule:      fmt.Sprintf("no mapping rule for provider %s %s/%s; use the extra-body escape hatch for provider-specific fields", m.provider, m.modality, m.operation),
			}
		}
		if c, constrained := model.Constraints[name]; constrained {
			normalized, err := c.Validate(value)
			if err != nil {
				return nil, &core.ParameterValidationError{Parameter: name, Value: value, Rule: c.Describe(), Cause: err}
			}
			value = normalized
		}
		if rule.Transform != nil {
			transformed, err := rule.Transform(value)
			if err != nil {
				return nil, &core.ParameterValidationError{Parameter: name, Value: value, Rule: "transform", Cause: err}
			}
			value = transformed
		}
		validated[name] = value
	}

	// Write mapped values and defaults in rule order.
	var err error
	for _, rule := range m.rules {
		value, present := validated[rule.Param]
		if !present {
			if rule.Default == nil {
				continue
			}
			value = rule.Default
			if rule.Transform != nil {
				value, err = rule.Transform(value)
				if err != nil {
					return nil, &core.ParameterValidationError{Parameter: rule.Param, Value: rule.Default, Rule: "transform", Cause: err}
				}
			}
		}
		if rule.Field == "" {
			continue // consumed by the request builder
		}
		body, err = sjson.SetBytes(body, rule.Field, value)
		if err != nil {
			return nil, fmt.Errorf("writing %s to field %q: %w", rule.Param, rule.Field, err)
		}
	}

	if len(extraBody) == 0 {
		return body, nil
	}

	var built map[string]any
	if err := json.Unmarshal(body, &built); err != nil {
		return nil, fmt.Errorf("merging extra body: request body is not an object: %w", err)
	}
	merged, err := json.Marshal(Merge(built, extraBody))
	if err != nil {
		return nil, fmt.Errorf("merging extra body: %w", err)
	}
	return merged, nil
}

// Consumed reports whether the rule for param is consumed by the request
// builder rather than written to the body.
func (m *Mapper) Consumed(param string) bool {
	rule, ok := m.Rule(param)
	return ok && rule.Field == ""
}

// Inbound extracts usage counters and the metadata bag from a raw vendor
// response. Field keys in the usage mapping are gjson paths relative to
// the usage object, so nested detail counters promote like flat ones.
// Counters found under the usage object without a unified name keep their
// vendor name (dotted for nested ones) in Usage.Raw; response fields
// outside the consumed set are passed through verbatim in the metadata
// bag.
func (m *Mapper) Inbound(raw []byte) (envelope.Usage, map[string]any) {
	usage := envelope.Usage{}

	record := func(name string, value gjson.Result) {
		if usage.Raw == nil {
			usage.Raw = make(map[string]float64)
		}
		usage.Raw[name] = value.Float()
		switch name {
		case core.UsageInputTokens:
			usage.InputTokens = int(value.Int())
		case core.UsageOutputTokens:
			usage.OutputTokens = int(value.Int())
		case core.UsageTotalTokens:
			usage.TotalTokens = int(value.Int())
		case core.UsageCachedTokens:
			usage.CachedTokens = int(value.Int())
		case core.UsageReasoningTokens:
			usage.ReasoningTokens = int(value.Int())
		}
	}

	obj := gjson.ParseBytes(raw)
	if m.usage.Object != "" {
		obj = obj.Get(m.usage.Object)
	}
	if obj.IsObject() && len(m.usage.Fields) > 0 {
		declared := make(map[string]bool, len(m.usage.Fields))
		for vendorPath, unified := range m.usage.Fields {
			declared[vendorPath] = true
			if value := obj.Get(vendorPath); value.Type == gjson.Number {
				record(unified, value)
			}
		}
		if m.usage.Object != "" {
			// Root-level usage mappings only promote declared fields;
			// arbitrary root fields are not counters.
			walkCounters(obj, "", func(path string, value gjson.Result) {
				if !declared[path] {
					record(path, value)
				}
			})
		}
	}

	var metadata map[string]any
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		metadata = make(map[string]any, len(parsed))
		for k, v := range parsed {
			if !m.consumed[k] {
				metadata[k] = v
			}
		}
	}
	return usage, metadata
}

// walkCounters visits every numeric leaf under obj, naming nested leaves
// by their dotted path relative to obj.
func walkCounters(obj gjson.Result, prefix string, visit func(path string, value gjson.Result)) {
	obj.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		switch {
		case value.Type == gjson.Number:
			visit(path, value)
		case value.IsObject():
			walkCounters(value, path, visit)
		}
		return true
	})
}
