package parse

import (
	"reflect"
	"testing"
)

type invoice struct {
	Number string  `json:"number"`
	Total  float64 `json:"total"`
	Paid   bool    `json:"paid"`
}

func TestParseStringAs_Primitives(t *testing.T) {
	t.Run("string passthrough", func(t *testing.T) {
		got, err := ParseStringAs[string]("plain text, not JSON")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != "plain text, not JSON" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		got, err := ParseStringAs[bool]("true")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if !got {
			t.Error("got false, want true")
		}
	})

	t.Run("int", func(t *testing.T) {
		got, err := ParseStringAs[int]("-42")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != -42 {
			t.Errorf("got %d, want -42", got)
		}
	})

	t.Run("uint", func(t *testing.T) {
		got, err := ParseStringAs[uint]("7")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != 7 {
			t.Errorf("got %d, want 7", got)
		}
	})

	t.Run("float", func(t *testing.T) {
		got, err := ParseStringAs[float64]("3.25")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != 3.25 {
			t.Errorf("got %v, want 3.25", got)
		}
	})

	t.Run("int rejects prose", func(t *testing.T) {
		if _, err := ParseStringAs[int]("forty-two"); err == nil {
			t.Error("expected error for non-numeric content")
		}
	})

	t.Run("uint rejects negative", func(t *testing.T) {
		if _, err := ParseStringAs[uint]("-1"); err == nil {
			t.Error("expected error for negative uint")
		}
	})
}

// Models sometimes emit a schema definition where the value was asked for.
// Primitive targets unwrap the {"type": ..., "value": ...} shape.
func TestParseStringAs_SchemaWrappedPrimitives(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		got, err := ParseStringAs[string](`{"type": "string", "value": "hello"}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != "hello" {
			t.Errorf("got %q, want hello", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		got, err := ParseStringAs[bool](`{"type": "boolean", "value": true}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if !got {
			t.Error("got false, want true")
		}
	})

	t.Run("int", func(t *testing.T) {
		got, err := ParseStringAs[int](`{"type": "integer", "value": 30}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != 30 {
			t.Errorf("got %d, want 30", got)
		}
	})

	t.Run("float", func(t *testing.T) {
		got, err := ParseStringAs[float64](`{"type": "number", "value": 0.5}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != 0.5 {
			t.Errorf("got %v, want 0.5", got)
		}
	})

	t.Run("extra keys disable unwrapping", func(t *testing.T) {
		// Three keys is no longer the wrapper shape; the raw string comes back.
		raw := `{"type": "string", "value": "hello", "description": "greeting"}`
		got, err := ParseStringAs[string](raw)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got != raw {
			t.Errorf("got %q, want raw content", got)
		}
	})
}

func TestParseStringAs_Struct(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		got, err := ParseStringAs[invoice](`{"number":"INV-7","total":12.5,"paid":true}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		want := invoice{Number: "INV-7", Total: 12.5, Paid: true}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("repairable JSON", func(t *testing.T) {
		// Unquoted keys, single quotes, trailing comma.
		got, err := ParseStringAs[invoice](`{number: 'INV-7', total: 12.5, paid: true,}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Number != "INV-7" || got.Total != 12.5 || !got.Paid {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("schema-wrapped fields", func(t *testing.T) {
		raw := `{"number": {"type": "string", "value": "INV-7"}, "total": {"type": "number", "value": 12.5}}`
		got, err := ParseStringAs[invoice](raw)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Number != "INV-7" || got.Total != 12.5 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("nested schema wrappers", func(t *testing.T) {
		type person struct {
			Name    string `json:"name"`
			Address struct {
				City string `json:"city"`
			} `json:"address"`
		}
		raw := `{"name": {"type": "string", "value": "Ada"}, "address": {"city": {"type": "string", "value": "London"}}}`
		got, err := ParseStringAs[person](raw)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Name != "Ada" || got.Address.City != "London" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("map target", func(t *testing.T) {
		got, err := ParseStringAs[map[string]any](`{"a": 1, "b": "two"}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got["a"] != float64(1) || got["b"] != "two" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("garbage fails", func(t *testing.T) {
		if _, err := ParseStringAs[invoice]("no structure here at all"); err == nil {
			t.Error("expected error for content with no JSON")
		}
	})
}

func TestParseStringAs_CodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"fence with language tag", "```json\n{\"number\":\"INV-7\"}\n```"},
		{"fence without tag", "```\n{\"number\":\"INV-7\"}\n```"},
		{"fence without newline", "```{\"number\":\"INV-7\"}```"},
		{"surrounding whitespace", "  \n```json\n{\"number\":\"INV-7\"}\n```\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringAs[invoice](tt.content)
			if err != nil {
				t.Fatalf("ParseStringAs() error = %v", err)
			}
			if got.Number != "INV-7" {
				t.Errorf("Number = %q, want INV-7", got.Number)
			}
		})
	}
}

func TestParseStringAs_Slices(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		got, err := ParseStringAs[[]int]("[1, 2, 3]")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if !reflect.DeepEqual(got, []int{1, 2, 3}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("bare object wrapped into one-element slice", func(t *testing.T) {
		got, err := ParseStringAs[[]invoice](`{"number":"INV-7"}`)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if len(got) != 1 || got[0].Number != "INV-7" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("repairable array", func(t *testing.T) {
		got, err := ParseStringAs[[]string]("['a', 'b']")
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("got %v", got)
		}
	})
}

// Models often surround the payload with prose; the parser scans for
// balanced bracket spans and retries each one.
func TestParseStringAs_NarrativeRecovery(t *testing.T) {
	t.Run("prose around object", func(t *testing.T) {
		content := `Sure! Here is the invoice you asked for: {"number":"INV-7","total":12.5} Let me know if you need anything else.`
		got, err := ParseStringAs[invoice](content)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Number != "INV-7" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("prose around array", func(t *testing.T) {
		content := "The top scores are [3, 1, 4] as requested."
		got, err := ParseStringAs[[]int](content)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if !reflect.DeepEqual(got, []int{3, 1, 4}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("repairable span inside prose", func(t *testing.T) {
		content := "Here you go: {number: 'INV-7', paid: true} done."
		got, err := ParseStringAs[invoice](content)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Number != "INV-7" || !got.Paid {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("first matching span wins", func(t *testing.T) {
		content := `{"number":"INV-1"} or maybe {"number":"INV-2"}`
		got, err := ParseStringAs[invoice](content)
		if err != nil {
			t.Fatalf("ParseStringAs() error = %v", err)
		}
		if got.Number != "INV-1" {
			t.Errorf("Number = %q, want INV-1", got.Number)
		}
	})
}

func TestBalancedSpans(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "single object",
			content: `before {"a": 1} after`,
			want:    []string{`{"a": 1}`},
		},
		{
			name:    "nested spans reported outer first",
			content: `{"a": {"b": 2}}`,
			want:    []string{`{"a": {"b": 2}}`, `{"b": 2}`},
		},
		{
			name:    "brackets inside strings ignored",
			content: `{"text": "a } b ] c"}`,
			want:    []string{`{"text": "a } b ] c"}`},
		},
		{
			name:    "escaped quote does not end the string",
			content: `{"text": "say \"}\" loud"}`,
			want:    []string{`{"text": "say \"}\" loud"}`},
		},
		{
			name:    "array and object side by side",
			content: `[1, 2] and {"a": 1}`,
			want:    []string{`[1, 2]`, `{"a": 1}`},
		},
		{
			name:    "unterminated open bracket yields nothing",
			content: `{"a": 1`,
			want:    nil,
		},
		{
			name:    "mismatched close is not a span",
			content: `{"a": 1]`,
			want:    nil,
		},
		{
			name:    "no brackets",
			content: "plain prose",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := balancedSpans(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("balancedSpans() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONCandidates(t *testing.T) {
	// Balanced but invalid spans are filtered; valid ones survive in order.
	content := `broken {a: 1} then valid {"b": 2} and [3]`
	got := extractJSONCandidates(content)
	want := []string{`{"b": 2}`, `[3]`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractJSONCandidates() = %v, want %v", got, want)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"single line", "```{\"a\": 1}```", `{"a": 1}`},
		{"inner whitespace", "```json\n\n  {\"a\": 1}\n\n```", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.content); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
