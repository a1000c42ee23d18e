package parse

import (
	"testing"

	"github.com/withceleste/celeste/core/envelope"
)

func TestResponseAs_Struct(t *testing.T) {
	type Sentiment struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}

	resp := &envelope.Response{Content: `{"label":"positive","score":0.92}`}

	got, err := ResponseAs[Sentiment](resp)
	if err != nil {
		t.Fatalf("ResponseAs() error = %v", err)
	}
	if got.Label != "positive" || got.Score != 0.92 {
		t.Errorf("ResponseAs() = %+v", got)
	}
}

func TestResponseAs_FencedJSON(t *testing.T) {
	type Item struct {
		Name string `json:"name"`
	}

	resp := &envelope.Response{Content: "```json\n{\"name\":\"widget\"}\n```"}

	got, err := ResponseAs[Item](resp)
	if err != nil {
		t.Fatalf("ResponseAs() error = %v", err)
	}
	if got.Name != "widget" {
		t.Errorf("ResponseAs() Name = %q, want %q", got.Name, "widget")
	}
}

func TestResponseAs_NilResponse(t *testing.T) {
	if _, err := ResponseAs[map[string]any](nil); err == nil {
		t.Error("ResponseAs(nil) expected error")
	}
}

func TestResponseAs_NonTextContent(t *testing.T) {
	resp := &envelope.Response{Content: []envelope.Artifact{{Data: []byte{1, 2}, MIMEType: "audio/mpeg"}}}

	if _, err := ResponseAs[map[string]any](resp); err == nil {
		t.Error("ResponseAs() on binary content expected error")
	}
}
