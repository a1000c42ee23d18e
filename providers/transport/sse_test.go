package transport

import (
	"io"
	"strings"
	"testing"
)

func sseFrom(s string) *sseSource {
	return newSSESource(io.NopCloser(strings.NewReader(s)))
}

func drain(t *testing.T, s *sseSource) []string {
	t.Helper()
	var events []string
	for {
		payload, err := s.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, string(payload))
	}
}

func TestSSENext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single event",
			input: "data: {\"a\": 1}\n\n",
			want:  []string{`{"a": 1}`},
		},
		{
			name:  "multiple events",
			input: "data: one\n\ndata: two\n\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "multi-line data joined with newline",
			input: "data: line1\ndata: line2\n\n",
			want:  []string{"line1\nline2"},
		},
		{
			name:  "comments and blank lines skipped",
			input: ": keep-alive\n\n: another comment\ndata: payload\n\n",
			want:  []string{"payload"},
		},
		{
			name:  "event and id fields carry no payload",
			input: "event: message_start\nid: 42\ndata: payload\n\n",
			want:  []string{"payload"},
		},
		{
			name:  "done sentinel ends the stream",
			input: "data: first\n\ndata: [DONE]\n\ndata: never\n\n",
			want:  []string{"first"},
		},
		{
			name:  "trailing event without blank line is flushed",
			input: "data: tail",
			want:  []string{"tail"},
		},
		{
			name:  "empty stream",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drain(t, sseFrom(tt.input))
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSSENext_LineTooLong(t *testing.T) {
	big := "data: " + strings.Repeat("x", maxSSELineSize+1) + "\n\n"
	_, err := sseFrom(big).Next()
	if err == nil || err == io.EOF {
		t.Fatalf("Next() error = %v, want scanner error", err)
	}
}

func TestSSEClose_Idempotent(t *testing.T) {
	s := sseFrom("data: one\n\n")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
