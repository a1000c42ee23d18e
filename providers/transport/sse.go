package transport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// maxSSELineSize is the maximum size of a single SSE line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for
// large SSE events such as long completions or base64 payloads. If a
// line exceeds this limit the scanner returns a wrapped
// bufio.ErrTooLong via the Next() error path.
const maxSSELineSize = 1 * 1024 * 1024

// sseSource reads Server-Sent Events from a response body. It handles
// multi-line data fields, skips comments and empty lines, and treats the
// [DONE] sentinel used by OpenAI-compatible APIs as end of stream.
type sseSource struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	closeErr  error
}

var _ EventSource = (*sseSource)(nil)

func newSSESource(body io.ReadCloser) *sseSource {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &sseSource{body: body, scanner: scanner}
}

// Next returns the next SSE data payload.
// It skips empty lines and comment lines (starting with ':').
// Returns io.EOF when no more events are available or when the [DONE]
// sentinel is encountered.
//
// Multi-line data fields (multiple consecutive "data:" lines) are joined
// with newlines into a single payload.
func (s *sseSource) Next() ([]byte, error) {
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Empty line signals end of an event; flush accumulated data lines
		if line == "" {
			if len(dataLines) > 0 {
				return []byte(strings.Join(dataLines, "\n")), nil
			}
			continue
		}

		// Skip SSE comments
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			// The [DONE] sentinel (OpenAI convention) marks end of stream
			if data == "[DONE]" {
				return nil, io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (event:, id:, retry:) carry no payload; the
		// JSON data lines are self-describing for every supported vendor.
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("SSE scanner error: %w", err)
	}

	// Flush a trailing event that was not terminated by a blank line
	if len(dataLines) > 0 {
		return []byte(strings.Join(dataLines, "\n")), nil
	}

	return nil, io.EOF
}

// Close releases the underlying response body. Safe to call repeatedly.
func (s *sseSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
