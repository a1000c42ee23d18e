// Package streaming turns raw provider event sources into a uniform
// chunk sequence. A [Stream] pulls wire events from a
// [transport.EventSource], parses each through the provider adapter's
// event parser, and hands normalized [envelope.Chunk] values to the
// caller while accumulating usage, finish reason, and content so the
// final [Stream.Output] matches what a blocking call would have
// returned.
package streaming

import (
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/providers/transport"
)

// ParseEvent converts one raw wire event into a normalized chunk.
// Control frames that should not reach the caller are returned with
// Hidden set; their usage and finish reason still fold into the stream
// accumulator.
type ParseEvent func(payload []byte) (envelope.Chunk, error)

// Config carries the identity and machinery of one streamed call.
type Config struct {
	Provider  core.Provider
	Model     string
	RequestID string

	// MIMEType labels binary stream content when the final output is
	// assembled into an artifact (audio and image streams).
	MIMEType string

	Source transport.EventSource
	Parse  ParseEvent
}

// Stream is the consumer view of one streamed generation. It is not safe
// for concurrent use by multiple goroutines; one consumer drains it via
// [Stream.Recv] or [Stream.Iter].
type Stream struct {
	cfg Config

	delivered int
	exhausted bool
	err       error

	texts  []string
	data   []byte
	usage  envelope.Usage
	finish envelope.FinishReason
	meta   map[string]any

	closeOnce sync.Once
	closeErr  error
}

// New wraps an open event source. The stream owns the source: it is
// closed on exhaustion, on error, and on [Stream.Close].
func New(cfg Config) *Stream {
	return &Stream{cfg: cfg}
}

// Recv returns the next visible chunk. It returns io.EOF once the stream
// is exhausted, and a *core.StreamError carrying the number of chunks
// already delivered when the stream dies mid-flight. Hidden control
// frames are folded into the running totals and never returned.
func (s *Stream) Recv() (envelope.Chunk, error) {
	if s.exhausted {
		if s.err != nil {
			return envelope.Chunk{}, s.err
		}
		return envelope.Chunk{}, io.EOF
	}

	for {
		payload, err := s.cfg.Source.Next()
		if err == io.EOF {
			s.finishStream(nil)
			return envelope.Chunk{}, io.EOF
		}
		if err != nil {
			return envelope.Chunk{}, s.finishStream(err)
		}

		chunk, err := s.cfg.Parse(payload)
		if err != nil {
			return envelope.Chunk{}, s.finishStream(err)
		}

		s.accumulate(chunk)

		if chunk.Hidden {
			continue
		}

		s.delivered++
		return chunk, nil
	}
}

// finishStream marks the stream exhausted, closes the source, and (for a
// non-nil cause) records and returns the wrapped stream error.
func (s *Stream) finishStream(cause error) error {
	s.exhausted = true
	_ = s.Close()
	if cause == nil {
		return nil
	}
	s.err = &core.StreamError{
		Provider:  s.cfg.Provider,
		Delivered: s.delivered,
		Cause:     cause,
	}
	return s.err
}

func (s *Stream) accumulate(chunk envelope.Chunk) {
	if chunk.Text != "" {
		s.texts = append(s.texts, chunk.Text)
	}
	if len(chunk.Data) > 0 {
		s.data = append(s.data, chunk.Data...)
	}
	if chunk.Usage != nil {
		s.usage = s.usage.Merge(*chunk.Usage)
	}
	if chunk.FinishReason != "" {
		s.finish = chunk.FinishReason
	}
	if len(chunk.Metadata) > 0 {
		if s.meta == nil {
			s.meta = make(map[string]any, len(chunk.Metadata))
		}
		for k, v := range chunk.Metadata {
			s.meta[k] = v
		}
	}
}

// Iter adapts the stream to a range-over-func sequence. Breaking out of
// the loop early closes the underlying source; iteration stops at
// exhaustion or on the first error (which is yielded).
func (s *Stream) Iter() iter.Seq2[envelope.Chunk, error] {
	return func(yield func(envelope.Chunk, error) bool) {
		for {
			chunk, err := s.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(envelope.Chunk{}, err)
				return
			}
			if !yield(chunk, nil) {
				_ = s.Close()
				return
			}
		}
	}
}

// Delivered returns the number of visible chunks handed to the caller so
// far.
func (s *Stream) Delivered() int { return s.delivered }

// Output assembles the unified response equivalent to a blocking call:
// concatenated text (or, for binary streams, an artifact holding the
// accumulated bytes), merged usage, and the last finish reason. It must
// be called after exhaustion; before that it returns
// *core.StreamNotExhaustedError. A stream that died mid-flight returns
// its stream error.
func (s *Stream) Output() (*envelope.Response, error) {
	if !s.exhausted {
		return nil, &core.StreamNotExhaustedError{Delivered: s.delivered}
	}
	if s.err != nil {
		return nil, s.err
	}

	var content any
	switch {
	case len(s.texts) > 0:
		content = strings.Join(s.texts, "")
	case len(s.data) > 0:
		content = []envelope.Artifact{{Data: s.data, MIMEType: s.cfg.MIMEType}}
	default:
		content = ""
	}

	return &envelope.Response{
		Content:      content,
		Usage:        s.usage,
		FinishReason: s.finish,
		Metadata:     s.meta,
		Provider:     s.cfg.Provider,
		Model:        s.cfg.Model,
		RequestID:    s.cfg.RequestID,
	}, nil
}

// Collect drains the remaining chunks and returns the assembled output.
func (s *Stream) Collect() (*envelope.Response, error) {
	for {
		_, err := s.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return s.Output()
}

// Close releases the underlying event source. It is idempotent: repeated
// calls return the first close result.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.cfg.Source.Close()
	})
	return s.closeErr
}
