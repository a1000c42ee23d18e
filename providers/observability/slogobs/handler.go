package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// handler renders slog records in one of the three package formats. One
// mutex serializes writes so interleaved goroutines produce whole lines.
type handler struct {
	format Format
	level  slog.Level
	colors bool

	mu     *sync.Mutex
	output io.Writer

	attrs  []slog.Attr
	groups []string
}

func newHandler(cfg *config) *handler {
	output := cfg.output
	if output == nil {
		output = os.Stdout
	}
	format := cfg.format
	if format == "" {
		format = FormatCompact
	}

	colors := cfg.colors
	if !cfg.colorsSet && format != FormatJSON {
		if f, ok := output.(*os.File); ok {
			colors = isTerminal(f)
		}
	}

	return &handler{
		format: format,
		level:  cfg.level,
		colors: colors,
		mu:     &sync.Mutex{},
		output: output,
	}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var line []byte
	switch h.format {
	case FormatJSON:
		line = h.renderJSON(r)
	case FormatPretty:
		line = h.renderPretty(r)
	default:
		line = h.renderCompact(r)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(line)
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// renderCompact: "2006-01-02 15:04:05 LEVEL message  {"key":"value"}".
func (h *handler) renderCompact(r slog.Record) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	h.writeLevel(&b, r.Level)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	if fields := h.fields(r); len(fields) > 0 {
		b.WriteString("  ")
		if encoded, err := json.Marshal(fieldMap(fields)); err == nil {
			b.Write(encoded)
		}
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// renderPretty: a header line followed by one bulleted line per attribute,
// in key order.
func (h *handler) renderPretty(r slog.Record) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	h.writeLevel(&b, r.Level)
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteByte('\n')

	for _, f := range h.fields(r) {
		fmt.Fprintf(&b, "  • %s = %v\n", f.key, f.value)
	}
	return []byte(b.String())
}

// renderJSON: a single object with time, level, msg, and the attributes
// merged at the top level.
func (h *handler) renderJSON(r slog.Record) []byte {
	record := map[string]any{
		"time":  r.Time.Format("2006-01-02T15:04:05"),
		"level": levelName(r.Level),
		"msg":   r.Message,
	}
	for _, f := range h.fields(r) {
		record[f.key] = f.value
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil
	}
	return append(encoded, '\n')
}

func (h *handler) writeLevel(b *strings.Builder, level slog.Level) {
	name := fmt.Sprintf("%5s", levelName(level))
	if h.colors {
		b.WriteString(levelColor(level))
		b.WriteString(name)
		b.WriteString(colorReset)
		return
	}
	b.WriteString(name)
}

type field struct {
	key   string
	value any
}

// fields flattens the handler's bound attributes and the record's own
// attributes into one sorted list. Group names become dotted key prefixes.
func (h *handler) fields(r slog.Record) []field {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	var fields []field
	for _, attr := range h.attrs {
		fields = append(fields, field{key: prefix + attr.Key, value: attr.Value.Any()})
	}
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, field{key: prefix + attr.Key, value: attr.Value.Any()})
		return true
	})

	sort.Slice(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
	return fields
}

func fieldMap(fields []field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.key] = f.value
	}
	return m
}

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
