package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/withceleste/celeste/providers/observability"
)

// metricSet keeps one instrument per name so repeated lookups return the
// same instance and counters keep accumulating.
type metricSet struct {
	logger *slog.Logger

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

func newMetricSet(logger *slog.Logger) *metricSet {
	return &metricSet{
		logger:     logger,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

func (m *metricSet) counterNamed(name string) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = &counter{name: name, logger: m.logger}
		m.counters[name] = c
	}
	return c
}

func (m *metricSet) histogramNamed(name string) *histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = &histogram{name: name, logger: m.logger}
		m.histograms[name] = h
	}
	return h
}

// counter accumulates in memory and logs each increment at DEBUG with the
// running total.
type counter struct {
	name   string
	logger *slog.Logger
	total  atomic.Int64
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	total := c.total.Add(value)

	logAttrs := append([]slog.Attr{
		slog.String("metric", c.name),
		slog.String("kind", "counter"),
		slog.Int64("delta", value),
		slog.Int64("total", total),
	}, slogAttrs(attrs)...)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "metric", logAttrs...)
}

// histogram logs each observation at DEBUG; it keeps no aggregate state.
type histogram struct {
	name   string
	logger *slog.Logger
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	logAttrs := append([]slog.Attr{
		slog.String("metric", h.name),
		slog.String("kind", "histogram"),
		slog.Float64("value", value),
	}, slogAttrs(attrs)...)
	h.logger.LogAttrs(ctx, slog.LevelDebug, "metric", logAttrs...)
}
