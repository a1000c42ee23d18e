package cost

import "sync"

// Breakdown is the per-category sum of all costs added to a Tracker.
type Breakdown struct {
	Input     float64 `json:"input"`
	Output    float64 `json:"output"`
	CacheRead float64 `json:"cache_read"`
	Reasoning float64 `json:"reasoning"`
	Image     float64 `json:"image"`
	Audio     float64 `json:"audio"`
	Video     float64 `json:"video"`
	Total     float64 `json:"total"`
}

// Tracker accumulates costs across multiple calls. It is safe for
// concurrent use, so one tracker can be shared by clients running in
// parallel goroutines.
//
// Example usage:
//
//	tracker := cost.NewTracker()
//	tracker.Add(rates.ForUsage(resp.Usage))
//	fmt.Println(tracker.Total())
type Tracker struct {
	mu    sync.Mutex
	costs []Cost
}

// NewTracker returns an empty cost tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records one call's cost. Zero costs are ignored so callers can add
// unconditionally even when pricing was unavailable for the model.
func (t *Tracker) Add(c Cost) {
	if c.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.costs = append(t.costs, c)
}

// Total returns the cumulative cost of all recorded calls.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, c := range t.costs {
		total += c.Total()
	}
	return total
}

// Count returns the number of recorded costs.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.costs)
}

// Breakdown returns the per-category sums. Explicit provider-reported
// totals only contribute to the Total field since their composition is
// unknown.
func (t *Tracker) Breakdown() Breakdown {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b Breakdown
	for _, c := range t.costs {
		b.Input += c.Input
		b.Output += c.Output
		b.CacheRead += c.CacheRead
		b.Reasoning += c.Reasoning
		b.Image += c.Image
		b.Audio += c.Audio
		b.Video += c.Video
		b.Total += c.Total()
	}
	return b
}

// Reset clears all recorded costs.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.costs = nil
}
