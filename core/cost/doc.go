// Package cost tracks the monetary cost of generation calls. A [ModelCost]
// rate card converts usage counters (or media units) into a per-call [Cost]
// breakdown, a [Table] maps provider/model pairs to rate cards and loads
// them from YAML, and a thread-safe [Tracker] accumulates costs across a
// session.
//
// Pricing is opt-in: nothing in the client pipeline computes costs unless
// the caller registers rates and feeds usage into a tracker.
package cost
