package issuecache

import "time"

// CountEstimate is the last known total issue count.
// The zero value is an unknown count.
type CountEstimate struct {
	entry Entry[int]
	known bool
}

// Known reports whether a count has ever been recorded.
func (c CountEstimate) Known() bool {
	return c.known
}

// Value returns the recorded count (0 when unknown).
func (c CountEstimate) Value() int {
	return c.entry.Value()
}

// IsFresh reports whether the count is known and not stale.
func (c CountEstimate) IsFresh(now time.Time) bool {
	return c.known && !c.entry.IsStale(now)
}

// Set returns a count estimate holding n, captured at the given instant.
func (c CountEstimate) Set(n int, at time.Time) CountEstimate {
	return CountEstimate{entry: NewEntry(n, at), known: true}
}

// Increment returns an estimate one larger, captured at the given instant.
// An unknown count stays unknown: adding one to nothing does not give a total.
func (c CountEstimate) Increment(at time.Time) CountEstimate {
	if !c.known {
		return c
	}
	return c.Set(c.entry.Value()+1, at)
}
