// Package issuecache keeps a locally held, ordered window of issues in front
// of an IssueGateway and decides per request whether that window can answer
// it or a refill from the network is required.
package issuecache

import "time"

// StaleThreshold is the age at which a cached value becomes unusable for reads.
const StaleThreshold = 30 * time.Minute

// Entry wraps a cached value with the instant it was captured.
// An Entry is never modified after construction; a refresh replaces it.
type Entry[T any] struct {
	capturedAt time.Time
	value      T
}

// NewEntry creates an entry captured at the given instant.
func NewEntry[T any](value T, capturedAt time.Time) Entry[T] {
	return Entry[T]{value: value, capturedAt: capturedAt}
}

// Value returns the wrapped value.
func (e Entry[T]) Value() T {
	return e.value
}

// CapturedAt returns the capture instant.
func (e Entry[T]) CapturedAt() time.Time {
	return e.capturedAt
}

// Age returns how long ago the entry was captured.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.capturedAt)
}

// IsStale reports whether the entry has reached StaleThreshold.
// The boundary is inclusive.
func (e Entry[T]) IsStale(now time.Time) bool {
	return e.Age(now) >= StaleThreshold
}
