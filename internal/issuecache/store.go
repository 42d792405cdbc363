package issuecache

import (
	"fmt"
	"slices"
	"time"

	"github.com/runoshun/git-issue/internal/domain"
)

// Store is an ordered sequence of issue entries, ascending by issue ID
// (domain.CompareIssueIDs), with no two entries sharing an ID.
//
// Store is not safe for concurrent use; Cache serializes access.
type Store struct {
	entries []Entry[domain.Issue]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// search returns the position of id, or where it would be inserted.
func (s *Store) search(id string) (int, bool) {
	return slices.BinarySearchFunc(s.entries, id, func(e Entry[domain.Issue], id string) int {
		return domain.CompareIssueIDs(e.value.ID, id)
	})
}

// FindByID returns the entry for id, if present.
func (s *Store) FindByID(id string) (Entry[domain.Issue], bool) {
	i, ok := s.search(id)
	if !ok {
		return Entry[domain.Issue]{}, false
	}
	return s.entries[i], true
}

// Upsert replaces the entry with the same ID by a fresh one, or inserts a
// new entry at its sorted position. The issue is copied; the caller keeps
// ownership of its argument.
func (s *Store) Upsert(issue domain.Issue, at time.Time) {
	e := NewEntry(issue.Clone(), at)
	i, ok := s.search(issue.ID)
	if ok {
		s.entries[i] = e
		return
	}
	s.entries = slices.Insert(s.entries, i, e)
}

// Range returns up to count entries starting at offset. A result shorter
// than count means the store does not hold enough data, not that the
// collection has ended.
func (s *Store) Range(offset, count int) ([]Entry[domain.Issue], error) {
	if offset < 0 || offset > len(s.entries) {
		return nil, fmt.Errorf("%w: offset %d, length %d", domain.ErrOutOfRange, offset, len(s.entries))
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", domain.ErrOutOfRange, count)
	}
	end := min(offset+count, len(s.entries))
	return slices.Clone(s.entries[offset:end]), nil
}

// Sort re-establishes canonical order. Upsert keeps order on its own;
// Sort is run after every merge from the network.
func (s *Store) Sort() {
	slices.SortStableFunc(s.entries, func(a, b Entry[domain.Issue]) int {
		return domain.CompareIssues(a.value, b.value)
	})
}

// leadingIDs returns the set of IDs held by the first n entries.
func (s *Store) leadingIDs(n int) map[string]struct{} {
	n = min(n, len(s.entries))
	ids := make(map[string]struct{}, n)
	for _, e := range s.entries[:n] {
		ids[e.value.ID] = struct{}{}
	}
	return ids
}

// leadingRun returns how many leading entries have their ID in ids.
func (s *Store) leadingRun(ids map[string]struct{}) int {
	for i, e := range s.entries {
		if _, ok := ids[e.value.ID]; !ok {
			return i
		}
	}
	return len(s.entries)
}
