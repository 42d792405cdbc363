package issuecache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-issue/internal/domain"
)

var storeT0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStore_UpsertKeepsOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"ISSUE-10", "ISSUE-2", "ISSUE-1", "ISSUE-3"} {
		s.Upsert(domain.Issue{ID: id}, storeT0)
	}

	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2", "ISSUE-3", "ISSUE-10"}, storeIDs(s))
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Issue{ID: "ISSUE-1", Summary: "a"}, storeT0)
	s.Upsert(domain.Issue{ID: "ISSUE-2", Summary: "b"}, storeT0)
	before := storeIDs(s)

	s.Upsert(domain.Issue{ID: "ISSUE-2", Summary: "b"}, storeT0)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, before, storeIDs(s))
}

func TestStore_UpsertReplacesByID(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Issue{ID: "ISSUE-1", Summary: "old"}, storeT0)

	later := storeT0.Add(time.Hour)
	s.Upsert(domain.Issue{ID: "ISSUE-1", Summary: "new"}, later)

	e, ok := s.FindByID("ISSUE-1")
	require.True(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "new", e.Value().Summary)
	assert.Equal(t, later, e.CapturedAt())
}

func TestStore_UpsertCopiesArgument(t *testing.T) {
	s := NewStore()
	issue := domain.Issue{ID: "ISSUE-1", Subscribers: []domain.GitUser{{Email: "a@example.com"}}}
	s.Upsert(issue, storeT0)

	issue.Subscribers[0].Email = "changed@example.com"

	e, ok := s.FindByID("ISSUE-1")
	require.True(t, ok)
	assert.Equal(t, "a@example.com", e.Value().Subscribers[0].Email)
}

func TestStore_FindByIDMissing(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Issue{ID: "ISSUE-1"}, storeT0)

	_, ok := s.FindByID("ISSUE-9")
	assert.False(t, ok)
}

func TestStore_Range(t *testing.T) {
	s := NewStore()
	for i := 1; i <= 5; i++ {
		s.Upsert(domain.Issue{ID: "ISSUE-" + string(rune('0'+i))}, storeT0)
	}

	t.Run("inside", func(t *testing.T) {
		got, err := s.Range(1, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "ISSUE-2", got[0].Value().ID)
		assert.Equal(t, "ISSUE-3", got[1].Value().ID)
	})

	t.Run("truncated at end", func(t *testing.T) {
		got, err := s.Range(3, 10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("offset at length is empty", func(t *testing.T) {
		got, err := s.Range(5, 3)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("offset past length", func(t *testing.T) {
		_, err := s.Range(6, 1)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := s.Range(-1, 1)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := s.Range(0, -1)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	})
}

func TestStore_RangeReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Issue{ID: "ISSUE-1"}, storeT0)
	s.Upsert(domain.Issue{ID: "ISSUE-2"}, storeT0)

	got, err := s.Range(0, 2)
	require.NoError(t, err)
	got[0] = NewEntry(domain.Issue{ID: "ISSUE-9"}, storeT0)

	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2"}, storeIDs(s))
}

func TestStore_LeadingRun(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"ISSUE-1", "ISSUE-2", "ISSUE-3", "ISSUE-4"} {
		s.Upsert(domain.Issue{ID: id}, storeT0)
	}

	head := s.leadingIDs(2)
	assert.Len(t, head, 2)
	assert.Contains(t, head, "ISSUE-1")
	assert.Contains(t, head, "ISSUE-2")
	assert.Len(t, s.leadingIDs(10), 4)

	assert.Equal(t, 2, s.leadingRun(head))
	assert.Equal(t, 0, s.leadingRun(map[string]struct{}{"ISSUE-2": {}}))
	assert.Equal(t, 4, s.leadingRun(s.leadingIDs(4)))
}

func storeIDs(s *Store) []string {
	ids := make([]string, s.Len())
	for i, e := range s.entries {
		ids[i] = e.Value().ID
	}
	return ids
}
