package issuecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/testutil"
)

var cacheT0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestCache(gw *testutil.MockGateway, opts ...Option) (*Cache, *testutil.MockClock) {
	clock := testutil.NewMockClock(cacheT0)
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(gw, opts...), clock
}

func await[T any](t *testing.T, r *Result[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := r.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "result did not resolve")
	return v, err
}

func getPage(t *testing.T, c *Cache, page, limit int) ([]domain.Issue, error) {
	t.Helper()
	r, err := c.GetPage(context.Background(), page, limit)
	require.NoError(t, err)
	return await(t, r)
}

func ids(issues []domain.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.ID
	}
	return out
}

type recordingObserver struct {
	hits    map[Op]int
	misses  map[Op]int
	gateway map[Op][]error
	mu      sync.Mutex
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{hits: map[Op]int{}, misses: map[Op]int{}, gateway: map[Op][]error{}}
}

func (o *recordingObserver) Hit(op Op) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits[op]++
}

func (o *recordingObserver) Miss(op Op) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses[op]++
}

func (o *recordingObserver) GatewayDone(op Op, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gateway[op] = append(o.gateway[op], err)
}

func TestCache_GetPage_EmptyStoreScenario(t *testing.T) {
	// Setup
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 5), TotalCount: 5}
	c, _ := newTestCache(gw)

	// Execute
	first, err := getPage(t, c, 1, 10)
	require.NoError(t, err)

	// Assert
	assert.Len(t, first, 5)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []testutil.PageCall{{Page: 1, Limit: 10}}, gw.FetchPageCalls())

	second, err := getPage(t, c, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, gw.FetchPageCalls(), 1, "second read must be a pure cache hit")
}

func TestCache_GetPage_RepeatedReadIsHit(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 5), TotalCount: 20}
	gw.Pages[2] = &domain.IssuePage{Issues: testutil.Issues(6, 5), TotalCount: 20}
	c, _ := newTestCache(gw)

	_, err := getPage(t, c, 1, 5)
	require.NoError(t, err)
	// [5,10) lies past the local data but before the known count.
	_, err = getPage(t, c, 2, 5)
	require.NoError(t, err)
	require.Len(t, gw.FetchPageCalls(), 2)

	got, err := getPage(t, c, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-6", "ISSUE-7", "ISSUE-8", "ISSUE-9", "ISSUE-10"}, ids(got))
	got, err = getPage(t, c, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2", "ISSUE-3", "ISSUE-4", "ISSUE-5"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 2)
}

func TestCache_GetPage_PastKnownEndIsEmpty(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 5), TotalCount: 5}
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 10)
	require.NoError(t, err)

	tests := []struct {
		name        string
		page, limit int
	}{
		{"offset equals count", 2, 5},
		{"offset beyond count", 2, 10},
		{"far beyond count", 7, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getPage(t, c, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
	assert.Len(t, gw.FetchPageCalls(), 1)
}

func TestCache_GetPage_PartialLastPageIsHit(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 7), TotalCount: 7}
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 10)
	require.NoError(t, err)

	got, err := getPage(t, c, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-6", "ISSUE-7"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 1)
}

func TestCache_GetPage_StaleEntriesRefill(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 3), TotalCount: 3}
	c, clock := newTestCache(gw)
	_, err := getPage(t, c, 1, 3)
	require.NoError(t, err)

	clock.Advance(StaleThreshold - time.Second)
	_, err = getPage(t, c, 1, 3)
	require.NoError(t, err)
	require.Len(t, gw.FetchPageCalls(), 1)

	clock.Advance(time.Second)
	_, err = getPage(t, c, 1, 3)
	require.NoError(t, err)
	assert.Len(t, gw.FetchPageCalls(), 2)
}

func TestCache_GetPage_LaterPageDoesNotAnswerEarlierPage(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 5), TotalCount: 12}
	gw.Pages[2] = &domain.IssuePage{Issues: testutil.Issues(6, 5), TotalCount: 12}
	c, _ := newTestCache(gw)

	_, err := getPage(t, c, 2, 5)
	require.NoError(t, err)

	got, err := getPage(t, c, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2", "ISSUE-3", "ISSUE-4", "ISSUE-5"}, ids(got))
	assert.Equal(t, []testutil.PageCall{{Page: 2, Limit: 5}, {Page: 1, Limit: 5}}, gw.FetchPageCalls())

	// Page 2 was read past a gap, so it is fetched once more before it
	// joins the known pages.
	_, err = getPage(t, c, 2, 5)
	require.NoError(t, err)
	require.Len(t, gw.FetchPageCalls(), 3)

	got, err = getPage(t, c, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-6", "ISSUE-7", "ISSUE-8", "ISSUE-9", "ISSUE-10"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 3)
}

func TestCache_GetPage_SingleIssueDoesNotAnswerPage(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["ISSUE-7"] = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-7"}}
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 1), TotalCount: 12}
	c, _ := newTestCache(gw)

	_, err := await(t, c.GetByID(context.Background(), "ISSUE-7"))
	require.NoError(t, err)

	got, err := getPage(t, c, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 1)
}

func TestCache_GetPage_IssueInsideKnownPagesShortensThem(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{
		Issues:     []domain.Issue{{ID: "ISSUE-1"}, {ID: "ISSUE-3"}, {ID: "ISSUE-4"}},
		TotalCount: 3,
	}
	// ISSUE-2 appeared on the server after page 1 was read.
	gw.ByID["ISSUE-2"] = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-2"}}
	c, _ := newTestCache(gw)

	_, err := getPage(t, c, 1, 3)
	require.NoError(t, err)
	_, err = await(t, c.GetByID(context.Background(), "ISSUE-2"))
	require.NoError(t, err)

	// Only ISSUE-1 is still known to sit at its server position.
	got, err := getPage(t, c, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 1)

	_, err = getPage(t, c, 1, 3)
	require.NoError(t, err)
	assert.Len(t, gw.FetchPageCalls(), 2)
}

func TestCache_GetPage_StaleCountIsNotClamped(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 5), TotalCount: 7}
	gw.Pages[2] = &domain.IssuePage{Issues: testutil.Issues(6, 2), TotalCount: 7}
	c, clock := newTestCache(gw)
	_, err := getPage(t, c, 1, 5)
	require.NoError(t, err)
	_, err = getPage(t, c, 2, 5)
	require.NoError(t, err)

	got, err := getPage(t, c, 2, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"ISSUE-6", "ISSUE-7"}, ids(got))
	require.Len(t, gw.FetchPageCalls(), 2, "a fresh count ends the page at the last issue")

	// Refresh the entries of page 2 through updates; the count stays old.
	clock.Advance(StaleThreshold)
	for _, id := range []string{"ISSUE-6", "ISSUE-7"} {
		gw.EditResult = &domain.EditResult{Issue: &domain.Issue{ID: id}, WasUpdate: true}
		_, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: id}))
		require.NoError(t, err)
	}
	require.False(t, c.Count().IsFresh(clock.Now()))

	_, err = getPage(t, c, 2, 5)
	require.NoError(t, err)
	assert.Len(t, gw.FetchPageCalls(), 3, "a stale count must not shorten the window")
}

func TestCache_RefreshPage(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 3), TotalCount: 3}
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 3)
	require.NoError(t, err)

	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 4), TotalCount: 4}
	r, err := c.RefreshPage(context.Background(), 1, 4)
	require.NoError(t, err)
	got, err := await(t, r)
	require.NoError(t, err)

	assert.Len(t, got, 4)
	assert.Len(t, gw.FetchPageCalls(), 2)
	assert.Equal(t, 4, c.Count().Value())

	_, err = c.RefreshPage(context.Background(), 0, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCache_GetPage_InvalidArgument(t *testing.T) {
	gw := testutil.NewMockGateway()
	c, _ := newTestCache(gw)

	tests := []struct {
		name        string
		page, limit int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero limit", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.GetPage(context.Background(), tt.page, tt.limit)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Nil(t, r)
		})
	}
	assert.Zero(t, gw.TotalCalls())
}

func TestCache_GetPage_ReturnsServerPageInServerOrder(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{
		Issues:     []domain.Issue{{ID: "ISSUE-3"}, {ID: "ISSUE-1"}, {ID: "ISSUE-2"}},
		TotalCount: 3,
	}
	c, _ := newTestCache(gw)

	got, err := getPage(t, c, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-3", "ISSUE-1", "ISSUE-2"}, ids(got))

	// The store itself is canonical.
	got, err = getPage(t, c, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2", "ISSUE-3"}, ids(got))
}

func TestCache_GetPage_GatewayFailureLeavesStore(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 2), TotalCount: 2}
	c, clock := newTestCache(gw)
	_, err := getPage(t, c, 1, 2)
	require.NoError(t, err)

	transport := errors.New("connection refused")
	gw.FetchPageErr = transport
	clock.Advance(StaleThreshold)

	_, err = getPage(t, c, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.ErrorIs(t, err, transport)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Same(t, transport, gwErr.Err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count().Value())
}

func TestCache_GetPage_IssueWithoutIDIsProtocolViolation(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: []domain.Issue{{ID: "ISSUE-1"}, {Summary: "no id"}}, TotalCount: 2}
	c, _ := newTestCache(gw)

	_, err := getPage(t, c, 1, 2)
	assert.ErrorIs(t, err, domain.ErrProtocolViolation)
	assert.Zero(t, c.Len())
	assert.False(t, c.Count().Known())
}

func TestCache_GetPage_RecordsCurrentUser(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{
		CurrentUser: &domain.GitUser{Name: "Alice", Email: "alice@example.com"},
		Issues:      testutil.Issues(1, 1),
		TotalCount:  1,
	}
	c, _ := newTestCache(gw)

	_, ok := c.CurrentUser()
	assert.False(t, ok)

	_, err := getPage(t, c, 1, 1)
	require.NoError(t, err)

	u, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestCache_GetByID_MissFetchesOnceAndCaches(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["x"] = &domain.IssueResult{Issue: &domain.Issue{ID: "x", Summary: "remote"}}
	c, _ := newTestCache(gw)

	got, err := await(t, c.GetByID(context.Background(), "x"))
	require.NoError(t, err)
	assert.Equal(t, "remote", got.Summary)
	assert.Equal(t, []string{"x"}, gw.FetchByIDCalls())
	assert.Equal(t, 1, c.Len())

	_, err = await(t, c.GetByID(context.Background(), "x"))
	require.NoError(t, err)
	assert.Len(t, gw.FetchByIDCalls(), 1)
}

func TestCache_GetByID_IgnoresStaleness(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["ISSUE-1"] = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-1"}}
	c, clock := newTestCache(gw)

	_, err := await(t, c.GetByID(context.Background(), "ISSUE-1"))
	require.NoError(t, err)

	clock.Advance(2 * StaleThreshold)
	_, err = await(t, c.GetByID(context.Background(), "ISSUE-1"))
	require.NoError(t, err)
	assert.Len(t, gw.FetchByIDCalls(), 1)
}

func TestCache_GetByID_ReturnsCopy(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["ISSUE-1"] = &domain.IssueResult{Issue: &domain.Issue{
		ID:          "ISSUE-1",
		Summary:     "original",
		Subscribers: []domain.GitUser{{Email: "a@example.com"}},
	}}
	c, _ := newTestCache(gw)

	got, err := await(t, c.GetByID(context.Background(), "ISSUE-1"))
	require.NoError(t, err)
	got.Summary = "mutated"
	got.Subscribers[0].Email = "mutated@example.com"

	again, err := await(t, c.GetByID(context.Background(), "ISSUE-1"))
	require.NoError(t, err)
	assert.Equal(t, "original", again.Summary)
	assert.Equal(t, "a@example.com", again.Subscribers[0].Email)
}

func TestCache_GetByID_NotFound(t *testing.T) {
	gw := testutil.NewMockGateway()
	c, _ := newTestCache(gw)

	_, err := await(t, c.GetByID(context.Background(), "ISSUE-404"))
	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
	assert.Zero(t, c.Len())
}

func TestCache_GetByID_EmptyBodyIsProtocolViolation(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["ISSUE-1"] = &domain.IssueResult{}
	c, _ := newTestCache(gw)

	_, err := await(t, c.GetByID(context.Background(), "ISSUE-1"))
	assert.ErrorIs(t, err, domain.ErrProtocolViolation)
	assert.Zero(t, c.Len())
}

func TestCache_CreateIssue(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 2), TotalCount: 2}
	gw.CreateResult = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-3", Summary: "new"}}
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 10)
	require.NoError(t, err)

	got, err := await(t, c.CreateIssue(context.Background(), domain.Issue{Summary: "new"}))
	require.NoError(t, err)

	assert.Equal(t, "ISSUE-3", got.ID)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Count().Value())
	require.Len(t, gw.Created(), 1)
	assert.Equal(t, "new", gw.Created()[0].Summary)

	// The new issue is visible without another fetch.
	page, err := getPage(t, c, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-1", "ISSUE-2", "ISSUE-3"}, ids(page))
	assert.Len(t, gw.FetchPageCalls(), 1)
}

func TestCache_CreateIssue_PartialPagesStayUnconfirmed(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 2), TotalCount: 5}
	gw.Pages[2] = &domain.IssuePage{Issues: testutil.Issues(3, 2), TotalCount: 6}
	gw.CreateResult = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-9"}}
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 2)
	require.NoError(t, err)

	_, err = await(t, c.CreateIssue(context.Background(), domain.Issue{Summary: "new"}))
	require.NoError(t, err)

	// ISSUE-3..5 were never read, so ISSUE-9 cannot stand at offset 2.
	got, err := getPage(t, c, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISSUE-3", "ISSUE-4"}, ids(got))
	assert.Len(t, gw.FetchPageCalls(), 2)
}

func TestCache_CreateIssue_FailureLeavesState(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 2), TotalCount: 2}
	gw.CreateErr = errors.New("500 internal server error")
	c, _ := newTestCache(gw)
	_, err := getPage(t, c, 1, 10)
	require.NoError(t, err)

	_, err = await(t, c.CreateIssue(context.Background(), domain.Issue{Summary: "x"}))
	require.ErrorIs(t, err, domain.ErrGatewayFailure)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count().Value())
}

func TestCache_CreateIssue_UnknownCountStaysUnknown(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.CreateResult = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-1"}}
	c, _ := newTestCache(gw)

	_, err := await(t, c.CreateIssue(context.Background(), domain.Issue{Summary: "x"}))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Count().Known())
}

func TestCache_EditIssue(t *testing.T) {
	setup := func(t *testing.T) (*Cache, *testutil.MockGateway) {
		t.Helper()
		gw := testutil.NewMockGateway()
		gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 3), TotalCount: 3}
		c, _ := newTestCache(gw)
		_, err := getPage(t, c, 1, 10)
		require.NoError(t, err)
		return c, gw
	}

	t.Run("update replaces entry", func(t *testing.T) {
		c, gw := setup(t)
		gw.EditResult = &domain.EditResult{
			Issue:     &domain.Issue{ID: "ISSUE-2", Summary: "edited"},
			WasUpdate: true,
		}

		got, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: "ISSUE-2", Summary: "edited"}))
		require.NoError(t, err)

		assert.Equal(t, "edited", got.Summary)
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, 3, c.Count().Value())

		cached, err := await(t, c.GetByID(context.Background(), "ISSUE-2"))
		require.NoError(t, err)
		assert.Equal(t, "edited", cached.Summary)
		assert.Empty(t, gw.FetchByIDCalls())
	})

	t.Run("implicit create appends entry", func(t *testing.T) {
		c, gw := setup(t)
		gw.EditResult = &domain.EditResult{
			Issue:     &domain.Issue{ID: "ISSUE-9", Summary: "created"},
			WasUpdate: false,
		}

		_, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: "ISSUE-9", Summary: "created"}))
		require.NoError(t, err)

		assert.Equal(t, 4, c.Len())
		assert.Equal(t, 4, c.Count().Value())
	})

	t.Run("update of uncached issue is protocol violation", func(t *testing.T) {
		c, gw := setup(t)
		gw.EditResult = &domain.EditResult{
			Issue:     &domain.Issue{ID: "ISSUE-42"},
			WasUpdate: true,
		}

		_, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: "ISSUE-42"}))
		assert.ErrorIs(t, err, domain.ErrProtocolViolation)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("missing body is protocol violation", func(t *testing.T) {
		c, gw := setup(t)
		gw.EditResult = &domain.EditResult{WasUpdate: true}

		_, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: "ISSUE-1"}))
		assert.ErrorIs(t, err, domain.ErrProtocolViolation)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("gateway failure leaves state", func(t *testing.T) {
		c, gw := setup(t)
		gw.EditErr = errors.New("timeout")

		_, err := await(t, c.EditIssue(context.Background(), domain.Issue{ID: "ISSUE-1", Summary: "x"}))
		assert.ErrorIs(t, err, domain.ErrGatewayFailure)

		cached, err := await(t, c.GetByID(context.Background(), "ISSUE-1"))
		require.NoError(t, err)
		assert.Equal(t, "Issue 1", cached.Summary)
	})
}

func TestCache_StatusIndicators(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Statuses = []string{"open", "closed", "in progress"}
	c, clock := newTestCache(gw)

	got, err := await(t, c.StatusIndicators(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "closed", "in progress"}, got)

	_, err = await(t, c.StatusIndicators(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, 1, gw.StatusCalls())

	clock.Advance(StaleThreshold)
	_, err = await(t, c.StatusIndicators(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, 2, gw.StatusCalls())
}

func TestCache_ObserverEvents(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.Pages[1] = &domain.IssuePage{Issues: testutil.Issues(1, 2), TotalCount: 2}
	obs := newRecordingObserver()
	c, _ := newTestCache(gw, WithObserver(obs))

	_, err := getPage(t, c, 1, 10)
	require.NoError(t, err)
	_, err = getPage(t, c, 1, 10)
	require.NoError(t, err)
	_, err = await(t, c.GetByID(context.Background(), "ISSUE-404"))
	require.Error(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.hits[OpGetPage])
	assert.Equal(t, 1, obs.misses[OpGetPage])
	assert.Equal(t, 1, obs.misses[OpGetByID])
	assert.Equal(t, []error{nil}, obs.gateway[OpGetPage])
	require.Len(t, obs.gateway[OpGetByID], 1)
	assert.ErrorIs(t, obs.gateway[OpGetByID][0], domain.ErrGatewayFailure)
}

func TestCache_CallerCancellationDoesNotAbortGatewayCall(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.ByID["ISSUE-1"] = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-1"}}
	gw.Gate = make(chan struct{})
	c, _ := newTestCache(gw)

	ctx, cancel := context.WithCancel(context.Background())
	r := c.GetByID(ctx, "ISSUE-1")
	cancel()

	_, err := r.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(gw.Gate)
	got, err := await(t, r)
	require.NoError(t, err)
	assert.Equal(t, "ISSUE-1", got.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCache_RequestCoalescing(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantCalls int
	}{
		{"disabled", nil, 2},
		{"enabled", []Option{WithRequestCoalescing()}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testutil.NewMockGateway()
			gw.ByID["ISSUE-1"] = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-1"}}
			gw.Gate = make(chan struct{})
			c, _ := newTestCache(gw, tt.opts...)

			r1 := c.GetByID(context.Background(), "ISSUE-1")
			r2 := c.GetByID(context.Background(), "ISSUE-1")

			assert.Eventually(t, func() bool {
				return len(gw.FetchByIDCalls()) >= 1
			}, time.Second, 5*time.Millisecond)
			// Give the second request time to join or start its own call.
			time.Sleep(50 * time.Millisecond)
			close(gw.Gate)

			v1, err := await(t, r1)
			require.NoError(t, err)
			v2, err := await(t, r2)
			require.NoError(t, err)

			assert.Equal(t, v1.ID, v2.ID)
			assert.Len(t, gw.FetchByIDCalls(), tt.wantCalls)
			assert.Equal(t, 1, c.Len())
		})
	}
}

func TestCache_MutationsAreNeverCoalesced(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.CreateResult = &domain.IssueResult{Issue: &domain.Issue{ID: "ISSUE-1"}}
	c, _ := newTestCache(gw, WithRequestCoalescing())

	r1 := c.CreateIssue(context.Background(), domain.Issue{Summary: "a"})
	r2 := c.CreateIssue(context.Background(), domain.Issue{Summary: "a"})
	_, err := await(t, r1)
	require.NoError(t, err)
	_, err = await(t, r2)
	require.NoError(t, err)

	assert.Len(t, gw.Created(), 2)
}
