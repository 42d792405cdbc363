package issuecache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/runoshun/git-issue/internal/domain"
)

// Cache answers issue reads from a local Store when the data there is
// present and fresh, and refills from the gateway otherwise. Mutations are
// write-through: the gateway confirms first, then the store is patched.
//
// All state is guarded by one mutex that is never held across a gateway
// call. Gateway calls are not cancelled once issued; their context is
// detached from the caller's cancellation.
type Cache struct {
	gateway  domain.IssueGateway
	clock    domain.Clock
	observer Observer
	flight   *singleflight.Group // nil unless request coalescing is enabled

	mu    sync.Mutex
	store *Store
	// prefix is how many leading store entries are known to sit at their
	// server-side positions. Offset reads are answered only inside it.
	prefix      int
	statuses    *Entry[[]string]
	currentUser *domain.GitUser
	count       CountEstimate
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used to stamp and age entries.
func WithClock(clock domain.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithObserver registers an observer for hit/miss/gateway events.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// WithRequestCoalescing makes concurrent reads of the same id or the same
// page share one in-flight gateway call. Mutations are never coalesced.
func WithRequestCoalescing() Option {
	return func(c *Cache) {
		c.flight = &singleflight.Group{}
	}
}

// New creates a Cache in front of gateway.
func New(gateway domain.IssueGateway, opts ...Option) *Cache {
	c := &Cache{
		gateway:  gateway,
		clock:    domain.RealClock{},
		observer: nopObserver{},
		store:    NewStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetByID returns the issue with the given id. A cached entry answers
// immediately regardless of its age; otherwise the issue is fetched,
// merged and returned.
func (c *Cache) GetByID(ctx context.Context, id string) *Result[domain.Issue] {
	c.mu.Lock()
	e, ok := c.store.FindByID(id)
	c.mu.Unlock()
	if ok {
		c.observer.Hit(OpGetByID)
		return Resolved(e.Value().Clone())
	}

	c.observer.Miss(OpGetByID)
	return run(ctx, c, OpGetByID, "id:"+id, func(ctx context.Context) (domain.Issue, error) {
		res, err := c.gateway.FetchByID(ctx, id)
		if err != nil {
			return domain.Issue{}, &domain.GatewayError{Op: "fetch issue " + id, Err: err}
		}
		if res == nil || res.Issue == nil || res.Issue.ID == "" {
			return domain.Issue{}, fmt.Errorf("%w: fetch issue %s returned no issue", domain.ErrProtocolViolation, id)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		confirmed := c.store.leadingIDs(c.prefix)
		c.store.Upsert(*res.Issue, c.clock.Now())
		c.store.Sort()
		c.prefix = c.store.leadingRun(confirmed)
		c.setCurrentUser(res.CurrentUser)
		return res.Issue.Clone(), nil
	})
}

// GetPage returns the 1-based page of limit issues. Invalid arguments fail
// synchronously without touching the network.
func (c *Cache) GetPage(ctx context.Context, page, limit int) (*Result[[]domain.Issue], error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page number must be greater than zero, got %d", domain.ErrInvalidArgument, page)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: page limit must be greater than zero, got %d", domain.ErrInvalidArgument, limit)
	}

	offset := (page - 1) * limit
	end := offset + limit

	c.mu.Lock()
	issues, hit := c.lookupPage(offset, end)
	c.mu.Unlock()
	if hit {
		c.observer.Hit(OpGetPage)
		return Resolved(issues), nil
	}

	c.observer.Miss(OpGetPage)
	return c.refillPage(ctx, page, limit), nil
}

// lookupPage answers [offset,end) from local data when possible.
// The caller must hold c.mu.
func (c *Cache) lookupPage(offset, end int) ([]domain.Issue, bool) {
	now := c.clock.Now()
	countFresh := c.count.IsFresh(now)
	if countFresh && c.count.Value() > 0 && end > c.count.Value() {
		end = c.count.Value()
	}

	if end <= c.prefix {
		if end <= offset {
			// The window starts past the known end.
			return []domain.Issue{}, true
		}
		entries, err := c.store.Range(offset, end-offset)
		if err != nil {
			return nil, false
		}
		issues := make([]domain.Issue, 0, len(entries))
		for _, e := range entries {
			if e.IsStale(now) {
				return nil, false
			}
			issues = append(issues, e.Value().Clone())
		}
		return issues, true
	}

	if countFresh && offset > c.count.Value() {
		return []domain.Issue{}, true
	}
	return nil, false
}

// RefreshPage is GetPage without the local answer: the page is always
// fetched and merged.
func (c *Cache) RefreshPage(ctx context.Context, page, limit int) (*Result[[]domain.Issue], error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page number must be greater than zero, got %d", domain.ErrInvalidArgument, page)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: page limit must be greater than zero, got %d", domain.ErrInvalidArgument, limit)
	}
	c.observer.Miss(OpGetPage)
	return c.refillPage(ctx, page, limit), nil
}

// refillPage fetches a page, merges it and resolves with the server's page.
// A page starting inside the confirmed prefix extends it; a page past a gap
// does not.
func (c *Cache) refillPage(ctx context.Context, page, limit int) *Result[[]domain.Issue] {
	key := fmt.Sprintf("page:%d:%d", page, limit)
	return run(ctx, c, OpGetPage, key, func(ctx context.Context) ([]domain.Issue, error) {
		res, err := c.gateway.FetchPage(ctx, page, limit)
		if err != nil {
			return nil, &domain.GatewayError{Op: fmt.Sprintf("fetch page %d", page), Err: err}
		}
		if res == nil {
			return nil, fmt.Errorf("%w: fetch page %d returned no body", domain.ErrProtocolViolation, page)
		}
		for _, issue := range res.Issues {
			if issue.ID == "" {
				return nil, fmt.Errorf("%w: fetch page %d returned an issue without id", domain.ErrProtocolViolation, page)
			}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		now := c.clock.Now()
		c.count = c.count.Set(res.TotalCount, now)
		c.setCurrentUser(res.CurrentUser)
		confirmed := c.store.leadingIDs(c.prefix)
		if (page-1)*limit <= c.prefix {
			for _, issue := range res.Issues {
				confirmed[issue.ID] = struct{}{}
			}
		}
		for _, issue := range res.Issues {
			c.store.Upsert(issue, now)
		}
		c.store.Sort()
		c.prefix = c.store.leadingRun(confirmed)
		return domain.CloneIssues(res.Issues), nil
	})
}

// CreateIssue creates the issue through the gateway, then adds the
// server's version to the store and bumps the count estimate.
func (c *Cache) CreateIssue(ctx context.Context, issue domain.Issue) *Result[domain.Issue] {
	issue = issue.Clone()
	return run(ctx, c, OpCreate, "", func(ctx context.Context) (domain.Issue, error) {
		res, err := c.gateway.Create(ctx, issue)
		if err != nil {
			return domain.Issue{}, &domain.GatewayError{Op: "create issue", Err: err}
		}
		if res == nil || res.Issue == nil || res.Issue.ID == "" {
			return domain.Issue{}, fmt.Errorf("%w: create returned no issue", domain.ErrProtocolViolation)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.mergeCreated(*res.Issue, c.clock.Now())
		c.setCurrentUser(res.CurrentUser)
		return res.Issue.Clone(), nil
	})
}

// EditIssue edits the issue through the gateway. An update replaces the
// cached entry, which must exist; an implicit creation adds a new entry
// and bumps the count estimate.
func (c *Cache) EditIssue(ctx context.Context, issue domain.Issue) *Result[domain.Issue] {
	issue = issue.Clone()
	return run(ctx, c, OpEdit, "", func(ctx context.Context) (domain.Issue, error) {
		res, err := c.gateway.Edit(ctx, issue)
		if err != nil {
			return domain.Issue{}, &domain.GatewayError{Op: "edit issue " + issue.ID, Err: err}
		}
		if res == nil || res.Issue == nil || res.Issue.ID == "" {
			return domain.Issue{}, fmt.Errorf("%w: edit of %s returned no body", domain.ErrProtocolViolation, issue.ID)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		now := c.clock.Now()
		if res.WasUpdate {
			if _, ok := c.store.FindByID(res.Issue.ID); !ok {
				return domain.Issue{}, fmt.Errorf("%w: updated issue %s is not cached", domain.ErrProtocolViolation, res.Issue.ID)
			}
			c.store.Upsert(*res.Issue, now)
		} else {
			c.mergeCreated(*res.Issue, now)
		}
		c.setCurrentUser(res.CurrentUser)
		return res.Issue.Clone(), nil
	})
}

// StatusIndicators returns the server's status names, cached until stale.
func (c *Cache) StatusIndicators(ctx context.Context) *Result[[]string] {
	c.mu.Lock()
	e := c.statuses
	c.mu.Unlock()
	if e != nil && !e.IsStale(c.clock.Now()) {
		c.observer.Hit(OpStatusIndicators)
		return Resolved(slices.Clone(e.Value()))
	}

	c.observer.Miss(OpStatusIndicators)
	return run(ctx, c, OpStatusIndicators, "statuses", func(ctx context.Context) ([]string, error) {
		statuses, err := c.gateway.FetchStatusIndicators(ctx)
		if err != nil {
			return nil, &domain.GatewayError{Op: "fetch status indicators", Err: err}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		entry := NewEntry(slices.Clone(statuses), c.clock.Now())
		c.statuses = &entry
		return slices.Clone(statuses), nil
	})
}

// CurrentUser returns the user most recently reported by the server.
func (c *Cache) CurrentUser() (domain.GitUser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentUser == nil {
		return domain.GitUser{}, false
	}
	return *c.currentUser, true
}

// Len returns the number of cached issues.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Count returns the current count estimate.
func (c *Cache) Count() CountEstimate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// mergeCreated adds an issue the server just created and bumps the count.
// The issue joins the confirmed prefix only when that prefix already held
// the whole collection. The caller must hold c.mu.
func (c *Cache) mergeCreated(issue domain.Issue, now time.Time) {
	confirmed := c.store.leadingIDs(c.prefix)
	if c.count.IsFresh(now) && c.prefix >= c.count.Value() {
		confirmed[issue.ID] = struct{}{}
	}
	c.store.Upsert(issue, now)
	c.count = c.count.Increment(now)
	c.store.Sort()
	c.prefix = c.store.leadingRun(confirmed)
}

// setCurrentUser records u when present. The caller must hold c.mu.
func (c *Cache) setCurrentUser(u *domain.GitUser) {
	if u == nil {
		return
	}
	cu := *u
	c.currentUser = &cu
}

// run executes fn on its own goroutine and returns its Result. With
// coalescing enabled and a non-empty key, concurrent runs with the same
// key share one execution.
func run[T any](ctx context.Context, c *Cache, op Op, key string, fn func(context.Context) (T, error)) *Result[T] {
	r := newResult[T]()
	ctx = context.WithoutCancel(ctx)

	call := func() (T, error) {
		v, err := fn(ctx)
		c.observer.GatewayDone(op, err)
		return v, err
	}

	go func() {
		if c.flight == nil || key == "" {
			r.resolve(call())
			return
		}
		v, err, _ := c.flight.Do(key, func() (any, error) {
			return call()
		})
		if err != nil {
			var zero T
			r.resolve(zero, err)
			return
		}
		r.resolve(v.(T), nil)
	}()
	return r
}
