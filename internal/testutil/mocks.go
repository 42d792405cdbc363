// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/git-issue/internal/domain"
)

// MockClock is a test double for domain.Clock. It is safe for concurrent use.
type MockClock struct {
	NowTime time.Time
	mu      sync.Mutex
}

// NewMockClock creates a clock frozen at t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{NowTime: t}
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// ErrMockNotConfigured is returned by MockGateway for calls without a canned response.
var ErrMockNotConfigured = errors.New("mock: no response configured")

// PageCall records one FetchPage invocation.
type PageCall struct {
	Page  int
	Limit int
}

// MockGateway is a test double for domain.IssueGateway. It records every
// call and answers from canned responses. It is safe for concurrent use.
// Fields are ordered to minimize memory padding.
type MockGateway struct {
	// Canned responses
	ByID          map[string]*domain.IssueResult
	Pages         map[int]*domain.IssuePage
	CreateResult  *domain.IssueResult
	EditResult    *domain.EditResult
	Comments      map[string][]domain.Comment
	Statuses      []string
	FetchPageFunc func(page, limit int) (*domain.IssuePage, error)

	// Injected errors
	FetchByIDErr  error
	FetchPageErr  error
	StatusErr     error
	CreateErr     error
	EditErr       error
	CommentsErr   error
	AddCommentErr error

	// Gate, when set, blocks every call until a value is received or it is closed.
	Gate chan struct{}

	// Recorded calls
	fetchByIDCalls []string
	fetchPageCalls []PageCall
	created        []domain.Issue
	edited         []domain.Issue
	addedComments  []domain.Comment
	statusCalls    int

	mu sync.Mutex
}

// NewMockGateway creates a MockGateway with initialized maps.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		ByID:     make(map[string]*domain.IssueResult),
		Pages:    make(map[int]*domain.IssuePage),
		Comments: make(map[string][]domain.Comment),
	}
}

func (m *MockGateway) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchByID returns the canned result for id.
func (m *MockGateway) FetchByID(ctx context.Context, id string) (*domain.IssueResult, error) {
	m.mu.Lock()
	m.fetchByIDCalls = append(m.fetchByIDCalls, id)
	res, ok := m.ByID[id]
	err := m.FetchByIDErr
	m.mu.Unlock()

	if werr := m.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: issue %s", domain.ErrIssueNotFound, id)
	}
	return cloneIssueResult(res), nil
}

// FetchPage returns FetchPageFunc's answer, or the canned page.
func (m *MockGateway) FetchPage(ctx context.Context, page, limit int) (*domain.IssuePage, error) {
	m.mu.Lock()
	m.fetchPageCalls = append(m.fetchPageCalls, PageCall{Page: page, Limit: limit})
	res, ok := m.Pages[page]
	fn := m.FetchPageFunc
	err := m.FetchPageErr
	m.mu.Unlock()

	if werr := m.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(page, limit)
	}
	if !ok {
		return nil, fmt.Errorf("%w: page %d", ErrMockNotConfigured, page)
	}
	out := *res
	out.Issues = domain.CloneIssues(res.Issues)
	return &out, nil
}

// FetchStatusIndicators returns Statuses.
func (m *MockGateway) FetchStatusIndicators(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.statusCalls++
	statuses, err := m.Statuses, m.StatusErr
	m.mu.Unlock()

	if werr := m.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return append([]string(nil), statuses...), nil
}

// Create records the issue and returns CreateResult.
func (m *MockGateway) Create(ctx context.Context, issue domain.Issue) (*domain.IssueResult, error) {
	m.mu.Lock()
	m.created = append(m.created, issue.Clone())
	res, err := m.CreateResult, m.CreateErr
	m.mu.Unlock()

	if werr := m.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrMockNotConfigured
	}
	return cloneIssueResult(res), nil
}

// Edit records the issue and returns EditResult.
func (m *MockGateway) Edit(ctx context.Context, issue domain.Issue) (*domain.EditResult, error) {
	m.mu.Lock()
	m.edited = append(m.edited, issue.Clone())
	res, err := m.EditResult, m.EditErr
	m.mu.Unlock()

	if werr := m.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrMockNotConfigured
	}
	out := *res
	if res.Issue != nil {
		i := res.Issue.Clone()
		out.Issue = &i
	}
	return &out, nil
}

// FetchComments returns the comments for issueID, paged.
func (m *MockGateway) FetchComments(_ context.Context, issueID string, page, limit int) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommentsErr != nil {
		return nil, m.CommentsErr
	}
	all := m.Comments[issueID]
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+limit, len(all))
	return append([]domain.Comment(nil), all[start:end]...), nil
}

// AddComment appends a comment to issueID.
func (m *MockGateway) AddComment(_ context.Context, issueID, text string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddCommentErr != nil {
		return nil, m.AddCommentErr
	}
	c := domain.Comment{Comment: text, UUID: fmt.Sprintf("c-%d", len(m.addedComments)+1)}
	m.addedComments = append(m.addedComments, c)
	m.Comments[issueID] = append(m.Comments[issueID], c)
	return &c, nil
}

// FetchByIDCalls returns the ids passed to FetchByID, in call order.
func (m *MockGateway) FetchByIDCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetchByIDCalls...)
}

// FetchPageCalls returns the FetchPage invocations, in call order.
func (m *MockGateway) FetchPageCalls() []PageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PageCall(nil), m.fetchPageCalls...)
}

// StatusCalls returns how often FetchStatusIndicators was called.
func (m *MockGateway) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

// Created returns the issues passed to Create.
func (m *MockGateway) Created() []domain.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneIssues(m.created)
}

// Edited returns the issues passed to Edit.
func (m *MockGateway) Edited() []domain.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneIssues(m.edited)
}

// TotalCalls returns the number of cache-facing gateway calls.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetchByIDCalls) + len(m.fetchPageCalls) + m.statusCalls + len(m.created) + len(m.edited)
}

func cloneIssueResult(res *domain.IssueResult) *domain.IssueResult {
	out := *res
	if res.Issue != nil {
		i := res.Issue.Clone()
		out.Issue = &i
	}
	if res.CurrentUser != nil {
		u := *res.CurrentUser
		out.CurrentUser = &u
	}
	return &out
}

// MockIdentity is a test double for domain.IdentityResolver.
type MockIdentity struct {
	Err  error
	User domain.GitUser
}

// Current returns User, or Err when set.
func (m *MockIdentity) Current() (domain.GitUser, error) {
	if m.Err != nil {
		return domain.GitUser{}, m.Err
	}
	return m.User, nil
}

// Issues builds n issues with IDs ISSUE-<start>..ISSUE-<start+n-1>.
func Issues(start, n int) []domain.Issue {
	out := make([]domain.Issue, n)
	for i := range n {
		out[i] = domain.Issue{
			ID:      fmt.Sprintf("ISSUE-%d", start+i),
			Summary: fmt.Sprintf("Issue %d", start+i),
			Status:  domain.StatusOpen,
		}
	}
	return out
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigInfo{
			Path: "/test/repo/.git-issue.toml",
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.config/git-issue/config.toml",
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns InitRepoErr.
func (m *MockConfigManager) InitRepoConfig() error {
	m.InitRepoCalled = true
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns InitGlobalErr.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}
