package domain

import (
	"context"
	"time"
)

// IssueGateway performs the remote calls the issue cache depends on.
// Transport details (HTTP, timeouts) belong to the implementation.
type IssueGateway interface {
	// FetchByID retrieves a single issue.
	FetchByID(ctx context.Context, id string) (*IssueResult, error)

	// FetchPage retrieves one page of issues together with the total count.
	// page is 1-based.
	FetchPage(ctx context.Context, page, limit int) (*IssuePage, error)

	// FetchStatusIndicators returns the status names known to the server.
	FetchStatusIndicators(ctx context.Context) ([]string, error)

	// Create creates an issue. The returned issue carries the server-assigned ID.
	Create(ctx context.Context, issue Issue) (*IssueResult, error)

	// Edit updates an issue, or creates it if the server does not know it.
	Edit(ctx context.Context, issue Issue) (*EditResult, error)

	// FetchComments retrieves one page of comments for an issue.
	FetchComments(ctx context.Context, issueID string, page, limit int) ([]Comment, error)

	// AddComment adds a comment to an issue.
	AddComment(ctx context.Context, issueID, text string) (*Comment, error)
}

// IssueResult is a single issue plus the user the server acted for.
type IssueResult struct {
	CurrentUser *GitUser
	Issue       *Issue
}

// IssuePage is one page of issues plus the server-reported total count.
// Fields are ordered to minimize memory padding.
type IssuePage struct {
	CurrentUser *GitUser
	Issues      []Issue
	TotalCount  int
}

// EditResult is the outcome of an edit.
// Issue is nil when the server answered without a body.
type EditResult struct {
	CurrentUser *GitUser
	Issue       *Issue
	WasUpdate   bool // false when the edit implicitly created the issue
}

// IdentityResolver resolves the local git user.
type IdentityResolver interface {
	// Current returns the configured git user. Returns ErrNoIdentity if unset.
	Current() (GitUser, error)
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig creates the repository config file from the template.
	InitRepoConfig() error

	// InitGlobalConfig creates the global config file from the template.
	InitGlobalConfig() error
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
