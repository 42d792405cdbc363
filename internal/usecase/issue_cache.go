// Package usecase contains the application use cases.
package usecase

import (
	"context"

	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/issuecache"
)

// IssueCache is the issue cache as used by the use cases.
type IssueCache interface {
	GetByID(ctx context.Context, id string) *issuecache.Result[domain.Issue]
	GetPage(ctx context.Context, page, limit int) (*issuecache.Result[[]domain.Issue], error)
	RefreshPage(ctx context.Context, page, limit int) (*issuecache.Result[[]domain.Issue], error)
	CreateIssue(ctx context.Context, issue domain.Issue) *issuecache.Result[domain.Issue]
	EditIssue(ctx context.Context, issue domain.Issue) *issuecache.Result[domain.Issue]
	StatusIndicators(ctx context.Context) *issuecache.Result[[]string]
	CurrentUser() (domain.GitUser, bool)
	Count() issuecache.CountEstimate
}

// Ensure issuecache.Cache implements IssueCache.
var _ IssueCache = (*issuecache.Cache)(nil)

// resolveCurrentUser prefers the user last reported by the server and falls
// back to the local git identity.
func resolveCurrentUser(cache IssueCache, identity domain.IdentityResolver) (domain.GitUser, error) {
	if u, ok := cache.CurrentUser(); ok && u.Email != "" {
		return u, nil
	}
	if identity == nil {
		return domain.GitUser{}, domain.ErrNoIdentity
	}
	u, err := identity.Current()
	if err != nil {
		return domain.GitUser{}, err
	}
	if u.Email == "" {
		return domain.GitUser{}, domain.ErrNoIdentity
	}
	return u, nil
}

// statusIndicators returns the server's status names, or the defaults when
// the server cannot be reached.
func statusIndicators(ctx context.Context, cache IssueCache) ([]string, bool) {
	statuses, err := cache.StatusIndicators(ctx).Await(ctx)
	if err != nil || len(statuses) == 0 {
		return domain.DefaultStatusIndicators(), true
	}
	return statuses, false
}
