package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// ListIssuesInput contains the parameters for listing issues.
type ListIssuesInput struct {
	Page  int // 1-based page number
	Limit   int  // Issues per page (0 = default page size)
	Refresh bool // Skip the local answer and fetch from the server
}

// ListIssuesOutput contains one page of issues.
// Fields are ordered to minimize memory padding.
type ListIssuesOutput struct {
	Issues     []domain.Issue
	Page       int
	Limit      int
	Total      int  // Total number of issues on the server
	TotalKnown bool // False when the server never reported a count
}

// ListIssues is the use case for listing issues page by page.
type ListIssues struct {
	cache           IssueCache
	defaultPageSize int
}

// NewListIssues creates a new ListIssues use case.
func NewListIssues(cache IssueCache, defaultPageSize int) *ListIssues {
	if defaultPageSize < 1 {
		defaultPageSize = domain.DefaultPageSize
	}
	return &ListIssues{
		cache:           cache,
		defaultPageSize: defaultPageSize,
	}
}

// Execute returns the requested page.
func (uc *ListIssues) Execute(ctx context.Context, in ListIssuesInput) (*ListIssuesOutput, error) {
	page := in.Page
	if page == 0 {
		page = 1
	}
	limit := in.Limit
	if limit == 0 {
		limit = uc.defaultPageSize
	}

	get := uc.cache.GetPage
	if in.Refresh {
		get = uc.cache.RefreshPage
	}
	r, err := get(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	issues, err := r.Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	count := uc.cache.Count()
	return &ListIssuesOutput{
		Issues:     issues,
		Page:       page,
		Limit:      limit,
		Total:      count.Value(),
		TotalKnown: count.Known(),
	}, nil
}
