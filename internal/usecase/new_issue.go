package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// NewIssueInput contains the parameters for creating an issue.
type NewIssueInput struct {
	Summary     string // One-line summary (required)
	Description string // Free-form description (optional)
	Status      string // Status (optional, default "open")
	Reporter    string // "email" or "Name <email>" (optional, default current user)
	Assignee    string // "email" or "Name <email>" (optional)
}

// NewIssueOutput contains the created issue.
type NewIssueOutput struct {
	Issue domain.Issue
}

// NewIssue is the use case for creating a single issue.
type NewIssue struct {
	cache    IssueCache
	identity domain.IdentityResolver
}

// NewNewIssue creates a new NewIssue use case.
func NewNewIssue(cache IssueCache, identity domain.IdentityResolver) *NewIssue {
	return &NewIssue{
		cache:    cache,
		identity: identity,
	}
}

// Execute validates the input and creates the issue on the server.
func (uc *NewIssue) Execute(ctx context.Context, in NewIssueInput) (*NewIssueOutput, error) {
	draft := domain.IssueDraft{
		Summary:     in.Summary,
		Description: in.Description,
		Status:      in.Status,
		Reporter:    in.Reporter,
		Assignee:    in.Assignee,
	}

	issue, err := draftToIssue(ctx, uc.cache, uc.identity, draft)
	if err != nil {
		return nil, err
	}

	created, err := uc.cache.CreateIssue(ctx, issue).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &NewIssueOutput{Issue: created}, nil
}

// draftToIssue maps a draft with the current user as fallback reporter and
// checks its status against the server's status indicators.
func draftToIssue(ctx context.Context, cache IssueCache, identity domain.IdentityResolver, draft domain.IssueDraft) (domain.Issue, error) {
	var fallback *domain.GitUser
	if u, err := resolveCurrentUser(cache, identity); err == nil {
		fallback = &u
	}

	issue, err := draft.ToIssue(fallback)
	if err != nil {
		return domain.Issue{}, err
	}

	statuses, _ := statusIndicators(ctx, cache)
	if err := domain.ValidateStatus(issue.Status, statuses); err != nil {
		return domain.Issue{}, fmt.Errorf("%w: %q", err, issue.Status)
	}
	return issue, nil
}
