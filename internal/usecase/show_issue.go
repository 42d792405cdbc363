package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// ShowIssueInput contains the parameters for showing an issue.
type ShowIssueInput struct {
	ID           string // Issue ID (required)
	WithComments bool   // Also fetch the first page of comments
}

// ShowIssueOutput contains the result of showing an issue.
type ShowIssueOutput struct {
	Comments []domain.Comment
	Issue    domain.Issue
}

// ShowIssue is the use case for displaying issue details.
type ShowIssue struct {
	cache    IssueCache
	comments domain.IssueGateway
}

// NewShowIssue creates a new ShowIssue use case.
func NewShowIssue(cache IssueCache, comments domain.IssueGateway) *ShowIssue {
	return &ShowIssue{
		cache:    cache,
		comments: comments,
	}
}

// Execute retrieves and returns the issue details.
func (uc *ShowIssue) Execute(ctx context.Context, in ShowIssueInput) (*ShowIssueOutput, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("%w: issue id is required", domain.ErrInvalidArgument)
	}

	issue, err := uc.cache.GetByID(ctx, in.ID).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}

	out := &ShowIssueOutput{Issue: issue}
	if in.WithComments {
		comments, err := uc.comments.FetchComments(ctx, in.ID, 1, commentPageSize)
		if err != nil {
			return nil, fmt.Errorf("get comments: %w", err)
		}
		out.Comments = comments
	}
	return out, nil
}
