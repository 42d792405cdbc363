package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// commentPageSize is the number of comments fetched per page.
const commentPageSize = 10

// ListCommentsInput contains the parameters for listing comments.
type ListCommentsInput struct {
	IssueID string // Issue ID (required)
	Page    int    // 1-based page (0 = first page)
	Limit   int    // Comments per page (0 = default)
}

// ListCommentsOutput contains the result of listing comments.
type ListCommentsOutput struct {
	Comments []domain.Comment
}

// ListComments is the use case for listing the comments of an issue.
// Comments are not cached.
type ListComments struct {
	gateway domain.IssueGateway
}

// NewListComments creates a new ListComments use case.
func NewListComments(gateway domain.IssueGateway) *ListComments {
	return &ListComments{gateway: gateway}
}

// Execute fetches one page of comments.
func (uc *ListComments) Execute(ctx context.Context, in ListCommentsInput) (*ListCommentsOutput, error) {
	if in.IssueID == "" {
		return nil, fmt.Errorf("%w: issue id is required", domain.ErrInvalidArgument)
	}
	if in.Page < 0 || in.Limit < 0 {
		return nil, fmt.Errorf("%w: page and limit must not be negative", domain.ErrInvalidArgument)
	}
	page := max(in.Page, 1)
	limit := in.Limit
	if limit == 0 {
		limit = commentPageSize
	}

	comments, err := uc.gateway.FetchComments(ctx, in.IssueID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &ListCommentsOutput{Comments: comments}, nil
}
