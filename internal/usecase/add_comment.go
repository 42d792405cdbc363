package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/git-issue/internal/domain"
)

// AddCommentInput contains the parameters for adding a comment.
type AddCommentInput struct {
	IssueID string // Issue ID (required)
	Message string // Comment text (required)
}

// AddCommentOutput contains the result of adding a comment.
type AddCommentOutput struct {
	Comment domain.Comment // The created comment
}

// AddComment is the use case for adding a comment to an issue.
type AddComment struct {
	gateway domain.IssueGateway
}

// NewAddComment creates a new AddComment use case.
func NewAddComment(gateway domain.IssueGateway) *AddComment {
	return &AddComment{gateway: gateway}
}

// Execute adds a comment to an issue.
func (uc *AddComment) Execute(ctx context.Context, in AddCommentInput) (*AddCommentOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, domain.ErrEmptyComment
	}
	if in.IssueID == "" {
		return nil, fmt.Errorf("%w: issue id is required", domain.ErrInvalidArgument)
	}

	comment, err := uc.gateway.AddComment(ctx, in.IssueID, message)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &AddCommentOutput{Comment: *comment}, nil
}
