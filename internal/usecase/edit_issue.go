package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/git-issue/internal/domain"
)

// EditIssueInput contains the parameters for editing an issue.
// All fields except ID are optional. Only non-nil fields will be updated.
type EditIssueInput struct {
	Summary     *string // New summary (nil = no change)
	Description *string // New description (nil = no change)
	Status      *string // New status (nil = no change)
	Assignee    *string // New assignee; "" clears it (nil = no change)
	Reporter    *string // New reporter (nil = no change)
	ID          string  // Issue ID to edit (required)
}

// EditIssueOutput contains the result of editing an issue.
type EditIssueOutput struct {
	Issue domain.Issue // The issue as stored by the server
}

// EditIssue is the use case for editing an existing issue.
type EditIssue struct {
	cache IssueCache
}

// NewEditIssue creates a new EditIssue use case.
func NewEditIssue(cache IssueCache) *EditIssue {
	return &EditIssue{
		cache: cache,
	}
}

// Execute edits an issue with the given input.
func (uc *EditIssue) Execute(ctx context.Context, in EditIssueInput) (*EditIssueOutput, error) {
	if in.Summary == nil && in.Description == nil && in.Status == nil && in.Assignee == nil && in.Reporter == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}

	issue, err := uc.cache.GetByID(ctx, in.ID).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}

	if err := uc.apply(ctx, &issue, in); err != nil {
		return nil, err
	}

	edited, err := uc.cache.EditIssue(ctx, issue).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("edit issue: %w", err)
	}
	return &EditIssueOutput{Issue: edited}, nil
}

// apply patches issue with the non-nil fields of in.
func (uc *EditIssue) apply(ctx context.Context, issue *domain.Issue, in EditIssueInput) error {
	if in.Summary != nil {
		summary := strings.TrimSpace(*in.Summary)
		if summary == "" {
			return domain.ErrEmptySummary
		}
		issue.Summary = summary
	}

	if in.Description != nil {
		issue.Description = *in.Description
	}

	if in.Status != nil {
		status := strings.TrimSpace(*in.Status)
		statuses, _ := statusIndicators(ctx, uc.cache)
		if err := domain.ValidateStatus(status, statuses); err != nil {
			return fmt.Errorf("%w: %q", err, status)
		}
		issue.Status = status
	}

	if in.Reporter != nil {
		reporter, err := domain.ParseGitUser(*in.Reporter)
		if err != nil {
			return fmt.Errorf("reporter: %w", err)
		}
		if reporter == nil {
			return fmt.Errorf("reporter: %w: empty", domain.ErrInvalidEmail)
		}
		issue.Reporter = reporter
		issue.Subscribe(*reporter)
	}

	if in.Assignee != nil {
		assignee, err := domain.ParseGitUser(*in.Assignee)
		if err != nil {
			return fmt.Errorf("assignee: %w", err)
		}
		issue.Assignee = assignee
		if assignee != nil {
			issue.Subscribe(*assignee)
		}
	}
	return nil
}
