package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// CreateIssuesFromFileInput contains the parameters for creating issues from a file.
type CreateIssuesFromFileInput struct {
	Content string // File content (Markdown with frontmatter)
	DryRun  bool   // If true, parse and validate without creating issues
}

// CreateIssuesFromFileOutput contains the result of creating issues from a file.
type CreateIssuesFromFileOutput struct {
	Issues []domain.Issue // Created issues (or issues that would be created in dry-run mode)
}

// CreateIssuesFromFile is the use case for creating issues from a file.
type CreateIssuesFromFile struct {
	cache    IssueCache
	identity domain.IdentityResolver
}

// NewCreateIssuesFromFile creates a new CreateIssuesFromFile use case.
func NewCreateIssuesFromFile(cache IssueCache, identity domain.IdentityResolver) *CreateIssuesFromFile {
	return &CreateIssuesFromFile{
		cache:    cache,
		identity: identity,
	}
}

// Execute validates every draft first and then creates the issues in file order.
// Creation stops at the first failure; issues created before it are returned.
func (uc *CreateIssuesFromFile) Execute(ctx context.Context, in CreateIssuesFromFileInput) (*CreateIssuesFromFileOutput, error) {
	drafts, err := domain.ParseIssueDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	issues := make([]domain.Issue, 0, len(drafts))
	for i, draft := range drafts {
		issue, err := draftToIssue(ctx, uc.cache, uc.identity, draft)
		if err != nil {
			return nil, fmt.Errorf("issue %d: %w", i+1, err)
		}
		issues = append(issues, issue)
	}

	if in.DryRun {
		return &CreateIssuesFromFileOutput{Issues: issues}, nil
	}

	created := make([]domain.Issue, 0, len(issues))
	for i, issue := range issues {
		c, err := uc.cache.CreateIssue(ctx, issue).Await(ctx)
		if err != nil {
			return &CreateIssuesFromFileOutput{Issues: created}, fmt.Errorf("create issue %d: %w", i+1, err)
		}
		created = append(created, c)
	}
	return &CreateIssuesFromFileOutput{Issues: created}, nil
}
