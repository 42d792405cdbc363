package restapi

import "github.com/runoshun/git-issue/internal/domain"

// envelope wraps single-issue and issue-list responses.
type envelope[T any] struct {
	User    *domain.GitUser `json:"user"`
	Payload T               `json:"payload"`
}

// issueList is the payload of GET /issues.
type issueList struct {
	Issues []domain.Issue `json:"issues"`
	Count  int            `json:"count"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}
