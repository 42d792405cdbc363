package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-issue/internal/domain"
)

// SubscribeInput contains the parameters for changing a subscription.
type SubscribeInput struct {
	ID          string // Issue ID (required)
	Unsubscribe bool   // Remove instead of add
}

// SubscribeOutput contains the result of changing a subscription.
// Fields are ordered to minimize memory padding.
type SubscribeOutput struct {
	User    domain.GitUser // The user whose subscription changed
	Issue   domain.Issue
	Changed bool // False when the user already had the requested state
}

// Subscribe is the use case for subscribing the current user to an issue.
type Subscribe struct {
	cache    IssueCache
	identity domain.IdentityResolver
}

// NewSubscribe creates a new Subscribe use case.
func NewSubscribe(cache IssueCache, identity domain.IdentityResolver) *Subscribe {
	return &Subscribe{
		cache:    cache,
		identity: identity,
	}
}

// Execute adds or removes the current user from the issue's subscribers.
// No edit is sent when nothing changes.
func (uc *Subscribe) Execute(ctx context.Context, in SubscribeInput) (*SubscribeOutput, error) {
	issue, err := uc.cache.GetByID(ctx, in.ID).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}

	user, err := resolveCurrentUser(uc.cache, uc.identity)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}

	var changed bool
	if in.Unsubscribe {
		changed = issue.Unsubscribe(user)
	} else {
		changed = issue.Subscribe(user)
	}
	if !changed {
		return &SubscribeOutput{Issue: issue, User: user}, nil
	}

	edited, err := uc.cache.EditIssue(ctx, issue).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("edit issue: %w", err)
	}
	return &SubscribeOutput{Issue: edited, User: user, Changed: true}, nil
}
