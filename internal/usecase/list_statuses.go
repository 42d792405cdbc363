package usecase

import "context"

// ListStatusesInput contains the parameters for listing status indicators.
type ListStatusesInput struct{}

// ListStatusesOutput contains the known status indicators.
type ListStatusesOutput struct {
	Statuses []string
	Fallback bool // True when the server could not be reached and defaults are shown
}

// ListStatuses is the use case for listing status indicators.
type ListStatuses struct {
	cache IssueCache
}

// NewListStatuses creates a new ListStatuses use case.
func NewListStatuses(cache IssueCache) *ListStatuses {
	return &ListStatuses{cache: cache}
}

// Execute returns the server's status indicators, or the defaults.
func (uc *ListStatuses) Execute(ctx context.Context, _ ListStatusesInput) (*ListStatusesOutput, error) {
	statuses, fallback := statusIndicators(ctx, uc.cache)
	return &ListStatusesOutput{Statuses: statuses, Fallback: fallback}, nil
}
