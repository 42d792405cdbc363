package domain

import "slices"

// Well-known status indicators.
const (
	StatusOpen       = "open"
	StatusClosed     = "closed"
	StatusInProgress = "in progress"
)

// DefaultStatusIndicators is the fallback set used when the server's
// list cannot be fetched.
func DefaultStatusIndicators() []string {
	return []string{StatusOpen, StatusClosed}
}

// ValidateStatus returns ErrInvalidStatus unless status is one of indicators.
func ValidateStatus(status string, indicators []string) error {
	if !slices.Contains(indicators, status) {
		return ErrInvalidStatus
	}
	return nil
}
