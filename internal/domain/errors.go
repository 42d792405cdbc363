package domain

import "errors"

// Domain errors.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOutOfRange        = errors.New("offset out of range")
	ErrProtocolViolation = errors.New("gateway protocol violation")
	ErrGatewayFailure    = errors.New("gateway failure")
	ErrIssueNotFound     = errors.New("issue not found")
	ErrEmptySummary      = errors.New("summary cannot be empty")
	ErrEmptyComment      = errors.New("comment cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrEmptyFile         = errors.New("file is empty")
	ErrNoIssuesInFile    = errors.New("no issues found in file")
	ErrConfigExists      = errors.New("config file already exists")
	ErrNotGitRepository  = errors.New("not a git repository (or any of the parent directories)")
	ErrNoIdentity        = errors.New("current user is unknown (set git user.email)")
)

// GatewayError wraps a failure reported by the issue gateway.
// The original error is preserved and reachable through errors.Unwrap.
type GatewayError struct {
	Err error
	Op  string
}

// Error implements error.
func (e *GatewayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying gateway error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrGatewayFailure) match any GatewayError.
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayFailure
}
