// Package domain contains core business entities and interfaces.
package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// GitUser identifies a git author. Email is the identity key.
type GitUser struct {
	Name  string `json:"user,omitempty"` // Display name (optional)
	Email string `json:"email"`          // Email address (identity)
}

// Equal reports whether both users share the same email.
func (u GitUser) Equal(o GitUser) bool {
	return u.Email == o.Email
}

// String returns "Name <email>" or just the email when no name is known.
func (u GitUser) String() string {
	if u.Name == "" {
		return u.Email
	}
	return u.Name + " <" + u.Email + ">"
}

// Issue represents an issue tracked by the server.
// ID is assigned by the server and never changes afterwards.
// Fields are ordered to minimize memory padding.
type Issue struct {
	Reporter    *GitUser  `json:"reporter,omitempty"`    // Reporter (optional)
	Assignee    *GitUser  `json:"assignee,omitempty"`    // Assignee (optional)
	ID          string    `json:"id"`                    // Server-assigned identity
	Date        string    `json:"date,omitempty"`        // Creation timestamp (ISO-8601)
	Status      string    `json:"status,omitempty"`      // Status indicator, e.g. "open"
	Summary     string    `json:"summary"`               // One-line summary (required)
	Description string    `json:"description,omitempty"` // Free-form description
	Subscribers []GitUser `json:"subscribers,omitempty"` // Ordered set of subscribers
}

// Clone returns a deep copy of the issue.
func (i Issue) Clone() Issue {
	out := i
	if i.Reporter != nil {
		r := *i.Reporter
		out.Reporter = &r
	}
	if i.Assignee != nil {
		a := *i.Assignee
		out.Assignee = &a
	}
	if i.Subscribers != nil {
		out.Subscribers = slices.Clone(i.Subscribers)
	}
	return out
}

// IsSubscribed returns true if the user is in the subscriber set.
func (i *Issue) IsSubscribed(u GitUser) bool {
	return slices.ContainsFunc(i.Subscribers, u.Equal)
}

// Subscribe adds the user to the subscriber set. Returns false if already subscribed.
func (i *Issue) Subscribe(u GitUser) bool {
	if u.Email == "" || i.IsSubscribed(u) {
		return false
	}
	i.Subscribers = append(i.Subscribers, u)
	return true
}

// Unsubscribe removes the user from the subscriber set. Returns false if not subscribed.
func (i *Issue) Unsubscribe(u GitUser) bool {
	n := len(i.Subscribers)
	i.Subscribers = slices.DeleteFunc(i.Subscribers, u.Equal)
	return len(i.Subscribers) != n
}

// CloneIssues deep-copies a slice of issues.
func CloneIssues(issues []Issue) []Issue {
	if issues == nil {
		return nil
	}
	out := make([]Issue, len(issues))
	for i := range issues {
		out[i] = issues[i].Clone()
	}
	return out
}

// CompareIssues orders issues ascending by ID.
func CompareIssues(a, b Issue) int {
	return CompareIssueIDs(a.ID, b.ID)
}

// CompareIssueIDs is the canonical total order over issue IDs.
// IDs of the form PREFIX-N sort first, by prefix and then numerically,
// so "ISSUE-9" sorts before "ISSUE-10". Other IDs follow, bytewise.
func CompareIssueIDs(a, b string) int {
	ap, an, aok := splitIssueID(a)
	bp, bn, bok := splitIssueID(b)
	switch {
	case aok && bok:
		if c := strings.Compare(ap, bp); c != 0 {
			return c
		}
		if c := cmp.Compare(an, bn); c != 0 {
			return c
		}
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

// splitIssueID splits "ISSUE-12" into ("ISSUE", 12, true).
func splitIssueID(id string) (string, uint64, bool) {
	idx := strings.LastIndexByte(id, '-')
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.ParseUint(id[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return id[:idx], n, true
}

// Comment represents a note attached to an issue.
// Fields are ordered to minimize memory padding.
type Comment struct {
	User    *GitUser `json:"user,omitempty"` // Author
	Comment string   `json:"comment"`        // Comment text
	Date    string   `json:"date,omitempty"` // Creation timestamp (ISO-8601)
	UUID    string   `json:"uuid,omitempty"` // Server-assigned identity
}
