package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"gopkg.in/yaml.v3"
)

// IssueDraft holds raw, unvalidated issue fields from a form, flags or a file.
// ToIssue is the only way to turn it into an Issue.
// Fields are ordered to minimize memory padding.
type IssueDraft struct {
	Summary     string `yaml:"summary"`
	Status      string `yaml:"status"`
	Reporter    string `yaml:"reporter"`
	Assignee    string `yaml:"assignee"`
	Description string `yaml:"-"`
}

// ToIssue validates the draft and maps it to a new Issue.
// fallbackReporter is used when the draft names no reporter.
// Reporter and assignee are subscribed, in that order.
func (d IssueDraft) ToIssue(fallbackReporter *GitUser) (Issue, error) {
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return Issue{}, ErrEmptySummary
	}

	reporter, err := ParseGitUser(d.Reporter)
	if err != nil {
		return Issue{}, fmt.Errorf("reporter: %w", err)
	}
	if reporter == nil && fallbackReporter != nil {
		r := *fallbackReporter
		reporter = &r
	}

	assignee, err := ParseGitUser(d.Assignee)
	if err != nil {
		return Issue{}, fmt.Errorf("assignee: %w", err)
	}

	issue := Issue{
		Summary:     summary,
		Description: d.Description,
		Status:      strings.TrimSpace(d.Status),
		Reporter:    reporter,
		Assignee:    assignee,
	}
	if issue.Status == "" {
		issue.Status = StatusOpen
	}
	if reporter != nil {
		issue.Subscribe(*reporter)
	}
	if assignee != nil {
		issue.Subscribe(*assignee)
	}
	return issue, nil
}

// ParseGitUser parses "email" or "Name <email>". An empty string yields nil.
func ParseGitUser(s string) (*GitUser, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return &GitUser{Name: addr.Name, Email: addr.Address}, nil
}

// ParseIssueDrafts parses a markdown file containing one or more issues.
// Each issue starts with a YAML frontmatter block.
//
// Format:
//
//	---
//	summary: Login fails on Safari
//	status: open
//	assignee: bob@example.com
//	---
//	Description here.
//
//	---
//	summary: Second issue
//	---
func ParseIssueDrafts(content string) ([]IssueDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	blocks := splitDraftBlocks(content)
	if len(blocks) == 0 {
		return nil, ErrNoIssuesInFile
	}

	drafts := make([]IssueDraft, 0, len(blocks))
	for i, b := range blocks {
		draft, err := decodeDraftBlock(b)
		if err != nil {
			return nil, fmt.Errorf("issue %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// draftBlock is one frontmatter + body pair.
type draftBlock struct {
	frontmatter []string
	body        []string
}

// splitDraftBlocks splits content into frontmatter/body pairs.
// A "---" inside a body only opens a new block when the next line
// looks like a frontmatter key.
func splitDraftBlocks(content string) []draftBlock {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var blocks []draftBlock
	var cur *draftBlock
	inFrontmatter := false

	for i, line := range lines {
		switch {
		case line == "---" && cur == nil:
			cur = &draftBlock{}
			inFrontmatter = true
		case line == "---" && inFrontmatter:
			inFrontmatter = false
		case line == "---" && i+1 < len(lines) && isDraftKey(lines[i+1]):
			blocks = append(blocks, *cur)
			cur = &draftBlock{}
			inFrontmatter = true
		case cur == nil:
			// Text before the first frontmatter is ignored.
		case inFrontmatter:
			cur.frontmatter = append(cur.frontmatter, line)
		default:
			cur.body = append(cur.body, line)
		}
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

// isDraftKey reports whether line starts with a known frontmatter key.
func isDraftKey(line string) bool {
	for _, key := range []string{"summary:", "status:", "reporter:", "assignee:"} {
		if strings.HasPrefix(line, key) {
			return true
		}
	}
	return false
}

// decodeDraftBlock decodes the frontmatter strictly; unknown keys are errors.
func decodeDraftBlock(b draftBlock) (IssueDraft, error) {
	var draft IssueDraft
	if len(b.frontmatter) > 0 {
		dec := yaml.NewDecoder(bytes.NewBufferString(strings.Join(b.frontmatter, "\n")))
		dec.KnownFields(true)
		if err := dec.Decode(&draft); err != nil && !errors.Is(err, io.EOF) {
			return IssueDraft{}, fmt.Errorf("parse frontmatter: %w", err)
		}
	}
	if strings.TrimSpace(draft.Summary) == "" {
		return IssueDraft{}, ErrEmptySummary
	}
	draft.Description = strings.TrimSpace(strings.Join(b.body, "\n"))
	return draft, nil
}
