package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/usecase"
)

// printIssueList prints a page of issues in TSV format with a page footer.
func printIssueList(w io.Writer, out *usecase.ListIssuesOutput) {
	if len(out.Issues) == 0 {
		_, _ = fmt.Fprintf(w, "No issues on page %d\n", out.Page)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tASSIGNEE\tSUMMARY")
	for _, issue := range out.Issues {
		assignee := "-"
		if issue.Assignee != nil {
			assignee = issue.Assignee.Email
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", issue.ID, issue.Status, assignee, issue.Summary)
	}
	_ = tw.Flush()

	if out.TotalKnown && out.Limit > 0 {
		pages := max((out.Total+out.Limit-1)/out.Limit, 1)
		_, _ = fmt.Fprintf(w, "\nPage %d of %d (%d issues)\n", out.Page, pages, out.Total)
		return
	}
	_, _ = fmt.Fprintf(w, "\nPage %d\n", out.Page)
}

// printIssueDetails prints a single issue.
func printIssueDetails(w io.Writer, issue domain.Issue) {
	_, _ = fmt.Fprintf(w, "%s: %s\n\n", issue.ID, issue.Summary)
	_, _ = fmt.Fprintf(w, "Status:      %s\n", orDash(issue.Status))
	_, _ = fmt.Fprintf(w, "Date:        %s\n", orDash(issue.Date))
	_, _ = fmt.Fprintf(w, "Reporter:    %s\n", orDash(userString(issue.Reporter)))
	_, _ = fmt.Fprintf(w, "Assignee:    %s\n", orDash(userString(issue.Assignee)))

	subs := make([]string, 0, len(issue.Subscribers))
	for _, s := range issue.Subscribers {
		subs = append(subs, s.String())
	}
	_, _ = fmt.Fprintf(w, "Subscribers: %s\n", orDash(strings.Join(subs, ", ")))

	if issue.Description != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", issue.Description)
	}
}

// printComments prints comments separated by rules.
func printComments(w io.Writer, comments []domain.Comment) {
	if len(comments) == 0 {
		_, _ = fmt.Fprintln(w, "No comments")
		return
	}
	for i, c := range comments {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "--- %s", orDash(userString(c.User)))
		if c.Date != "" {
			_, _ = fmt.Fprintf(w, " (%s)", c.Date)
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, c.Comment)
	}
}

// formatIssueDraft renders issue in the Markdown draft format read by
// domain.ParseIssueDrafts.
func formatIssueDraft(issue domain.Issue) (string, error) {
	draft := domain.IssueDraft{
		Summary:  issue.Summary,
		Status:   issue.Status,
		Reporter: userString(issue.Reporter),
		Assignee: userString(issue.Assignee),
	}
	fm, err := yaml.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n")
	if issue.Description != "" {
		b.WriteString(issue.Description)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// draftChanges returns an edit input holding the draft fields that differ
// from issue. A blank reporter in the draft leaves the reporter unchanged.
func draftChanges(issue domain.Issue, draft domain.IssueDraft) usecase.EditIssueInput {
	in := usecase.EditIssueInput{ID: issue.ID}
	if s := strings.TrimSpace(draft.Summary); s != issue.Summary {
		in.Summary = &s
	}
	if draft.Description != issue.Description {
		d := draft.Description
		in.Description = &d
	}
	if s := strings.TrimSpace(draft.Status); s != "" && s != issue.Status {
		in.Status = &s
	}
	if r := strings.TrimSpace(draft.Reporter); r != "" && !sameUser(issue.Reporter, r) {
		in.Reporter = &r
	}
	if a := strings.TrimSpace(draft.Assignee); !sameUser(issue.Assignee, a) {
		in.Assignee = &a
	}
	return in
}

// sameUser reports whether s names the same user as u. Both empty counts as same.
func sameUser(u *domain.GitUser, s string) bool {
	parsed, err := domain.ParseGitUser(s)
	if err != nil {
		return false
	}
	if u == nil || parsed == nil {
		return u == nil && parsed == nil
	}
	return u.Equal(*parsed) && u.Name == parsed.Name
}

func userString(u *domain.GitUser) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
