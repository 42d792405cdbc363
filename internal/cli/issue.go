package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-issue/internal/app"
	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/usecase"
)

// newListCommand creates the list command for listing issues.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Page    int
		Limit   int
		JSON    bool
		Refresh bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues",
		Long: `Display one page of issues in ID order.

Output format is tab-separated with columns:
  ID, STATUS, ASSIGNEE, SUMMARY

Repeated reads of a page are answered from the local cache while it is fresh.

Examples:
  # First page with the configured page size
  git-issue list

  # Third page of 20 issues
  git-issue list --page 3 --limit 20

  # Machine-readable output
  git-issue list --json

  # Ignore the cached copy
  git-issue list --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListIssuesUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListIssuesInput{
				Page:    opts.Page,
				Limit:   opts.Limit,
				Refresh: opts.Refresh,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), out.Issues)
			}
			printIssueList(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Issues per page (default from [cache] page_size)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Fetch the page from the server even when cached")

	return cmd
}

// newShowCommand creates the show command for displaying an issue.
func newShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Comments bool
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display issue details",
		Long: `Display detailed information about an issue.

Output includes the summary, status, date, reporter, assignee,
subscribers and description. Use --comments to include the first
page of comments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ShowIssueUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowIssueInput{
				ID:           args[0],
				WithComments: opts.Comments,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Comments []domain.Comment `json:"comments,omitempty"`
					domain.Issue
				}{Issue: out.Issue, Comments: out.Comments})
			}
			printIssueDetails(cmd.OutOrStdout(), out.Issue)
			if opts.Comments {
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				printComments(cmd.OutOrStdout(), out.Comments)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Comments, "comments", false, "Include comments")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

// newNewCommand creates the new command for creating issues.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Summary     string
		Description string
		Status      string
		Reporter    string
		Assignee    string
		From        string
		DryRun      bool
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new issue",
		Long: `Create a new issue on the server.

The reporter defaults to the current user (as reported by the server,
or user.email from git config). Reporter and assignee are subscribed.

Examples:
  # Create an issue
  git-issue new --summary "Login fails on Safari"

  # Create an assigned issue with a description
  git-issue new --summary "Crash on start" --assignee "Bob <bob@example.com>" \
    --description "Steps to reproduce..."

  # Create issues from a file (multiple issues supported)
  git-issue new --from issues.md

  # Preview issues from a file without creating
  git-issue new --from issues.md --dry-run

File format for --from:
  ---
  summary: Login fails on Safari
  assignee: bob@example.com
  ---
  Description here.

  ---
  summary: Typo in footer
  status: closed
  ---`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.From != "" {
				return createIssuesFromFile(cmd, c, opts.From, opts.DryRun)
			}
			if opts.DryRun {
				return fmt.Errorf("--dry-run requires --from")
			}
			if opts.Summary == "" {
				return fmt.Errorf("required flag(s) \"summary\" not set")
			}

			uc := c.NewIssueUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.NewIssueInput{
				Summary:     opts.Summary,
				Description: opts.Description,
				Status:      opts.Status,
				Reporter:    opts.Reporter,
				Assignee:    opts.Assignee,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created issue %s\n", out.Issue.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Summary, "summary", "s", "", "One-line summary (required unless --from is used)")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Issue description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Status (default: open)")
	cmd.Flags().StringVar(&opts.Reporter, "reporter", "", "Reporter as email or \"Name <email>\" (default: current user)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee as email or \"Name <email>\"")
	cmd.Flags().StringVar(&opts.From, "from", "", "Create issues from a Markdown file (- for stdin)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview issues without creating (requires --from)")

	return cmd
}

// createIssuesFromFile creates issues from a Markdown file.
func createIssuesFromFile(cmd *cobra.Command, c *app.Container, filePath string, dryRun bool) error {
	content, err := readInput(cmd, filePath)
	if err != nil {
		return err
	}

	uc := c.CreateIssuesFromFileUseCase()
	out, err := uc.Execute(cmd.Context(), usecase.CreateIssuesFromFileInput{
		Content: content,
		DryRun:  dryRun,
	})
	if out == nil {
		return err
	}

	w := cmd.OutOrStdout()
	if dryRun {
		_, _ = fmt.Fprintln(w, "Dry run - issues that would be created:")
		_, _ = fmt.Fprintln(w, "")
	}

	for i, issue := range out.Issues {
		if dryRun {
			_, _ = fmt.Fprintf(w, "Issue %d:\n", i+1)
		} else {
			_, _ = fmt.Fprintf(w, "Created issue %s:\n", issue.ID)
		}
		_, _ = fmt.Fprintf(w, "  Summary: %s\n", issue.Summary)
		_, _ = fmt.Fprintf(w, "  Status: %s\n", issue.Status)
		if issue.Assignee != nil {
			_, _ = fmt.Fprintf(w, "  Assignee: %s\n", issue.Assignee)
		}
		if issue.Description != "" {
			_, _ = fmt.Fprintf(w, "  Description: %s\n", previewLine(issue.Description, 50))
		}
		if i < len(out.Issues)-1 {
			_, _ = fmt.Fprintln(w, "")
		}
	}

	if !dryRun {
		_, _ = fmt.Fprintf(w, "\nCreated %d issue(s)\n", len(out.Issues))
	}
	return err
}

// newEditCommand creates the edit command for editing issues.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Summary     string
		Description string
		Status      string
		Assignee    string
		Reporter    string
		From        string
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit issue information",
		Long: `Edit an existing issue.

If no flags are provided, the issue is opened in the user's $EDITOR using
the same Markdown format as 'new --from'. Only changed fields are sent.

The creation date never changes.

Examples:
  # Open issue in editor
  git-issue edit ISSUE-1

  # Change status
  git-issue edit ISSUE-1 --status closed

  # Reassign
  git-issue edit ISSUE-1 --assignee carol@example.com

  # Remove the assignee
  git-issue edit ISSUE-1 --assignee ""

  # Edit from a file
  git-issue edit ISSUE-1 --from issue.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if opts.From != "" {
				content, err := readInput(cmd, opts.From)
				if err != nil {
					return err
				}
				return editIssueFromDraft(cmd, c, id, content)
			}

			input := usecase.EditIssueInput{ID: id}
			flags := cmd.Flags()
			if flags.Changed("summary") {
				input.Summary = &opts.Summary
			}
			if flags.Changed("description") {
				input.Description = &opts.Description
			}
			if flags.Changed("status") {
				input.Status = &opts.Status
			}
			if flags.Changed("assignee") {
				input.Assignee = &opts.Assignee
			}
			if flags.Changed("reporter") {
				input.Reporter = &opts.Reporter
			}

			if input.Summary == nil && input.Description == nil && input.Status == nil &&
				input.Assignee == nil && input.Reporter == nil {
				return editIssueWithEditor(cmd, c, id)
			}

			out, err := c.EditIssueUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated issue %s\n", out.Issue.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Summary, "summary", "s", "", "New summary")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "New assignee (empty to remove)")
	cmd.Flags().StringVar(&opts.Reporter, "reporter", "", "New reporter")
	cmd.Flags().StringVar(&opts.From, "from", "", "Read the new fields from a Markdown file (- for stdin)")

	return cmd
}

// editIssueWithEditor opens the issue as a Markdown draft in $EDITOR.
func editIssueWithEditor(cmd *cobra.Command, c *app.Container, id string) error {
	show, err := c.ShowIssueUseCase().Execute(cmd.Context(), usecase.ShowIssueInput{ID: id})
	if err != nil {
		return err
	}

	markdown, err := formatIssueDraft(show.Issue)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp("", "git-issue-*.md")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, writeErr := tmpFile.WriteString(markdown); writeErr != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if editorErr := openEditorFunc(tmpPath); editorErr != nil {
		return editorErr
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to read edited file: %w", err)
	}
	if string(edited) == markdown {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes made")
		return nil
	}
	return editIssueFromDraft(cmd, c, id, string(edited))
}

// editIssueFromDraft applies the fields of a single-issue draft that differ
// from the current issue.
func editIssueFromDraft(cmd *cobra.Command, c *app.Container, id, content string) error {
	drafts, err := domain.ParseIssueDrafts(content)
	if err != nil {
		return err
	}
	if len(drafts) != 1 {
		return fmt.Errorf("%w: expected one issue, found %d", domain.ErrInvalidArgument, len(drafts))
	}

	show, err := c.ShowIssueUseCase().Execute(cmd.Context(), usecase.ShowIssueInput{ID: id})
	if err != nil {
		return err
	}

	input := draftChanges(show.Issue, drafts[0])
	out, err := c.EditIssueUseCase().Execute(cmd.Context(), input)
	if errors.Is(err, domain.ErrNoFieldsToUpdate) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes made")
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated issue %s\n", out.Issue.ID)
	return nil
}

// newSubscribeCommand creates the subscribe or unsubscribe command.
func newSubscribeCommand(c *app.Container, unsubscribe bool) *cobra.Command {
	use, short, verb := "subscribe <id>", "Subscribe to an issue", "Subscribed"
	if unsubscribe {
		use, short, verb = "unsubscribe <id>", "Unsubscribe from an issue", "Unsubscribed"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + ` as the current user.

The current user is the one reported by the server, or user.email from
git config when the server has not reported one yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.SubscribeUseCase().Execute(cmd.Context(), usecase.SubscribeInput{
				ID:          args[0],
				Unsubscribe: unsubscribe,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case out.Changed:
				_, _ = fmt.Fprintf(w, "%s %s to %s\n", verb, out.User.Email, out.Issue.ID)
			case unsubscribe:
				_, _ = fmt.Fprintf(w, "%s is not subscribed to %s\n", out.User.Email, out.Issue.ID)
			default:
				_, _ = fmt.Fprintf(w, "%s is already subscribed to %s\n", out.User.Email, out.Issue.ID)
			}
			return nil
		},
	}
}

// newStatusesCommand creates the statuses command.
func newStatusesCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List status indicators",
		Long:  `List the status values the server accepts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListStatusesUseCase().Execute(cmd.Context(), usecase.ListStatusesInput{})
			if err != nil {
				return err
			}
			if out.Fallback {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: server status list unavailable, showing defaults")
			}
			for _, s := range out.Statuses {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// previewLine returns the first line of s, cut to n runes.
func previewLine(s string, n int) string {
	lines := strings.Split(s, "\n")
	preview := lines[0]
	if r := []rune(preview); len(r) > n {
		preview = string(r[:n]) + "..."
	}
	if len(lines) > 1 {
		preview += " ..."
	}
	return preview
}
