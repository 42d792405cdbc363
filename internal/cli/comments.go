package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-issue/internal/app"
	"github.com/runoshun/git-issue/internal/usecase"
)

// newCommentsCommand creates the comments command for listing issue comments.
func newCommentsCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Page  int
		Limit int
	}

	cmd := &cobra.Command{
		Use:   "comments <id>",
		Short: "List comments of an issue",
		Long: `List the comments of an issue, oldest first, one page at a time.

Comments are always fetched from the server.

Examples:
  git-issue comments ISSUE-1
  git-issue comments ISSUE-1 --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ListCommentsUseCase().Execute(cmd.Context(), usecase.ListCommentsInput{
				IssueID: args[0],
				Page:    opts.Page,
				Limit:   opts.Limit,
			})
			if err != nil {
				return err
			}
			printComments(cmd.OutOrStdout(), out.Comments)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Comments per page (default 10)")

	return cmd
}

// newCommentCommand creates the comment command for adding a comment.
func newCommentCommand(c *app.Container) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "comment <id> [message]",
		Short: "Add a comment to an issue",
		Long: `Add a comment to an issue.

The message is taken from -m or from the second argument.

Examples:
  git-issue comment ISSUE-1 -m "Reproduced on staging"
  git-issue comment ISSUE-1 "Fixed in 1.4.2"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				if message != "" {
					return fmt.Errorf("message given twice: use either -m or the second argument")
				}
				message = args[1]
			}

			out, err := c.AddCommentUseCase().Execute(cmd.Context(), usecase.AddCommentInput{
				IssueID: args[0],
				Message: message,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added comment to %s", args[0])
			if out.Comment.Date != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " at %s", out.Comment.Date)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Comment text")

	return cmd
}
