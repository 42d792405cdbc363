// Package cli provides the command-line interface for git-issue.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/git-issue/internal/app"
	"github.com/runoshun/git-issue/internal/tui"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupIssue = "issue"
)

// launchBrowseFunc launches the issue browser, allowing it to be mocked in tests.
var launchBrowseFunc = launchBrowse

// NewRootCommand creates the root command for git-issue.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var metricsFile string

	root := &cobra.Command{
		Use:   "issue",
		Short: "Issue tracker client",
		Long: `git-issue is a command-line client for a REST issue tracker.

Reads go through a local cache that answers repeated page and issue
lookups without a round trip while the data is fresh. Running without
a subcommand opens the interactive issue browser.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			if metricsFile != "" {
				c.AppConfig.Metrics.Textfile = metricsFile
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchBrowseFunc(c)
		},
	}

	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write cache metrics to this Prometheus textfile on exit")

	root.AddGroup(
		&cobra.Group{ID: groupIssue, Title: "Issue Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	issueCmds := []*cobra.Command{
		newListCommand(c),
		newShowCommand(c),
		newNewCommand(c),
		newEditCommand(c),
		newSubscribeCommand(c, false),
		newSubscribeCommand(c, true),
		newCommentsCommand(c),
		newCommentCommand(c),
		newStatusesCommand(c),
		newBrowseCommand(c),
	}
	for _, cmd := range issueCmds {
		cmd.GroupID = groupIssue
		root.AddCommand(cmd)
	}

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup
	root.AddCommand(configCmd)

	return root
}

// newBrowseCommand creates the browse command for the interactive issue browser.
func newBrowseCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse issues interactively",
		Long: `Open the interactive issue browser.

Pages through the issue list and opens issue details with comments.
This is the same as running git-issue without a subcommand.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchBrowseFunc(c)
		},
	}
}

// launchBrowse runs the issue browser full screen.
func launchBrowse(c *app.Container) error {
	if c == nil {
		return errNoContainer
	}
	model := tui.New(c.ListIssuesUseCase(), c.ShowIssueUseCase(), c.PageSize())
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
