// Package main is the entry point for the git-issue CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/git-issue/internal/app"
	"github.com/runoshun/git-issue/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(cwd, app.Options{
		Stderr:   os.Stderr,
		APIURL:   os.Getenv("GIT_ISSUE_API_URL"),
		LogLevel: os.Getenv("GIT_ISSUE_LOG_LEVEL"),
	})
	if err != nil {
		// A broken config file must not lock the user out of help or the template.
		return runWithoutContainer(ctx, args, fmt.Errorf("failed to initialize: %w", err))
	}
	defer func() {
		err = errors.Join(err, container.Close())
	}()

	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// runWithoutContainer runs the commands that need no configuration and
// returns initErr for everything else.
func runWithoutContainer(ctx context.Context, args []string, initErr error) error {
	if !canRunWithoutContainer(args) {
		return initErr
	}
	rootCmd := cli.NewRootCommand(nil, version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func canRunWithoutContainer(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "help", "completion":
		return true
	case "config":
		return len(args) > 1 && args[1] == "template"
	}
	for _, arg := range args {
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
