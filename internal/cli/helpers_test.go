package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/runoshun/git-issue/internal/app"
	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/infra/restapi"
	"github.com/runoshun/git-issue/internal/infra/restapi/restapitest"
	"github.com/runoshun/git-issue/internal/testutil"
)

var alice = domain.GitUser{Name: "Alice", Email: "alice@example.com"}

// newTestContainer wires a container to an in-memory issue server.
func newTestContainer(t *testing.T) (*app.Container, *restapitest.Server) {
	t.Helper()

	server := restapitest.NewServer()
	ts, baseURL := server.Start()
	t.Cleanup(ts.Close)

	cfg := domain.NewDefaultConfig()
	cfg.API.URL = baseURL
	c := app.NewWithDeps(cfg,
		restapi.NewClient(baseURL),
		&testutil.MockIdentity{User: alice},
		domain.RealClock{},
		slog.New(slog.DiscardHandler),
	)
	return c, server
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, c *app.Container, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand(c, "test-version")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func seedIssues(server *restapitest.Server) {
	server.Seed(
		domain.Issue{ID: "ISSUE-1", Summary: "Login fails on Safari", Status: "open", Date: "2024-05-01T10:00:00Z",
			Reporter: &alice, Subscribers: []domain.GitUser{alice}},
		domain.Issue{ID: "ISSUE-2", Summary: "Typo in footer", Status: "closed", Date: "2024-05-02T10:00:00Z",
			Assignee: &domain.GitUser{Email: "bob@example.com"}},
		domain.Issue{ID: "ISSUE-10", Summary: "Slow search", Status: "in progress", Date: "2024-05-03T10:00:00Z"},
	)
}
