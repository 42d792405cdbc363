// Package gitident resolves the local git user with go-git.
package gitident

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"github.com/runoshun/git-issue/internal/domain"
)

// Ensure Resolver implements domain.IdentityResolver.
var _ domain.IdentityResolver = (*Resolver)(nil)

// Resolver reads user.name and user.email from git configuration.
// Inside a repository the local config overrides the global one.
type Resolver struct {
	repo     *git.Repository // nil outside a repository
	repoRoot string
}

// Open finds the repository containing dir. Outside a repository it returns
// a Resolver backed by the global config together with an error wrapping
// domain.ErrNotGitRepository, so callers may keep using the result.
func Open(dir string) (*Resolver, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return &Resolver{}, fmt.Errorf("%w: %s", domain.ErrNotGitRepository, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	r := &Resolver{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		r.repoRoot = wt.Filesystem.Root()
	}
	return r, nil
}

// RepoRoot returns the working tree root, or "" outside a repository.
func (r *Resolver) RepoRoot() string {
	return r.repoRoot
}

// Current returns the configured git user.
func (r *Resolver) Current() (domain.GitUser, error) {
	cfg, err := r.config()
	if err != nil {
		return domain.GitUser{}, err
	}
	if cfg.User.Email == "" {
		return domain.GitUser{}, domain.ErrNoIdentity
	}
	return domain.GitUser{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

func (r *Resolver) config() (*config.Config, error) {
	if r.repo == nil {
		cfg, err := config.LoadConfig(config.GlobalScope)
		if err != nil {
			return nil, fmt.Errorf("load global git config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return nil, fmt.Errorf("load git config: %w", err)
	}
	return cfg, nil
}
