package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/testutil"
	"github.com/runoshun/git-issue/internal/usecase"
)

func TestShowConfig_Execute(t *testing.T) {
	t.Run("returns effective config and file info", func(t *testing.T) {
		// Setup
		manager := testutil.NewMockConfigManager()
		manager.RepoConfigInfo.Exists = true
		manager.RepoConfigInfo.Content = "[api]\nurl = \"http://issues.local/api/v1\"\n"
		cfg := domain.NewDefaultConfig()
		cfg.API.URL = "http://issues.local/api/v1"
		uc := usecase.NewShowConfig(manager, cfg)

		// Execute
		out, err := uc.Execute(context.Background(), usecase.ShowConfigInput{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "http://issues.local/api/v1", out.Effective.API.URL)
		assert.True(t, out.RepoConfig.Exists)
		assert.Equal(t, "/test/repo/.git-issue.toml", out.RepoConfig.Path)
		assert.False(t, out.GlobalConfig.Exists)
		assert.Equal(t, "/home/test/.config/git-issue/config.toml", out.GlobalConfig.Path)
	})

	t.Run("reflects later overrides", func(t *testing.T) {
		cfg := domain.NewDefaultConfig()
		uc := usecase.NewShowConfig(testutil.NewMockConfigManager(), cfg)
		cfg.Metrics.Textfile = "/tmp/issue.prom"

		out, err := uc.Execute(context.Background(), usecase.ShowConfigInput{})

		require.NoError(t, err)
		assert.Equal(t, "/tmp/issue.prom", out.Effective.Metrics.Textfile)
	})

	t.Run("no config", func(t *testing.T) {
		uc := usecase.NewShowConfig(testutil.NewMockConfigManager(), nil)

		_, err := uc.Execute(context.Background(), usecase.ShowConfigInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
