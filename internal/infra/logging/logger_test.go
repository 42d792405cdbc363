package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-issue/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNew_Stderr(t *testing.T) {
	// Setup
	var buf bytes.Buffer
	l, err := New(domain.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	// Execute
	l.Slog().Info("dropped")
	l.Slog().Warn("request failed", "path", "/issues")

	// Assert
	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/issues")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "issue.log")
	var stderr bytes.Buffer

	l, err := New(domain.LogConfig{Level: "debug", File: path}, &stderr)
	require.NoError(t, err)
	l.Slog().Debug("request done", "status", 200)
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "request done")
	assert.Contains(t, string(content), "status=200")
	assert.Empty(t, stderr.String())
}

func TestNew_FileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issue.log")

	for _, msg := range []string{"first", "second"} {
		l, err := New(domain.LogConfig{File: path}, nil)
		require.NoError(t, err)
		l.Slog().Info(msg)
		require.NoError(t, l.Close())
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "first")
	assert.Contains(t, string(content), "second")
}

func TestLogger_CloseTwice(t *testing.T) {
	l := Discard()
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
