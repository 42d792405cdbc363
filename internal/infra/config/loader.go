// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/git-issue/internal/domain"
)

// Loader loads configuration from TOML files.
type Loader struct {
	repoRoot      string // Repository root holding .git-issue.toml (may be empty)
	globalConfDir string // Path to global config directory (e.g., ~/.config/git-issue)
}

// NewLoader creates a new Loader.
func NewLoader(repoRoot string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoRoot, globalConfDir string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalAppDir(configHome)
}

// Load returns the merged configuration (default <- global <- repo).
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	if l.repoRoot == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(domain.RepoRootConfigPath(l.repoRoot))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown section: %s", section)
			continue
		}
		switch section {
		case "api":
			for k, v := range m {
				switch k {
				case "url":
					if s, ok := v.(string); ok {
						res.API.URL = s
					}
				case "timeout":
					d, err := parseDuration(v)
					if err != nil {
						warn("invalid value for [api] timeout: %v", err)
						continue
					}
					res.API.Timeout = d
				case "rate_limit":
					f, ok := toFloat(v)
					if !ok || f < 0 {
						warn("invalid value for [api] rate_limit: %v", v)
						continue
					}
					res.API.RateLimit = f
				case "burst":
					n, ok := v.(int64)
					if !ok || n < 1 {
						warn("invalid value for [api] burst: %v", v)
						continue
					}
					res.API.Burst = int(n)
				default:
					warn("unknown key in [api]: %s", k)
				}
			}
		case "cache":
			for k, v := range m {
				switch k {
				case "page_size":
					n, ok := v.(int64)
					if !ok || n < 1 {
						warn("invalid value for [cache] page_size: %v", v)
						continue
					}
					res.Cache.PageSize = int(n)
				case "coalesce":
					if b, ok := v.(bool); ok {
						res.Cache.Coalesce = b
					}
				default:
					warn("unknown key in [cache]: %s", k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				case "file":
					if s, ok := v.(string); ok {
						res.Log.File = s
					}
				default:
					warn("unknown key in [log]: %s", k)
				}
			}
		case "metrics":
			for k, v := range m {
				switch k {
				case "textfile":
					if s, ok := v.(string); ok {
						res.Metrics.Textfile = s
					}
				default:
					warn("unknown key in [metrics]: %s", k)
				}
			}
		default:
			warn("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// parseDuration accepts a Go duration string or a number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return 0, err
		}
		if d <= 0 {
			return 0, fmt.Errorf("must be positive: %s", x)
		}
		return d, nil
	case int64:
		if x <= 0 {
			return 0, fmt.Errorf("must be positive: %d", x)
		}
		return time.Duration(x) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		API:      base.API,
		Cache:    base.Cache,
		Log:      base.Log,
		Metrics:  base.Metrics,
		Warnings: append([]string{}, base.Warnings...),
	}
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.API.URL != "" {
		result.API.URL = override.API.URL
	}
	if override.API.Timeout != 0 {
		result.API.Timeout = override.API.Timeout
	}
	if override.API.RateLimit != 0 {
		result.API.RateLimit = override.API.RateLimit
	}
	if override.API.Burst != 0 {
		result.API.Burst = override.API.Burst
	}
	if override.Cache.PageSize != 0 {
		result.Cache.PageSize = override.Cache.PageSize
	}
	if override.Cache.Coalesce {
		result.Cache.Coalesce = override.Cache.Coalesce
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.File != "" {
		result.Log.File = override.Log.File
	}
	if override.Metrics.Textfile != "" {
		result.Metrics.Textfile = override.Metrics.Textfile
	}

	return result
}
