package domain

import (
	"bytes"
	_ "embed"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string      `toml:"-"`
	API      APIConfig     `toml:"api"`
	Log      LogConfig     `toml:"log"`
	Metrics  MetricsConfig `toml:"metrics"`
	Cache    CacheConfig   `toml:"cache"`
}

// APIConfig holds REST gateway settings from [api] section.
// Fields are ordered to minimize memory padding.
type APIConfig struct {
	URL       string        `toml:"url,omitempty"`        // Base URL of the issue API
	Timeout   time.Duration `toml:"timeout,omitempty"`    // Per-request timeout
	RateLimit float64       `toml:"rate_limit,omitempty"` // Requests per second (0 = unlimited)
	Burst     int           `toml:"burst,omitempty"`      // Rate limiter burst
}

// CacheConfig holds issue cache settings from [cache] section.
type CacheConfig struct {
	PageSize int  `toml:"page_size,omitempty"` // Default page size for list/browse
	Coalesce bool `toml:"coalesce,omitempty"`  // Share in-flight refills between callers
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
	File  string `toml:"file,omitempty"`  // Log file path (empty = stderr)
}

// MetricsConfig holds metrics settings from [metrics] section.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"` // Prometheus textfile written on exit
}

// Default configuration values.
const (
	DefaultAPIURL     = "http://localhost:5555/api/v1"
	DefaultAPITimeout = 10 * time.Second
	DefaultBurst      = 1
	DefaultPageSize   = 10
	DefaultLogLevel   = "info"
)

// Directory and file names for git-issue.
const (
	AppDirName         = "git-issue"       // Directory name under the config home
	ConfigFileName     = "config.toml"     // Global config file name
	RootConfigFileName = ".git-issue.toml" // Config file name in repository root
)

// RepoRootConfigPath returns the repo root config path.
func RepoRootConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, RootConfigFileName)
}

// GlobalAppDir returns the global git-issue directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalAppDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalAppDir(configHome), ConfigFileName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: DefaultAPITimeout,
			Burst:   DefaultBurst,
		},
		Cache: CacheConfig{
			PageSize: DefaultPageSize,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// RenderConfigTemplate renders the commented config template with cfg's values.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Parse(configTemplateContent)
	if err != nil {
		// The template is embedded; a parse error is a build defect.
		panic(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		panic(err)
	}
	return buf.String()
}
