// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/runoshun/git-issue/internal/domain"
	"github.com/runoshun/git-issue/internal/infra/config"
	"github.com/runoshun/git-issue/internal/infra/gitident"
	"github.com/runoshun/git-issue/internal/infra/logging"
	"github.com/runoshun/git-issue/internal/infra/metrics"
	"github.com/runoshun/git-issue/internal/infra/restapi"
	"github.com/runoshun/git-issue/internal/issuecache"
	"github.com/runoshun/git-issue/internal/usecase"
)

// Options overrides parts of the loaded configuration.
type Options struct {
	Stderr      io.Writer // Destination for logs when no log file is configured
	APIURL      string    // Overrides [api] url
	MetricsFile string    // Overrides [metrics] textfile
	LogLevel    string    // Overrides [log] level
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Gateway       domain.IssueGateway
	Identity      domain.IdentityResolver
	Clock         domain.Clock
	ConfigManager domain.ConfigManager

	// Pointer fields
	Cache     *issuecache.Cache
	Metrics   *metrics.Collector
	Logger    *slog.Logger
	AppConfig *domain.Config
	logs      *logging.Logger

	RepoRoot string // Empty when running outside a git repository
}

// New creates a new Container for the repository containing dir.
// Running outside a git repository is allowed; only the global
// configuration is read then.
func New(dir string, opts Options) (*Container, error) {
	resolver, err := gitident.Open(dir)
	if err != nil && !errors.Is(err, domain.ErrNotGitRepository) {
		return nil, err
	}
	repoRoot := resolver.RepoRoot()

	appConfig, err := config.NewLoader(repoRoot).Load()
	if err != nil {
		return nil, err
	}
	applyOptions(appConfig, opts)

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logs, err := logging.New(appConfig.Log, stderr)
	if err != nil {
		return nil, err
	}
	logger := logs.Slog()

	gateway := restapi.NewClient(appConfig.API.URL,
		restapi.WithTimeout(appConfig.API.Timeout),
		restapi.WithRateLimit(appConfig.API.RateLimit, appConfig.API.Burst),
		restapi.WithLogger(logger),
	)

	collector := metrics.NewCollector()
	clock := domain.RealClock{}

	logger.Debug("container ready",
		"repo_root", repoRoot,
		"api_url", appConfig.API.URL,
		"coalesce", appConfig.Cache.Coalesce)

	return &Container{
		Gateway:       gateway,
		Identity:      resolver,
		Clock:         clock,
		ConfigManager: config.NewManager(repoRoot),
		Cache:         newCache(gateway, clock, collector, appConfig.Cache),
		Metrics:       collector,
		Logger:        logger,
		AppConfig:     appConfig,
		logs:          logs,
		RepoRoot:      repoRoot,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg *domain.Config, gateway domain.IssueGateway, identity domain.IdentityResolver, clock domain.Clock, logger *slog.Logger) *Container {
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	collector := metrics.NewCollector()
	return &Container{
		Gateway:   gateway,
		Identity:  identity,
		Clock:     clock,
		Cache:     newCache(gateway, clock, collector, cfg.Cache),
		Metrics:   collector,
		Logger:    logger,
		AppConfig: cfg,
	}
}

func newCache(gateway domain.IssueGateway, clock domain.Clock, observer issuecache.Observer, cfg domain.CacheConfig) *issuecache.Cache {
	opts := []issuecache.Option{
		issuecache.WithClock(clock),
		issuecache.WithObserver(observer),
	}
	if cfg.Coalesce {
		opts = append(opts, issuecache.WithRequestCoalescing())
	}
	return issuecache.New(gateway, opts...)
}

func applyOptions(cfg *domain.Config, opts Options) {
	if opts.APIURL != "" {
		cfg.API.URL = opts.APIURL
	}
	if opts.MetricsFile != "" {
		cfg.Metrics.Textfile = opts.MetricsFile
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
}

// Close flushes the metrics textfile, if configured, and closes the log file.
func (c *Container) Close() error {
	var errs []error
	if path := c.AppConfig.Metrics.Textfile; path != "" && c.Metrics != nil {
		if err := c.Metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	if c.logs != nil {
		errs = append(errs, c.logs.Close())
	}
	return errors.Join(errs...)
}

// PageSize returns the configured default page size.
func (c *Container) PageSize() int {
	return c.AppConfig.Cache.PageSize
}

// UseCase factory methods

// ListIssuesUseCase returns a new ListIssues use case.
func (c *Container) ListIssuesUseCase() *usecase.ListIssues {
	return usecase.NewListIssues(c.Cache, c.PageSize())
}

// ShowIssueUseCase returns a new ShowIssue use case.
func (c *Container) ShowIssueUseCase() *usecase.ShowIssue {
	return usecase.NewShowIssue(c.Cache, c.Gateway)
}

// NewIssueUseCase returns a new NewIssue use case.
func (c *Container) NewIssueUseCase() *usecase.NewIssue {
	return usecase.NewNewIssue(c.Cache, c.Identity)
}

// CreateIssuesFromFileUseCase returns a new CreateIssuesFromFile use case.
func (c *Container) CreateIssuesFromFileUseCase() *usecase.CreateIssuesFromFile {
	return usecase.NewCreateIssuesFromFile(c.Cache, c.Identity)
}

// EditIssueUseCase returns a new EditIssue use case.
func (c *Container) EditIssueUseCase() *usecase.EditIssue {
	return usecase.NewEditIssue(c.Cache)
}

// SubscribeUseCase returns a new Subscribe use case.
func (c *Container) SubscribeUseCase() *usecase.Subscribe {
	return usecase.NewSubscribe(c.Cache, c.Identity)
}

// ListCommentsUseCase returns a new ListComments use case.
func (c *Container) ListCommentsUseCase() *usecase.ListComments {
	return usecase.NewListComments(c.Gateway)
}

// AddCommentUseCase returns a new AddComment use case.
func (c *Container) AddCommentUseCase() *usecase.AddComment {
	return usecase.NewAddComment(c.Gateway)
}

// ListStatusesUseCase returns a new ListStatuses use case.
func (c *Container) ListStatusesUseCase() *usecase.ListStatuses {
	return usecase.NewListStatuses(c.Cache)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.AppConfig)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
