package di

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/application/services"
	coreports "github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/reconcile"
	"github.com/gbsl/edsync/internal/core/settings"
	"github.com/gbsl/edsync/internal/core/version"
	"github.com/gbsl/edsync/internal/infrastructure/config"
	httpinfra "github.com/gbsl/edsync/internal/infrastructure/http"
	"github.com/gbsl/edsync/internal/infrastructure/logging"
	"github.com/gbsl/edsync/internal/infrastructure/metrics"
	"github.com/gbsl/edsync/internal/infrastructure/process"
	"github.com/gbsl/edsync/internal/infrastructure/settingsfile"
	"github.com/gbsl/edsync/internal/infrastructure/state"
	"github.com/gbsl/edsync/internal/interfaces/cli"
)

// retryBaseDelay is the first backoff step for remote fetches
const retryBaseDelay = 250 * time.Millisecond

// Container holds all application dependencies
type Container struct {
	// Configuration
	ConfigRepo *config.ViperConfigRepository
	Config     *ports.Configuration

	// Infrastructure
	Logger   *logging.ZerologGateway
	Notifier *logging.ConsoleNotifier
	Settings *settingsfile.Store
	State    *state.SQLiteStore
	Metrics  *metrics.Recorder

	// Application services
	ConfigureService  *services.ConfigureService
	PackageService    *services.PackageService
	DebugService      *services.DebugService
	ActivationService *services.ActivationService

	// CLI
	CLIContainer *cli.CLIContainer
}

// NewContainer creates the container. Components are built by Initialize
// once the command line is parsed.
func NewContainer() *Container {
	c := &Container{}
	c.CLIContainer = &cli.CLIContainer{MainContainer: c}
	return c
}

// Initialize loads the configuration and builds every component
func (c *Container) Initialize(configPath string, debug bool, stdout, stderr io.Writer) error {
	c.ConfigRepo = config.NewViperConfigRepository(configPath)

	appConfig, err := c.ConfigRepo.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		appConfig.Debug = true
		appConfig.Log.Level = "debug"
	}

	return c.initializeComponents(appConfig, stdout, stderr)
}

// NewContainerWithConfig builds a container from an already loaded configuration
func NewContainerWithConfig(appConfig *ports.Configuration, stdout, stderr io.Writer) (*Container, error) {
	c := NewContainer()
	c.ConfigRepo = config.NewViperConfigRepository("")
	if err := c.initializeComponents(appConfig, stdout, stderr); err != nil {
		return nil, err
	}
	return c, nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(appConfig *ports.Configuration, stdout, stderr io.Writer) error {
	c.Config = appConfig

	// 1. Logging and notifications
	c.Logger = logging.NewZerologGateway(stderr, appConfig.Log.Format, ports.ParseLogLevel(appConfig.Log.Level))
	c.Notifier = logging.NewConsoleNotifier(stdout, c.Logger)
	c.Metrics = metrics.NewRecorder()

	// 2. Settings files and persisted state
	scope, err := settings.ParseScope(appConfig.Settings.Scope)
	if err != nil {
		return err
	}
	c.Settings = settingsfile.NewStore(appConfig.Settings.UserPath, appConfig.Settings.WorkspacePath)

	if c.State != nil {
		_ = c.State.Close()
	}
	c.State, err = state.NewSQLiteStore(appConfig.State.Path)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}

	baseline, err := config.LoadBaseline(appConfig.Baseline)
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	// 3. Remote document source
	requester := httpinfra.NewStdHttpRequester(
		&http.Client{},
		appConfig.Fetch.Timeout,
		httpinfra.NewBackoffRetry(appConfig.Fetch.Retries, retryBaseDelay),
	)
	fetcher := httpinfra.NewRouter(
		httpinfra.NewFetcher(requester, appConfig.Fetch.UserAgent, appConfig.Fetch.Headers),
		httpinfra.FileFetcher{},
	)
	source := reconcile.NewSource(fetcher, c.Notifier, c.Logger, c.Metrics)

	// 4. Core services
	engine := reconcile.NewEngine(
		reconcile.WithScope(scope),
		reconcile.WithLogger(c.Logger),
		reconcile.WithRecorder(c.Metrics),
	)
	gate := version.NewGate(c.State, versionSource(appConfig), appConfig.State.MarkerKey)

	// 5. Application services
	c.ConfigureService = services.NewConfigureService(
		c.Settings,
		source,
		engine,
		gate,
		c.Notifier,
		c.Logger,
		appConfig.Keys,
		baseline,
	)
	c.PackageService = services.NewPackageService(
		process.NewPipBus(process.NewExecutor(), appConfig.Packages.Interpreter),
		c.Settings,
		c.Logger,
		appConfig.Keys.IgnorePackageInstall,
		appConfig.Packages.Required,
		appConfig.Packages.Uninstall,
	)
	c.DebugService = services.NewDebugService()
	c.ActivationService = services.NewActivationService(c.PackageService, c.ConfigureService)

	// 6. CLI container
	c.CLIContainer.Config = appConfig
	c.CLIContainer.ConfigRepo = c.ConfigRepo
	c.CLIContainer.Logger = c.Logger
	c.CLIContainer.Configure = c.ConfigureService
	c.CLIContainer.Packages = c.PackageService
	c.CLIContainer.Debug = c.DebugService
	c.CLIContainer.Activation = c.ActivationService
	c.CLIContainer.Settings = c.Settings
	c.CLIContainer.Metrics = c.Metrics
	c.CLIContainer.Notices = c.Notifier

	c.Logger.LogDebug("container initialized", map[string]interface{}{
		"config":   c.ConfigRepo.GetConfigPath(),
		"settings": c.Settings.Paths(),
		"scope":    scope.String(),
		"target":   c.Settings.Path(scope),
		"state":    appConfig.State.Path,
	})
	return nil
}

// versionSource reads the version from the manifest when one is configured,
// otherwise it uses the build version.
func versionSource(appConfig *ports.Configuration) coreports.VersionSource {
	if appConfig.Version.ManifestPath != "" {
		return state.NewManifestVersion(appConfig.Version.ManifestPath)
	}
	return state.StaticVersion(cli.Version)
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.State == nil {
		return nil
	}
	if err := c.State.Close(); err != nil {
		if c.Logger != nil {
			c.Logger.LogError(err, "failed to close state database", nil)
		}
		return err
	}
	c.State = nil
	return nil
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}
