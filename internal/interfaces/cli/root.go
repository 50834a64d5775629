package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/application/services"
	"github.com/gbsl/edsync/internal/infrastructure/logging"
	"github.com/gbsl/edsync/internal/infrastructure/metrics"
	"github.com/gbsl/edsync/internal/infrastructure/settingsfile"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Config     *ports.Configuration
	ConfigRepo ports.ConfigurationRepository
	Logger     ports.LoggingGateway

	Configure  *services.ConfigureService
	Packages   *services.PackageService
	Debug      *services.DebugService
	Activation *services.ActivationService

	Settings *settingsfile.Store
	Metrics  *metrics.Recorder
	Notices  *logging.ConsoleNotifier

	MainContainer interface{} // Will be set to *di.Container, avoiding circular import
}

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "edsync",
		Short: "edsync - keep editor settings in line with a shared remote configuration",
		Long: `edsync reconciles the editor's settings.json against a remote JSON document.

Settings that differ from the remote document are written, everything else is
left alone. The automatic run happens once per tool version; the configure
command forces a re-run at any time.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigurationOverrides(cmd, container); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.config/edsync/config.yaml)")

	rootCmd.AddCommand(NewActivateCommand(container))
	rootCmd.AddCommand(NewConfigureCommand(container))
	rootCmd.AddCommand(NewSyncCommand(container))
	rootCmd.AddCommand(NewWatchCommand(container))
	rootCmd.AddCommand(NewPackagesCommand(container))
	rootCmd.AddCommand(NewDebugCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// applyConfigurationOverrides builds the components from the config file and
// flags. Containers assembled up front (tests) are used as they are.
func applyConfigurationOverrides(cmd *cobra.Command, container *CLIContainer) error {
	mainContainer, ok := container.MainContainer.(interface {
		Initialize(configPath string, debug bool, stdout, stderr io.Writer) error
	})
	if !ok {
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	debugMode, _ := cmd.Flags().GetBool("debug")

	return mainContainer.Initialize(configPath, debugMode, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(container *CLIContainer) int {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
