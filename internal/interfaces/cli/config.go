package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/ports"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show the edsync configuration",
		Long: `Show the edsync configuration.

Values come from the config file, EDSYNC_* environment variables and
built-in defaults, in that order of precedence after flags.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			config := container.Config
			if config == nil {
				loaded, err := container.ConfigRepo.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				config = loaded
			}

			return render(cmd.OutOrStdout(), output, config, func(w io.Writer) {
				printConfig(w, config)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func printConfig(w io.Writer, config *ports.Configuration) {
	fmt.Fprintln(w, titleStyle.Render("Current Configuration:"))
	fmt.Fprintf(w, "User settings: %s\n", config.Settings.UserPath)
	fmt.Fprintf(w, "Workspace settings: %s\n", orNotSet(config.Settings.WorkspacePath))
	fmt.Fprintf(w, "Write scope: %s\n", config.Settings.Scope)
	fmt.Fprintf(w, "Remote location key: %s\n", config.Keys.RemoteLocation)
	fmt.Fprintf(w, "State DB: %s\n", config.State.Path)
	fmt.Fprintf(w, "Version manifest: %s\n", orNotSet(config.Version.ManifestPath))
	fmt.Fprintf(w, "Fetch timeout: %s (retries: %d)\n", config.Fetch.Timeout, config.Fetch.Retries)
	fmt.Fprintf(w, "Interpreter: %s\n", config.Packages.Interpreter)
	fmt.Fprintf(w, "Baseline: %t\n", config.Baseline.Enabled)
	fmt.Fprintf(w, "Log: %s/%s\n", config.Log.Level, config.Log.Format)
	fmt.Fprintf(w, "Debug: %t\n", config.Debug)
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s\n", container.ConfigRepo.GetConfigPath())
			return nil
		},
	}
}
