package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/services"
)

// NewDebugCommand creates the debug command
func NewDebugCommand(container *CLIContainer) *cobra.Command {
	var debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Generate debug launch configurations",
	}

	debugCmd.AddCommand(newLaunchCommand(container, "current-file", services.LaunchCurrentFile, false))
	debugCmd.AddCommand(newLaunchCommand(container, "stop-at-entry", services.LaunchStopAtEntry, true))

	return debugCmd
}

func newLaunchCommand(container *CLIContainer, use, name string, stopOnEntry bool) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   use + " <file>",
		Short: fmt.Sprintf("Launch configuration %q for a file", name),
		Long: fmt.Sprintf(`Print the %q launch configuration for a file, or merge it
into a launch.json with --write.

Examples:
  edsync debug %s main.py
  edsync debug %s main.py --write .vscode/launch.json`, name, use, use),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Debug.Launch(args[0], stopOnEntry)

			if writePath == "" {
				return render(cmd.OutOrStdout(), outputJSON, cfg, nil)
			}
			if err := container.Debug.WriteLaunch(writePath, cfg); err != nil {
				return fmt.Errorf("failed to write launch configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %q to %s\n", cfg.Name, writePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "Merge the configuration into this launch.json")
	return cmd
}
