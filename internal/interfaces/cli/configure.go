package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/services"
)

// NewConfigureCommand creates the configure command
func NewConfigureCommand(container *CLIContainer) *cobra.Command {
	var configureCmd = &cobra.Command{
		Use:   "configure",
		Short: "Apply the remote configuration to the editor settings",
		Long: `Apply the remote configuration to the editor settings.

The remote location is read from the editor setting configured under
keys.remote_location. Only settings whose value differs are written.`,
	}

	configureCmd.AddCommand(NewConfigureRunCommand(container))
	configureCmd.AddCommand(NewConfigureDiffCommand(container))
	configureCmd.AddCommand(NewConfigureStatusCommand(container))

	return configureCmd
}

// NewConfigureRunCommand creates the run subcommand
func NewConfigureRunCommand(container *CLIContainer) *cobra.Command {
	var (
		output      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Re-apply the remote configuration now",
		Long: `Re-apply the remote configuration regardless of the version marker.

Examples:
  edsync configure run
  edsync configure run --interactive
  edsync configure run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if interactive {
				return runOutcomeView(cmd, container)
			}

			report := container.Configure.Run(cmd.Context())
			return render(cmd.OutOrStdout(), output, report, func(w io.Writer) {
				printReport(w, report)
			})
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show the outcomes in an interactive view")

	return cmd
}

// NewConfigureDiffCommand creates the diff subcommand
func NewConfigureDiffCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show which settings the next run would change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			changes := container.Configure.Diff(cmd.Context())
			return render(cmd.OutOrStdout(), output, changes, func(w io.Writer) {
				printChanges(w, changes)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

// NewConfigureStatusCommand creates the status subcommand
func NewConfigureStatusCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the version marker and configure state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			status := container.Configure.Status(cmd.Context())
			return render(cmd.OutOrStdout(), output, status, func(w io.Writer) {
				printStatus(w, status)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func printStatus(w io.Writer, status services.Status) {
	marker := status.Marker
	if !status.HasMarker {
		marker = "(none)"
	}
	location := status.Location
	if location == "" {
		location = "(not set)"
	}

	fmt.Fprintln(w, titleStyle.Render("Configure Status:"))
	fmt.Fprintf(w, "Current version: %s\n", status.Current)
	fmt.Fprintf(w, "Last configured: %s (%s)\n", marker, status.Ordering)
	fmt.Fprintf(w, "Due: %t\n", status.Due)
	fmt.Fprintf(w, "Ignored: %t\n", status.Ignored)
	fmt.Fprintf(w, "Remote location: %s\n", location)
	fmt.Fprintf(w, "State: %s\n", status.StateName)
}
