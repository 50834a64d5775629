package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/services"
	"github.com/gbsl/edsync/internal/core/reconcile"
)

// NewActivateCommand creates the activate command
func NewActivateCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Run the startup sequence: packages, then the once-per-version configure",
		Long: `Run the startup sequence.

Required interpreter packages are installed first, then the remote
configuration is applied if this version has not been configured yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			report := container.Activation.Activate(cmd.Context())
			return render(cmd.OutOrStdout(), output, report, func(w io.Writer) {
				printPackageReport(w, report.Packages)
				printReport(w, report.Configure)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

// NewSyncCommand creates the sync command
func NewSyncCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass without touching the version marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			report := container.Configure.Sync(cmd.Context(), reconcile.TriggerManual)
			return render(cmd.OutOrStdout(), output, report, func(w io.Writer) {
				printReport(w, report)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func printPackageReport(w io.Writer, report services.PackageReport) {
	switch {
	case report.Skipped:
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Packages skipped (%s)", report.SkipReason)))
		return
	case report.Failed:
		fmt.Fprintln(w, failStyle.Render("Package coordination failed, see the log for details"))
	}
	if len(report.Installed) > 0 {
		fmt.Fprintf(w, "Installed: %s\n", joinNames(report.Installed))
	}
	if len(report.Uninstalled) > 0 {
		fmt.Fprintf(w, "Uninstalled: %s\n", joinNames(report.Uninstalled))
	}
	if !report.Failed && len(report.Installed) == 0 && len(report.Uninstalled) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Packages up to date (%s)", report.Interpreter)))
	}
}
