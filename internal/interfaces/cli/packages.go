package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/core/packages"
)

// NewPackagesCommand creates the packages command
func NewPackagesCommand(container *CLIContainer) *cobra.Command {
	var packagesCmd = &cobra.Command{
		Use:   "packages",
		Short: "Manage the interpreter packages the editor tooling relies on",
	}

	packagesCmd.AddCommand(NewPackagesEnsureCommand(container))
	packagesCmd.AddCommand(NewPackagesListCommand(container))
	packagesCmd.AddCommand(NewPackagesInstallCommand(container))
	packagesCmd.AddCommand(NewPackagesUninstallCommand(container))

	return packagesCmd
}

// NewPackagesEnsureCommand creates the ensure subcommand
func NewPackagesEnsureCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Install missing required packages and remove unwanted ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			report := container.Packages.Ensure(cmd.Context())
			return render(cmd.OutOrStdout(), output, report, func(w io.Writer) {
				printPackageReport(w, report)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

// NewPackagesListCommand creates the list subcommand
func NewPackagesListCommand(container *CLIContainer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages and the required set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			installed, err := container.Packages.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list packages: %w", err)
			}

			return render(cmd.OutOrStdout(), output, installed, func(w io.Writer) {
				printPackageList(w, installed, container.Packages.Required())
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

// NewPackagesInstallCommand creates the install subcommand
func NewPackagesInstallCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "install <package>...",
		Short: "Install packages with the interpreter's pip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Packages.Install(cmd.Context(), args); err != nil {
				return fmt.Errorf("failed to install packages: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed: %s\n", joinNames(args))
			return nil
		},
	}
}

// NewPackagesUninstallCommand creates the uninstall subcommand
func NewPackagesUninstallCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <package>...",
		Short: "Uninstall packages with the interpreter's pip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Packages.Uninstall(cmd.Context(), args); err != nil {
				return fmt.Errorf("failed to uninstall packages: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled: %s\n", joinNames(args))
			return nil
		},
	}
}

func printPackageList(w io.Writer, installed packages.List, required []string) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-30s %s", "PACKAGE", "VERSION")))
	for _, p := range installed {
		fmt.Fprintf(w, "%-30s %s\n", p.Package, p.Version)
	}

	if missing := packages.Missing(required, installed); len(missing) > 0 {
		fmt.Fprintln(w, failStyle.Render("Missing required: "+joinNames(missing)))
	} else {
		fmt.Fprintln(w, okStyle.Render("All required packages are installed"))
	}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
