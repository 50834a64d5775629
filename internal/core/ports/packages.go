package ports

import (
	"context"

	"github.com/gbsl/edsync/internal/core/packages"
)

// PackageBus is the command surface of the companion component that owns the
// interpreter's package set.
type PackageBus interface {
	// IsInterpreterInstalled reports the interpreter status. An error means "not installed".
	IsInterpreterInstalled(ctx context.Context) (packages.InterpreterStatus, error)

	// ListInstalledPackages returns the validated list of installed packages
	ListInstalledPackages(ctx context.Context) (packages.List, error)

	// InstallOrUninstall runs a shell-style instruction such as
	// "install --user pylint" or "uninstall -y pep8".
	InstallOrUninstall(ctx context.Context, args string) error
}
