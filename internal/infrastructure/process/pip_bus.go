package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/gbsl/edsync/internal/core/packages"
	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// PipBus implements ports.PackageBus by running pip through the interpreter
type PipBus struct {
	runner      Runner
	interpreter string
}

// NewPipBus creates a package bus for interpreter (e.g. "python3")
func NewPipBus(runner Runner, interpreter string) *PipBus {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &PipBus{runner: runner, interpreter: interpreter}
}

// IsInterpreterInstalled implements ports.PackageBus
func (b *PipBus) IsInterpreterInstalled(ctx context.Context) (packages.InterpreterStatus, error) {
	res, err := b.runner.Run(ctx, b.interpreter, "--version")
	if err != nil {
		return packages.NotInstalled, settings.NewError(settings.KindPackage, "interpreter check", err)
	}

	// Python 2 prints its version on stderr
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(res.Stderr))
	}
	return packages.InterpreterStatus{Installed: true, Version: parseVersion(out)}, nil
}

// ListInstalledPackages implements ports.PackageBus
func (b *PipBus) ListInstalledPackages(ctx context.Context) (packages.List, error) {
	res, err := b.runner.Run(ctx, b.interpreter, "-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, settings.NewError(settings.KindPackage, "pip list", err)
	}
	list, err := packages.ParseList(res.Stdout)
	if err != nil {
		return nil, settings.NewError(settings.KindPackage, "pip list", err)
	}
	return list, nil
}

// InstallOrUninstall implements ports.PackageBus
func (b *PipBus) InstallOrUninstall(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return settings.NewError(settings.KindPackage, "pip", fmt.Errorf("empty pip instruction"))
	}
	switch fields[0] {
	case "install", "uninstall":
	default:
		return settings.NewError(settings.KindPackage, "pip", fmt.Errorf("unsupported pip command %q", fields[0]))
	}

	argv := append([]string{"-m", "pip"}, fields...)
	if _, err := b.runner.Run(ctx, b.interpreter, argv...); err != nil {
		return settings.NewError(settings.KindPackage, "pip "+fields[0], err)
	}
	return nil
}

// parseVersion extracts "3.12.1" from "Python 3.12.1"
func parseVersion(out string) string {
	fields := strings.Fields(out)
	if len(fields) >= 2 && strings.EqualFold(fields[0], "python") {
		return fields[1]
	}
	return out
}

var _ ports.PackageBus = (*PipBus)(nil)
