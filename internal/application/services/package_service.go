package services

import (
	"context"
	"fmt"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/packages"
	coreports "github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// PackageReport describes one package coordination run
type PackageReport struct {
	Skipped     bool     `json:"skipped" yaml:"skipped"`
	SkipReason  string   `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	Failed      bool     `json:"failed" yaml:"failed"`
	Interpreter string   `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	Installed   []string `json:"installed,omitempty" yaml:"installed,omitempty"`
	Uninstalled []string `json:"uninstalled,omitempty" yaml:"uninstalled,omitempty"`
}

// Package skip reasons
const (
	SkipIgnorePackages = "ignore_package_install"
	SkipNoInterpreter  = "interpreter_not_installed"
)

// PackageService keeps the interpreter's package set in shape
type PackageService struct {
	bus       coreports.PackageBus
	store     coreports.SettingsStore
	logger    ports.LoggingGateway
	ignoreKey string
	required  []string
	unwanted  []string
}

// NewPackageService creates a new package service
func NewPackageService(
	bus coreports.PackageBus,
	store coreports.SettingsStore,
	logger ports.LoggingGateway,
	ignoreKey string,
	required []string,
	unwanted []string,
) *PackageService {
	if required == nil {
		required = packages.DefaultRequired
	}
	return &PackageService{
		bus:       bus,
		store:     store,
		logger:    logger,
		ignoreKey: ignoreKey,
		required:  required,
		unwanted:  unwanted,
	}
}

// Ensure installs missing required packages and removes unwanted ones.
// It never returns an error; problems are reported through Failed or Skipped.
func (s *PackageService) Ensure(ctx context.Context) PackageReport {
	var report PackageReport

	if s.store != nil && flagSet(s.store, s.ignoreKey) {
		report.Skipped = true
		report.SkipReason = SkipIgnorePackages
		return report
	}

	status, ok := s.interpreter(ctx)
	if !ok {
		report.Skipped = true
		report.SkipReason = SkipNoInterpreter
		return report
	}
	report.Interpreter = status.Version

	installed, err := s.bus.ListInstalledPackages(ctx)
	if err != nil {
		s.logger.LogError(err, "failed to list installed packages", nil)
		report.Failed = true
		return report
	}

	if missing := packages.Missing(s.required, installed); len(missing) > 0 {
		if err := s.run(ctx, packages.InstallArgs(missing)); err != nil {
			report.Failed = true
		} else {
			report.Installed = missing
		}
	}

	if present := packages.Present(s.unwanted, installed); len(present) > 0 {
		if err := s.run(ctx, packages.UninstallArgs(present)); err != nil {
			report.Failed = true
		} else {
			report.Uninstalled = present
		}
	}

	return report
}

// Install installs pkgs with the platform flags
func (s *PackageService) Install(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages given")
	}
	if _, ok := s.interpreter(ctx); !ok {
		return settings.NewError(settings.KindPackage, "install", fmt.Errorf("interpreter is not installed"))
	}
	return s.run(ctx, packages.InstallArgs(pkgs))
}

// Uninstall removes pkgs without prompting
func (s *PackageService) Uninstall(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages given")
	}
	if _, ok := s.interpreter(ctx); !ok {
		return settings.NewError(settings.KindPackage, "uninstall", fmt.Errorf("interpreter is not installed"))
	}
	return s.run(ctx, packages.UninstallArgs(pkgs))
}

// List returns the installed packages
func (s *PackageService) List(ctx context.Context) (packages.List, error) {
	if _, ok := s.interpreter(ctx); !ok {
		return nil, settings.NewError(settings.KindPackage, "list", fmt.Errorf("interpreter is not installed"))
	}
	list, err := s.bus.ListInstalledPackages(ctx)
	if err != nil {
		return nil, settings.NewError(settings.KindPackage, "list", err)
	}
	return list, nil
}

// Required returns the configured required package set
func (s *PackageService) Required() []string {
	return append([]string(nil), s.required...)
}

func (s *PackageService) interpreter(ctx context.Context) (packages.InterpreterStatus, bool) {
	status, err := s.bus.IsInterpreterInstalled(ctx)
	if err != nil {
		s.logger.LogWarning("interpreter check failed, treating as not installed", map[string]interface{}{"error": err.Error()})
		return packages.NotInstalled, false
	}
	return status, status.Installed
}

func (s *PackageService) run(ctx context.Context, args string) error {
	if err := s.bus.InstallOrUninstall(ctx, args); err != nil {
		s.logger.LogError(err, "package command failed", map[string]interface{}{"args": args})
		return settings.NewError(settings.KindPackage, "pip", err)
	}
	s.logger.LogInfo("package command finished", map[string]interface{}{"args": args})
	return nil
}
