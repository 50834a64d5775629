package services

import "context"

// ActivationReport combines the package and configure steps of activation
type ActivationReport struct {
	Packages  PackageReport `json:"packages" yaml:"packages"`
	Configure Report        `json:"configure" yaml:"configure"`
}

// ActivationService runs the startup lifecycle: packages first, then the
// version-gated configure.
type ActivationService struct {
	packages  *PackageService
	configure *ConfigureService
}

// NewActivationService creates a new activation service
func NewActivationService(packages *PackageService, configure *ConfigureService) *ActivationService {
	return &ActivationService{packages: packages, configure: configure}
}

// Activate never fails; each step records its own outcome
func (s *ActivationService) Activate(ctx context.Context) ActivationReport {
	var report ActivationReport
	if s.packages != nil {
		report.Packages = s.packages.Ensure(ctx)
	}
	report.Configure = s.configure.Activate(ctx)
	return report
}
