package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gbsl/edsync/internal/application/ports"
	coreports "github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/reconcile"
	"github.com/gbsl/edsync/internal/core/settings"
	"github.com/gbsl/edsync/internal/core/version"
)

// ConfigureState tracks whether this process has configured the running version
type ConfigureState int

const (
	NotYetConfiguredThisVersion ConfigureState = iota
	ConfiguredThisVersion
)

func (s ConfigureState) String() string {
	if s == ConfiguredThisVersion {
		return "configured"
	}
	return "not_configured"
}

// Report describes one configure invocation
type Report struct {
	Trigger           string            `json:"trigger" yaml:"trigger"`
	Location          string            `json:"location,omitempty" yaml:"location,omitempty"`
	Outcomes          settings.Outcomes `json:"outcomes" yaml:"outcomes"`
	ReloadRecommended bool              `json:"reload_recommended" yaml:"reload_recommended"`
	Skipped           bool              `json:"skipped" yaml:"skipped"`
	SkipReason        string            `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	MarkerCommitted   bool              `json:"marker_committed" yaml:"marker_committed"`
	Version           string            `json:"version,omitempty" yaml:"version,omitempty"`
}

// Skip reasons
const (
	SkipIgnored      = "ignore_configuration"
	SkipUpToDate     = "up_to_date"
	SkipNotConcerned = "location_unchanged"
)

// Status summarizes the version gate without running a pass
type Status struct {
	Marker    string         `json:"marker" yaml:"marker"`
	HasMarker bool           `json:"has_marker" yaml:"has_marker"`
	Current   string         `json:"current" yaml:"current"`
	Ordering  string         `json:"ordering" yaml:"ordering"`
	Due       bool           `json:"due" yaml:"due"`
	Ignored   bool           `json:"ignore_configuration" yaml:"ignore_configuration"`
	Location  string         `json:"location" yaml:"location"`
	State     ConfigureState `json:"-" yaml:"-"`
	StateName string         `json:"state" yaml:"state"`
}

// ConfigureService runs reconciliation passes and keeps the version marker
type ConfigureService struct {
	store    coreports.SettingsStore
	source   *reconcile.Source
	engine   *reconcile.Engine
	gate     *version.Gate
	notifier coreports.Notifier
	logger   ports.LoggingGateway
	keys     ports.KeysConfig
	baseline *settings.Document

	mu    sync.Mutex
	state ConfigureState
}

// NewConfigureService creates a new configure service. baseline may be nil.
func NewConfigureService(
	store coreports.SettingsStore,
	source *reconcile.Source,
	engine *reconcile.Engine,
	gate *version.Gate,
	notifier coreports.Notifier,
	logger ports.LoggingGateway,
	keys ports.KeysConfig,
	baseline *settings.Document,
) *ConfigureService {
	return &ConfigureService{
		store:    store,
		source:   source,
		engine:   engine,
		gate:     gate,
		notifier: notifier,
		logger:   logger,
		keys:     keys,
		baseline: baseline,
	}
}

// State returns the in-process configure state
func (s *ConfigureService) State() ConfigureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate runs the version-gated automatic configure
func (s *ConfigureService) Activate(ctx context.Context) Report {
	ctx = reconcile.WithTrigger(ctx, reconcile.TriggerActivation)
	report := Report{Trigger: reconcile.TriggerActivation}

	decision := s.gate.Check(ctx)
	s.logGateFailures(decision)
	report.Version = decision.Current

	if !decision.Due {
		s.setState(ConfiguredThisVersion)
		report.Skipped = true
		report.SkipReason = SkipUpToDate
		return report
	}
	if s.ignored() {
		report.Skipped = true
		report.SkipReason = SkipIgnored
		return report
	}

	s.pass(ctx, &report, s.FirstConfigure(ctx))
	s.commitOnSuccess(ctx, &report, decision.Current)
	return report
}

// Run is the forced re-run: it reconciles regardless of the marker and
// always recommends a reload.
func (s *ConfigureService) Run(ctx context.Context) Report {
	ctx = reconcile.WithTrigger(ctx, reconcile.TriggerCommand)
	report := Report{Trigger: reconcile.TriggerCommand}

	if s.ignored() {
		report.Skipped = true
		report.SkipReason = SkipIgnored
		s.notifier.Report(fmt.Sprintf("Configuration is disabled by %s", s.keys.IgnoreConfiguration), coreports.SeverityInfo)
		return report
	}

	s.pass(ctx, &report, s.Remote(ctx))
	report.ReloadRecommended = true

	if failed := report.Outcomes.Failed(); len(failed) > 0 {
		s.notifier.Report(fmt.Sprintf("Configuration finished with errors: could not set %s", strings.Join(failed.Names(), ", ")), coreports.SeverityError)
	} else {
		s.notifier.Report(fmt.Sprintf("Configuration finished: %d setting(s) updated", report.Outcomes.UpdatedCount()), coreports.SeverityInfo)
	}
	return report
}

// SettingsChanged reacts to edits of the given setting keys. Only a change
// of the remote location starts a pass.
func (s *ConfigureService) SettingsChanged(ctx context.Context, keys []string) Report {
	ctx = reconcile.WithTrigger(ctx, reconcile.TriggerSettingsChange)
	report := Report{Trigger: reconcile.TriggerSettingsChange}

	if !contains(keys, s.keys.RemoteLocation) {
		report.Skipped = true
		report.SkipReason = SkipNotConcerned
		return report
	}
	if s.ignored() {
		report.Skipped = true
		report.SkipReason = SkipIgnored
		return report
	}

	current, err := s.gate.Current(ctx)
	if err != nil {
		s.logger.LogWarning("version read failed, using sentinel", map[string]interface{}{"error": err.Error(), "version": current})
	}
	report.Version = current

	s.pass(ctx, &report, s.Remote(ctx))
	s.commitOnSuccess(ctx, &report, current)
	return report
}

// Sync runs a plain pass with no marker bookkeeping
func (s *ConfigureService) Sync(ctx context.Context, trigger string) Report {
	if trigger == "" {
		trigger = reconcile.TriggerManual
	}
	ctx = reconcile.WithTrigger(ctx, trigger)
	report := Report{Trigger: trigger}

	if s.ignored() {
		report.Skipped = true
		report.SkipReason = SkipIgnored
		return report
	}
	s.pass(ctx, &report, s.Remote(ctx))
	report.ReloadRecommended = report.Outcomes.AnyUpdated()
	return report
}

// Diff returns the changes a sync would make, without writing
func (s *ConfigureService) Diff(ctx context.Context) []reconcile.Change {
	doc := s.Remote(ctx)
	changes := s.engine.Plan(doc, s.store)
	if changes == nil {
		changes = []reconcile.Change{}
	}
	return changes
}

// Status reports the version gate and escape hatch
func (s *ConfigureService) Status(ctx context.Context) Status {
	decision := s.gate.Check(ctx)
	state := s.State()
	return Status{
		Marker:    decision.Marker,
		HasMarker: decision.HasMarker,
		Current:   decision.Current,
		Ordering:  decision.Ordering(),
		Due:       decision.Due,
		Ignored:   s.ignored(),
		Location:  s.location(),
		State:     state,
		StateName: state.String(),
	}
}

// Remote returns the remote document, or an empty one when none is configured
// or it could not be loaded
func (s *ConfigureService) Remote(ctx context.Context) *settings.Document {
	return s.source.Load(ctx, s.location())
}

// FirstConfigure returns the baseline overlaid by the remote document. It is
// only applied by the version-gated Activate; every other pass leaves keys
// the remote document does not name alone.
func (s *ConfigureService) FirstConfigure(ctx context.Context) *settings.Document {
	return settings.Overlay(s.baseline, s.Remote(ctx))
}

func (s *ConfigureService) pass(ctx context.Context, report *Report, doc *settings.Document) {
	report.Location = s.location()
	report.Outcomes = s.engine.Reconcile(ctx, doc, s.store)

	s.logger.LogInfo("configure pass complete", map[string]interface{}{
		"trigger":   report.Trigger,
		"location":  report.Location,
		"attempted": len(report.Outcomes),
		"updated":   report.Outcomes.UpdatedCount(),
	})
}

func (s *ConfigureService) commitOnSuccess(ctx context.Context, report *Report, current string) {
	if !report.Outcomes.AnyUpdated() {
		return
	}
	report.ReloadRecommended = true

	if err := s.gate.Commit(ctx, current); err != nil {
		s.logger.LogError(err, "failed to persist version marker", map[string]interface{}{"key": s.gate.Key(), "version": current})
		return
	}
	report.MarkerCommitted = true
	s.setState(ConfiguredThisVersion)
}

func (s *ConfigureService) logGateFailures(d version.Decision) {
	if d.VersionErr != nil {
		s.logger.LogWarning("version read failed, using sentinel", map[string]interface{}{"error": d.VersionErr.Error(), "version": d.Current})
	}
	if d.MarkerErr != nil {
		s.logger.LogWarning("version marker read failed, treating as absent", map[string]interface{}{"error": d.MarkerErr.Error(), "key": s.gate.Key()})
	}
}

func (s *ConfigureService) setState(state ConfigureState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *ConfigureService) ignored() bool {
	return flagSet(s.store, s.keys.IgnoreConfiguration)
}

func (s *ConfigureService) location() string {
	if s.keys.RemoteLocation == "" {
		return ""
	}
	v, ok := s.store.Get(s.keys.RemoteLocation)
	if !ok {
		return ""
	}
	loc, _ := v.(string)
	return strings.TrimSpace(loc)
}

// flagSet reports whether a boolean setting is on. String "true" is accepted.
func flagSet(store coreports.SettingsStore, key string) bool {
	if key == "" {
		return false
	}
	v, ok := store.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

func contains(keys []string, key string) bool {
	if key == "" {
		return false
	}
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
