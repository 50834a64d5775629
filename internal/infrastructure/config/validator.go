package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// ConfigValidator validates configuration values
type ConfigValidator struct {
	schedules cron.Parser
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		schedules: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Validate checks a whole configuration and returns the first problem
func (v *ConfigValidator) Validate(cfg *ports.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	checks := []struct {
		field string
		err   error
	}{
		{"settings.user_path", v.ValidatePath(cfg.Settings.UserPath)},
		{"settings.scope", v.ValidateScope(cfg.Settings.Scope)},
		{"keys.remote_location", v.ValidateSettingKey(cfg.Keys.RemoteLocation)},
		{"keys.ignore_configuration", v.ValidateSettingKey(cfg.Keys.IgnoreConfiguration)},
		{"keys.ignore_package_install", v.ValidateSettingKey(cfg.Keys.IgnorePackageInstall)},
		{"state.path", v.ValidatePath(cfg.State.Path)},
		{"state.marker_key", v.ValidateSettingKey(cfg.State.MarkerKey)},
		{"fetch.timeout", v.ValidateTimeout(cfg.Fetch.Timeout)},
		{"fetch.retries", v.ValidateRetries(cfg.Fetch.Retries)},
		{"packages.interpreter", v.ValidateInterpreter(cfg.Packages.Interpreter)},
		{"watch.debounce", v.ValidateDebounce(cfg.Watch.Debounce)},
		{"watch.schedule", v.ValidateSchedule(cfg.Watch.Schedule)},
		{"watch.metrics_addr", v.ValidateListenAddr(cfg.Watch.MetricsAddr)},
		{"log.level", v.ValidateLogLevel(cfg.Log.Level)},
		{"log.format", v.ValidateLogFormat(cfg.Log.Format)},
	}
	if cfg.Settings.Scope == settings.ScopeWorkspace.String() && cfg.Settings.WorkspacePath == "" {
		return fmt.Errorf("settings.workspace_path: required when scope is workspace")
	}
	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("%s: %w", c.field, c.err)
		}
	}
	return nil
}

// ValidatePath requires a non-empty path
func (v *ConfigValidator) ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// ValidateScope validates a settings scope name
func (v *ConfigValidator) ValidateScope(scope string) error {
	_, err := settings.ParseScope(scope)
	return err
}

// ValidateSettingKey validates an editor setting name
func (v *ConfigValidator) ValidateSettingKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("setting key cannot be empty")
	}
	if strings.ContainsAny(key, " \t\n") {
		return fmt.Errorf("setting key %q cannot contain whitespace", key)
	}
	return nil
}

// ValidateTimeout validates timeout duration
func (v *ConfigValidator) ValidateTimeout(timeout time.Duration) error {
	minTimeout := 1 * time.Second
	maxTimeout := 5 * time.Minute

	if timeout < minTimeout {
		return fmt.Errorf("timeout too short (minimum 1s)")
	}

	if timeout > maxTimeout {
		return fmt.Errorf("timeout too long (maximum 5m)")
	}

	return nil
}

// ValidateRetries validates the retry count
func (v *ConfigValidator) ValidateRetries(retries int) error {
	if retries < 0 || retries > 10 {
		return fmt.Errorf("retries must be between 0 and 10")
	}
	return nil
}

// ValidateInterpreter validates the interpreter command
func (v *ConfigValidator) ValidateInterpreter(interpreter string) error {
	if strings.TrimSpace(interpreter) == "" {
		return fmt.Errorf("interpreter cannot be empty")
	}
	return nil
}

// ValidateDebounce validates the watch debounce window
func (v *ConfigValidator) ValidateDebounce(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("debounce cannot be negative")
	}
	return nil
}

// ValidateSchedule validates an optional cron expression
func (v *ConfigValidator) ValidateSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := v.schedules.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	return nil
}

// ValidateListenAddr validates an optional host:port listen address
func (v *ConfigValidator) ValidateListenAddr(addr string) error {
	if addr == "" {
		return nil
	}
	u, err := url.Parse("http://" + addr)
	if err != nil || u.Port() == "" {
		return fmt.Errorf("invalid listen address %q (want host:port)", addr)
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "warning", "error"}

	normalizedLevel := strings.ToLower(strings.TrimSpace(level))

	for _, valid := range validLevels {
		if normalizedLevel == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log level: %s (valid levels: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateLogFormat validates the log output format
func (v *ConfigValidator) ValidateLogFormat(format string) error {
	switch format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (valid formats: console, json)", format)
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}

	// Expand environment variables
	return os.ExpandEnv(path)
}
