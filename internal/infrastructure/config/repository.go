package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/packages"
	"github.com/gbsl/edsync/internal/core/version"
)

// ConfigFileEnv names the environment variable overriding the config file location
const ConfigFileEnv = "EDSYNC_CONFIG_FILE"

// EnvPrefix prefixes environment overrides, e.g. EDSYNC_FETCH_TIMEOUT=30s
const EnvPrefix = "EDSYNC"

// ViperConfigRepository implements the ConfigurationRepository interface.
// Values are layered defaults < config file < environment.
type ViperConfigRepository struct {
	configPath string
	home       string
	goos       string
	validator  *ConfigValidator
}

// NewViperConfigRepository creates a new configuration repository. An empty
// configPath falls back to $EDSYNC_CONFIG_FILE, then ~/.config/edsync/config.yaml.
func NewViperConfigRepository(configPath string) *ViperConfigRepository {
	if configPath == "" {
		configPath = os.Getenv(ConfigFileEnv)
	}
	home, _ := os.UserHomeDir()
	if configPath == "" {
		configPath = filepath.Join(home, ".config", "edsync", "config.yaml")
	}

	return &ViperConfigRepository{
		configPath: expandPath(configPath),
		home:       home,
		goos:       runtime.GOOS,
		validator:  NewConfigValidator(),
	}
}

// Load retrieves the current configuration
func (r *ViperConfigRepository) Load() (*ports.Configuration, error) {
	v := viper.New()
	r.setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(r.configPath); err == nil {
		v.SetConfigFile(r.configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", r.configPath, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat configuration file %s: %w", r.configPath, err)
	}

	config := &ports.Configuration{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	r.expandPaths(config)

	if err := r.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Save persists the configuration
func (r *ViperConfigRepository) Save(config *ports.Configuration) error {
	if err := r.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(r.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(r.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// LoadDefault returns the default configuration
func (r *ViperConfigRepository) LoadDefault() *ports.Configuration {
	base := filepath.Join(r.home, ".config", "edsync")
	return &ports.Configuration{
		Settings: ports.SettingsConfig{
			UserPath: userSettingsPath(r.goos, r.home),
			Scope:    "global",
		},
		Keys: ports.KeysConfig{
			RemoteLocation:       "edsync.remoteConfigurationUrl",
			IgnoreConfiguration:  "edsync.ignoreConfiguration",
			IgnorePackageInstall: "edsync.ignorePackageInstallation",
		},
		State: ports.StateConfig{
			Path:      filepath.Join(base, "state.vscdb"),
			MarkerKey: version.DefaultMarkerKey,
		},
		Fetch: ports.FetchConfig{
			Timeout:   15 * time.Second,
			Retries:   2,
			UserAgent: "edsync",
		},
		Packages: ports.PackagesConfig{
			Interpreter: defaultInterpreter(r.goos),
			Required:    append([]string(nil), packages.DefaultRequired...),
			Uninstall:   []string{},
		},
		Baseline: ports.BaselineConfig{
			Enabled: true,
		},
		Watch: ports.WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: ports.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate validates the configuration
func (r *ViperConfigRepository) Validate(config *ports.Configuration) error {
	return r.validator.Validate(config)
}

// GetConfigPath returns the path to the configuration file
func (r *ViperConfigRepository) GetConfigPath() string {
	return r.configPath
}

func (r *ViperConfigRepository) setDefaults(v *viper.Viper) {
	d := r.LoadDefault()

	v.SetDefault("settings.user_path", d.Settings.UserPath)
	v.SetDefault("settings.workspace_path", d.Settings.WorkspacePath)
	v.SetDefault("settings.scope", d.Settings.Scope)
	v.SetDefault("keys.remote_location", d.Keys.RemoteLocation)
	v.SetDefault("keys.ignore_configuration", d.Keys.IgnoreConfiguration)
	v.SetDefault("keys.ignore_package_install", d.Keys.IgnorePackageInstall)
	v.SetDefault("state.path", d.State.Path)
	v.SetDefault("state.marker_key", d.State.MarkerKey)
	v.SetDefault("version.manifest_path", d.Version.ManifestPath)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.retries", d.Fetch.Retries)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("packages.interpreter", d.Packages.Interpreter)
	v.SetDefault("packages.required", d.Packages.Required)
	v.SetDefault("packages.uninstall", d.Packages.Uninstall)
	v.SetDefault("baseline.enabled", d.Baseline.Enabled)
	v.SetDefault("baseline.file", d.Baseline.File)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.schedule", d.Watch.Schedule)
	v.SetDefault("watch.metrics_addr", d.Watch.MetricsAddr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("debug", d.Debug)
}

func (r *ViperConfigRepository) expandPaths(c *ports.Configuration) {
	c.Settings.UserPath = expandPath(c.Settings.UserPath)
	c.Settings.WorkspacePath = expandPath(c.Settings.WorkspacePath)
	c.State.Path = expandPath(c.State.Path)
	c.Version.ManifestPath = expandPath(c.Version.ManifestPath)
	c.Baseline.File = expandPath(c.Baseline.File)
}

// userSettingsPath is where the editor keeps its user settings.json
func userSettingsPath(goos, home string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Code", "User", "settings.json")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Code", "User", "settings.json")
		}
		return filepath.Join(home, "AppData", "Roaming", "Code", "User", "settings.json")
	default:
		return filepath.Join(home, ".config", "Code", "User", "settings.json")
	}
}

func defaultInterpreter(goos string) string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

var _ ports.ConfigurationRepository = (*ViperConfigRepository)(nil)
