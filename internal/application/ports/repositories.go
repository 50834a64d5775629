package ports

import "time"

// ConfigurationRepository defines the interface for tool configuration persistence
type ConfigurationRepository interface {
	// Load retrieves the current configuration
	Load() (*Configuration, error)

	// Save persists the configuration
	Save(config *Configuration) error

	// LoadDefault returns the default configuration
	LoadDefault() *Configuration

	// Validate validates the configuration
	Validate(config *Configuration) error

	// GetConfigPath returns the path to the configuration file
	GetConfigPath() string
}

// Configuration represents the tool configuration
type Configuration struct {
	Settings SettingsConfig `mapstructure:"settings" yaml:"settings" json:"settings"`
	Keys     KeysConfig     `mapstructure:"keys" yaml:"keys" json:"keys"`
	State    StateConfig    `mapstructure:"state" yaml:"state" json:"state"`
	Version  VersionConfig  `mapstructure:"version" yaml:"version" json:"version"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch" json:"fetch"`
	Packages PackagesConfig `mapstructure:"packages" yaml:"packages" json:"packages"`
	Baseline BaselineConfig `mapstructure:"baseline" yaml:"baseline" json:"baseline"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch" json:"watch"`
	Log      LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Debug    bool           `mapstructure:"debug" yaml:"debug" json:"debug"`
}

// SettingsConfig locates the editor settings files
type SettingsConfig struct {
	// UserPath is the global (user) settings.json
	UserPath string `mapstructure:"user_path" yaml:"user_path" json:"user_path"`
	// WorkspacePath is the optional workspace settings.json
	WorkspacePath string `mapstructure:"workspace_path" yaml:"workspace_path,omitempty" json:"workspace_path,omitempty"`
	// Scope is where reconciled values are written: "global" or "workspace"
	Scope string `mapstructure:"scope" yaml:"scope" json:"scope"`
}

// KeysConfig names the editor settings the tool reads
type KeysConfig struct {
	RemoteLocation       string `mapstructure:"remote_location" yaml:"remote_location" json:"remote_location"`
	IgnoreConfiguration  string `mapstructure:"ignore_configuration" yaml:"ignore_configuration" json:"ignore_configuration"`
	IgnorePackageInstall string `mapstructure:"ignore_package_install" yaml:"ignore_package_install" json:"ignore_package_install"`
}

// StateConfig locates installation-wide durable state
type StateConfig struct {
	Path      string `mapstructure:"path" yaml:"path" json:"path"`
	MarkerKey string `mapstructure:"marker_key" yaml:"marker_key" json:"marker_key"`
}

// VersionConfig selects where the current tool version comes from
type VersionConfig struct {
	// ManifestPath is a JSON manifest with a top-level "version"; empty uses the build version
	ManifestPath string `mapstructure:"manifest_path" yaml:"manifest_path,omitempty" json:"manifest_path,omitempty"`
}

// FetchConfig tunes remote document retrieval
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Retries   int           `mapstructure:"retries" yaml:"retries" json:"retries"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	// Headers are added to every request, e.g. an Authorization header for private documents
	Headers map[string]string `mapstructure:"headers" yaml:"headers,omitempty" json:"headers,omitempty"`
}

// PackagesConfig describes the interpreter package set
type PackagesConfig struct {
	Interpreter string   `mapstructure:"interpreter" yaml:"interpreter" json:"interpreter"`
	Required    []string `mapstructure:"required" yaml:"required" json:"required"`
	Uninstall   []string `mapstructure:"uninstall" yaml:"uninstall,omitempty" json:"uninstall,omitempty"`
}

// BaselineConfig controls the settings applied underneath the remote document
type BaselineConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// File is a JSON object replacing the built-in baseline. Setting keys are
	// case-sensitive, so they cannot live in this (case-folding) config file.
	File string `mapstructure:"file" yaml:"file,omitempty" json:"file,omitempty"`
}

// WatchConfig tunes the long-running watch mode
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
	Schedule    string        `mapstructure:"schedule" yaml:"schedule,omitempty" json:"schedule,omitempty"`
	MetricsAddr string        `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty" json:"metrics_addr,omitempty"`
}

// LogConfig selects log verbosity and format
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}
