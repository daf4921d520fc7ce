package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
)

// EnvPrefix prefixes every environment override, e.g. KONIVRER_APP_WORKERS.
const EnvPrefix = "KONIVRER_"

// Config represents the application configuration.
type Config struct {
	// Analysis thresholds and sample floors
	Analytics analytics.Parameters `toml:"analytics" envPrefix:"ANALYTICS_"`

	// Analyzer toggles
	Features analytics.Features `toml:"features" envPrefix:"FEATURE_"`

	// Match history database
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`

	// Application configuration
	App AppConfig `toml:"app" envPrefix:"APP_"`

	// Automatic refresh
	Watch WatchConfig `toml:"watch" envPrefix:"WATCH_"`
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path" env:"PATH"` // Path to the SQLite database
}

// AppConfig contains general application settings.
type AppConfig struct {
	Workers      int     `toml:"workers" env:"WORKERS"`             // Parallel analysis shards (0 = one per CPU)
	LogLevel     string  `toml:"log_level" env:"LOG_LEVEL"`         // debug, info, warn, error
	LogFormat    string  `toml:"log_format" env:"LOG_FORMAT"`       // text or json
	ForecastDays float64 `toml:"forecast_days" env:"FORECAST_DAYS"` // Forecast horizon
}

// WatchConfig contains refresh settings for long-running mode.
type WatchConfig struct {
	Debounce    string `toml:"debounce" env:"DEBOUNCE"`         // Quiet period after a change (e.g., "2s")
	MinInterval string `toml:"min_interval" env:"MIN_INTERVAL"` // Minimum time between refreshes
	Schedule    string `toml:"schedule" env:"SCHEDULE"`         // Cron spec for periodic refresh, empty to disable
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analytics: analytics.DefaultParameters(),
		Features:  analytics.AllFeatures(),
		Storage: StorageConfig{
			Path: "",
		},
		App: AppConfig{
			Workers:      0,
			LogLevel:     "info",
			LogFormat:    "text",
			ForecastDays: analytics.DefaultForecastHorizon,
		},
		Watch: WatchConfig{
			Debounce:    "2s",
			MinInterval: "30s",
			Schedule:    "",
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".konivrer-insights")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// DefaultPath returns the path to the default configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDatabasePath returns the database location used when none is configured.
func DefaultDatabasePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LoadDefault loads the configuration from the default location.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads the configuration from path. Returns default config if the file
// doesn't exist. Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values from KONIVRER_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if err := c.Analytics.Validate(); err != nil {
		return err
	}

	if c.App.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.App.Workers)
	}
	if c.App.ForecastDays < 0 {
		return fmt.Errorf("forecast days cannot be negative: %v", c.App.ForecastDays)
	}
	if _, err := logrus.ParseLevel(c.App.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.App.LogLevel, err)
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.App.LogFormat)
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid debounce %q: %w", c.Watch.Debounce, err)
	}
	if _, err := time.ParseDuration(c.Watch.MinInterval); err != nil {
		return fmt.Errorf("invalid min interval %q: %w", c.Watch.MinInterval, err)
	}
	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Watch.Schedule, err)
		}
	}

	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}

// GetMinInterval returns the minimum refresh interval as a duration.
func (c *Config) GetMinInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.MinInterval)
}
