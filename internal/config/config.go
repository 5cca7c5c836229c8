// Package config loads and validates the cats configuration from the config
// file, the environment and command-line flags
package config

import (
	"io"
	"os"
	"time"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Daemon        DaemonConfig       `mapstructure:"daemon"`
		Store         StoreConfig        `mapstructure:"store"`
		Log           LogConfig          `mapstructure:"log"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Path          string             `mapstructure:"-"`
		Timer         TimerConfig        `mapstructure:"timer"`
		Display       DisplayConfig      `mapstructure:"display"`
	}

	// DaemonConfig holds settings for the background process.
	DaemonConfig struct {
		Address string `mapstructure:"address"`
	}

	// StoreConfig selects the persistence backend.
	StoreConfig struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
	}

	// TimerConfig holds engine and timer-creation settings.
	TimerConfig struct {
		TickInterval time.Duration `mapstructure:"tick_interval"`
		DefaultWork  time.Duration `mapstructure:"default_work"`
		DefaultBreak time.Duration `mapstructure:"default_break"`
		IconCount    int           `mapstructure:"icon_count"`
	}

	// NotificationConfig holds stage-change notification settings.
	NotificationConfig struct {
		Cmd     string `mapstructure:"cmd"`
		Enabled bool   `mapstructure:"enabled"`
		Sound   bool   `mapstructure:"sound"`
	}

	// LogConfig holds log file settings.
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
		Verbose    bool   `mapstructure:"-"`
	}

	// DisplayConfig holds display-related settings.
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
		NoColor   bool `mapstructure:"-"`
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.0"

const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}
