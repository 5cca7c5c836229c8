package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CATS"

const (
	keyDaemonAddress        = "daemon.address"
	keyStoreDriver          = "store.driver"
	keyStorePath            = "store.path"
	keyTickInterval         = "timer.tick_interval"
	keyDefaultWork          = "timer.default_work"
	keyDefaultBreak         = "timer.default_break"
	keyIconCount            = "timer.icon_count"
	keyNotificationsEnabled = "notifications.enabled"
	keyNotificationsSound   = "notifications.sound"
	keyNotificationsCmd     = "notifications.cmd"
	keyLogLevel             = "log.level"
	keyLogMaxSize           = "log.max_size"
	keyLogMaxBackups        = "log.max_backups"
	keyDarkTheme            = "display.dark_theme"
)

// WithEnvFile loads environment variables from a dotenv file. A missing file
// is not an error. Variables that are already set win.
func WithEnvFile(path string) Option {
	return func(_ *Config) error {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return errReadEnvFile.Wrap(err)
		}

		return nil
	}
}

// WithViperConfig returns an Option that loads configuration from Viper. The
// config file is created with default values if it does not exist.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		c.Path = configPath

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults and environment overrides.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyDaemonAddress, "127.0.0.1:7717")
	v.SetDefault(keyStoreDriver, DriverBolt)
	v.SetDefault(keyStorePath, "")
	v.SetDefault(keyTickInterval, "1s")
	v.SetDefault(keyDefaultWork, "30m")
	v.SetDefault(keyDefaultBreak, "5m")
	v.SetDefault(keyIconCount, 12)
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyNotificationsSound, true)
	v.SetDefault(keyNotificationsCmd, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSize, 5)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyDarkTheme, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	path := c.Path

	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	c.Path = path

	return nil
}
