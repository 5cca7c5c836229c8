package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/apperr"
)

func defaultConfig(path string) *Config {
	return &Config{
		Path:   path,
		Daemon: DaemonConfig{Address: "127.0.0.1:7717"},
		Store:  StoreConfig{Driver: DriverBolt},
		Timer: TimerConfig{
			TickInterval: time.Second,
			DefaultWork:  30 * time.Minute,
			DefaultBreak: 5 * time.Minute,
			IconCount:    12,
		},
		Notifications: NotificationConfig{Enabled: true, Sound: true},
		Log:           LogConfig{Level: "info", MaxSize: 5, MaxBackups: 3},
		Display:       DisplayConfig{DarkTheme: true},
	}
}

func TestWithViperConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg, err := New(WithViperConfig(path))
	require.NoError(t, err)

	assert.Equal(t, defaultConfig(path), cfg)
	assert.FileExists(t, path)
}

func TestWithViperConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	content := `
daemon:
  address: 127.0.0.1:9000
store:
  driver: sqlite
timer:
  default_work: 45m
  tick_interval: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := New(WithViperConfig(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Daemon.Address)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 45*time.Minute, cfg.Timer.DefaultWork)
	assert.Equal(t, 500*time.Millisecond, cfg.Timer.TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.Timer.DefaultBreak)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	t.Setenv("CATS_DAEMON_ADDRESS", "127.0.0.1:9999")
	t.Setenv("CATS_LOG_LEVEL", "debug")

	cfg, err := New(WithViperConfig(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Daemon.Address)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CATS_TIMER_ICON_COUNT=4\n"), 0o600))

	// godotenv sets the variable for the whole process.
	t.Cleanup(func() { os.Unsetenv("CATS_TIMER_ICON_COUNT") })

	cfg, err := New(
		WithEnvFile(envPath),
		WithViperConfig(filepath.Join(dir, "config.yml")),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Timer.IconCount)
}

func TestWithEnvFileMissing(t *testing.T) {
	_, err := New(
		WithEnvFile(filepath.Join(t.TempDir(), "nope.env")),
		WithViperConfig(filepath.Join(t.TempDir(), "config.yml")),
	)
	assert.NoError(t, err)
}

func TestApplyCLIOptions(t *testing.T) {
	cfg := defaultConfig("")

	applyCLIOptions(cfg, CLIOptions{
		Address: "localhost:1234",
		Driver:  "SQLite",
		DBPath:  "/tmp/cats.sqlite",
		Verbose: true,
	})

	assert.Equal(t, "localhost:1234", cfg.Daemon.Address)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/cats.sqlite", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Verbose)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		err    *apperr.Error
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name:   "bad address",
			mutate: func(c *Config) { c.Daemon.Address = "nope" },
			err:    errInvalidAddress,
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Store.Driver = "postgres" },
			err:    errInvalidDriver,
		},
		{
			name:   "zero work",
			mutate: func(c *Config) { c.Timer.DefaultWork = 0 },
			err:    errInvalidDuration,
		},
		{
			name:   "tick too fast",
			mutate: func(c *Config) { c.Timer.TickInterval = time.Microsecond },
			err:    errInvalidDuration,
		},
		{
			name:   "no icons",
			mutate: func(c *Config) { c.Timer.IconCount = 0 },
			err:    errInvalidIconCount,
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Log.Level = "loud" },
			err:    errInvalidLogLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig("")
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.err)
			assert.True(t, apperr.IsKind(err, apperr.Validation))
		})
	}
}
