package config

import (
	"net"
	"slices"
	"strings"
	"time"
)

var (
	minTickInterval = 10 * time.Millisecond
	maxTickInterval = time.Minute

	minSessionDuration = 1 * time.Second
	maxSessionDuration = 720 * time.Minute // 12 hours

	logLevels = []string{"debug", "info", "warn", "error"}
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Daemon.Address); err != nil {
		return errInvalidAddress.Fmt(c.Daemon.Address)
	}

	if c.Store.Driver != DriverBolt && c.Store.Driver != DriverSQLite {
		return errInvalidDriver.Fmt(c.Store.Driver)
	}

	if err := c.validateTimer(); err != nil {
		return err
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	return nil
}

func (c *Config) validateTimer() error {
	t := c.Timer

	if t.TickInterval < minTickInterval || t.TickInterval > maxTickInterval {
		return errInvalidDuration.Fmt("tick interval", minTickInterval, maxTickInterval)
	}

	if t.DefaultWork < minSessionDuration || t.DefaultWork > maxSessionDuration {
		return errInvalidDuration.Fmt("default work duration", minSessionDuration, maxSessionDuration)
	}

	if t.DefaultBreak < minSessionDuration || t.DefaultBreak > maxSessionDuration {
		return errInvalidDuration.Fmt("default break duration", minSessionDuration, maxSessionDuration)
	}

	if t.IconCount < 1 {
		return errInvalidIconCount.Fmt(t.IconCount)
	}

	return nil
}
