package config

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Address string
	Driver  string
	DBPath  string
	Verbose bool
	NoColor bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
// Flags take precedence over the config file and the environment.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Address: ctx.String("address"),
			Driver:  ctx.String("store"),
			DBPath:  ctx.String("db"),
			Verbose: ctx.Bool("verbose"),
			NoColor: ctx.Bool("no-color"),
		}

		applyCLIOptions(c, opts)

		return nil
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) {
	if opts.Address != "" {
		c.Daemon.Address = opts.Address
	}

	if opts.Driver != "" {
		c.Store.Driver = strings.ToLower(opts.Driver)
	}

	if opts.DBPath != "" {
		c.Store.Path = opts.DBPath
	}

	if opts.Verbose {
		c.Log.Verbose = true
		c.Log.Level = "debug"
	}

	c.Display.NoColor = opts.NoColor
}
