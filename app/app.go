// Package app wires the cats command-line interface
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/logging"
	"github.com/kotleni/cats/internal/pathutil"
	"github.com/kotleni/cats/internal/ui"
)

const (
	envNoColor     = "NO_COLOR"
	envCatsNoColor = "CATS_NO_COLOR"

	metaConfig = "config"
	metaLog    = "log"
)

var errConfigNotLoaded = errors.New("configuration was not loaded")

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	ui.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the cats app instance.
func Get() *cli.App {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	catsApp := &cli.App{
		Name: "cats",
		Usage: `
		Cats is a pomodoro timer that runs in the background. Save named timers
		with a work and a break length, start one and it alternates between the
		two stages until you pause or reset it. The terminal can be closed at
		any time: the daemon keeps counting and records the time you spend.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "daemon",
				Usage:  "Run the background process that owns the timer",
				Action: daemonAction,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the saved timers",
				Flags:   []cli.Flag{sortFlag, formatFlag},
				Action:  listAction,
			},
			{
				Name:   "create",
				Usage:  "Save a new timer",
				Flags:  []cli.Flag{nameFlag, iconFlag, workFlag, breakFlag},
				Action: createAction,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Delete a saved timer",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag},
				Action:    removeAction,
			},
			{
				Name:      "start",
				Usage:     "Load a timer and start it. Without an id the loaded timer is started",
				ArgsUsage: "[id]",
				Action:    startAction,
			},
			{
				Name:   "pause",
				Usage:  "Pause the running timer",
				Action: commandAction("pause"),
			},
			{
				Name:   "resume",
				Usage:  "Resume the paused timer",
				Action: commandAction("resume"),
			},
			{
				Name:   "skip",
				Usage:  "End the current stage early and move to the next one",
				Action: commandAction("skip"),
			},
			{
				Name:   "reset",
				Usage:  "Stop the timer and discard the progress of the current stage",
				Action: commandAction("reset"),
			},
			{
				Name:   "release",
				Usage:  "Unload the timer unless it is running",
				Action: releaseAction,
			},
			{
				Name:   "status",
				Usage:  "Print the status of the loaded timer",
				Flags:  []cli.Flag{formatFlag},
				Action: statusAction,
			},
			{
				Name:   "attach",
				Usage:  "Open the interactive timer screen",
				Action: attachAction,
			},
			{
				Name:   "history",
				Usage:  "Show the recorded stages. Defaults to a reporting period of 7 days",
				Flags:  []cli.Flag{sinceFlag, periodFlag, timerFlag, formatFlag},
				Action: historyAction,
			},
			{
				Name: "stats",
				Usage: `
				Track your progress with a summary and per day, weekday and hour
				breakdowns of the time spent working. Defaults to a reporting
				period of 7 days`,
				Flags:  []cli.Flag{sinceFlag, periodFlag, timerFlag, jsonFlag},
				Action: statsAction,
			},
			{
				Name:   "icons",
				Usage:  "Print the icon catalog",
				Action: iconsAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			addressFlag,
			storeFlag,
			dbFlag,
			verboseFlag,
			noColorFlag,
		},
		Before: beforeAction,
		After:  afterAction,
	}

	return catsApp
}

// loadConfig reads the configuration in increasing order of precedence:
// the env file, the config file and the command-line flags.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if err := pathutil.Initialize(); err != nil {
		return nil, err
	}

	return config.New(
		config.WithEnvFile(pathutil.EnvFilePath()),
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
}

// appConfig returns the configuration loaded by beforeAction.
func appConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, ok := ctx.App.Metadata[metaConfig].(*config.Config)
	if !ok {
		return nil, errConfigNotLoaded
	}

	return cfg, nil
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envCatsNoColor); exists {
		disableStyling()
	}

	if ctx.Bool(noColorFlag.Name) {
		disableStyling()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	cfg.Log.Verbose = cfg.Log.Verbose || ctx.Bool(verboseFlag.Name)

	closer, err := logging.Setup(cfg.Log, pathutil.LogFilePath())
	if err != nil {
		return fmt.Errorf("setting up log file: %w", err)
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	ctx.App.Metadata[metaConfig] = cfg
	ctx.App.Metadata[metaLog] = closer

	slog.DebugContext(ctx.Context, "configuration loaded", slog.String("path", cfg.Path))

	return nil
}

func afterAction(ctx *cli.Context) error {
	closer, ok := ctx.App.Metadata[metaLog].(io.Closer)
	if !ok {
		return nil
	}

	slog.DebugContext(ctx.Context, "exiting cats")

	return closer.Close()
}
