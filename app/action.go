package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"

	"github.com/kotleni/cats/coordinator"
	"github.com/kotleni/cats/daemon"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/osutil"
	"github.com/kotleni/cats/internal/timeutil"
	"github.com/kotleni/cats/internal/ui"
	"github.com/kotleni/cats/report"
	"github.com/kotleni/cats/stats"
	"github.com/kotleni/cats/tui"
)

var (
	errMissingID = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "missing timer id: run 'cats %s <id>'",
	}

	errInvalidID = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "invalid timer id %q",
	}

	errAborted = errors.New("aborted")
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// clientHelper returns a client for the daemon named in the configuration.
func clientHelper(ctx *cli.Context) (*daemon.Client, *config.Config, error) {
	cfg, err := appConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	return daemon.NewClient(cfg.Daemon.Address), cfg, nil
}

// timerID reads the timer id from the first positional argument.
func timerID(ctx *cli.Context) (uint64, error) {
	arg := ctx.Args().First()
	if arg == "" {
		return 0, errMissingID.Fmt(ctx.Command.Name)
	}

	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, errInvalidID.Fmt(arg)
	}

	return id, nil
}

// daemonAction runs the background process until it receives SIGINT or
// SIGTERM.
func daemonAction(ctx *cli.Context) error {
	cfg, err := appConfig(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.InfoContext(runCtx, "starting daemon",
		slog.String("address", cfg.Daemon.Address),
		slog.String("version", config.Version),
	)

	return daemon.Run(runCtx, cfg)
}

// listAction prints the saved timers.
func listAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	timers, err := client.LoadTimers(ctx.Context)
	if err != nil {
		return err
	}

	if err := sortTimers(timers, ctx.String(sortFlag.Name)); err != nil {
		return err
	}

	return writeTimers(config.Stdout, timers, ctx.String(formatFlag.Name))
}

// createAction saves a new timer. Durations default to the configured
// values and the name is prompted for when the flag is absent.
func createAction(ctx *cli.Context) error {
	client, cfg, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	work, err := durationFlag(ctx, workFlag.Name, cfg.Timer.DefaultWork)
	if err != nil {
		return err
	}

	shortBreak, err := durationFlag(ctx, breakFlag.Name, cfg.Timer.DefaultBreak)
	if err != nil {
		return err
	}

	name := ctx.String(nameFlag.Name)
	if name == "" {
		name, err = promptName()
		if err != nil {
			return err
		}
	}

	timer, err := client.CreateTimer(ctx.Context, coordinator.NewTimer{
		Name:           name,
		IconID:         ctx.Int(iconFlag.Name),
		WorkTime:       int(work / time.Second),
		ShortBreakTime: int(shortBreak / time.Second),
	})
	if err != nil {
		return err
	}

	report.Success("Created timer %d: %s %s", timer.ID, ui.Icon(timer.IconID), timer.Name)

	return nil
}

// durationFlag parses the named flag, falling back to def when it is unset.
func durationFlag(ctx *cli.Context, name string, def time.Duration) (time.Duration, error) {
	if !ctx.IsSet(name) {
		return def, nil
	}

	return timeutil.ParseDuration(ctx.String(name))
}

func promptName() (string, error) {
	var name string

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Timer name").
			Value(&name).
			Validate(func(s string) error {
				if s == "" {
					return coordinator.ErrEmptyName
				}

				return nil
			}),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errAborted
	}

	return name, err
}

// removeAction deletes a timer after asking for confirmation.
func removeAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	id, err := timerID(ctx)
	if err != nil {
		return err
	}

	if !ctx.Bool(yesFlag.Name) {
		confirmed := false

		err = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete timer %d and its totals?", id)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		)).Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}

		if !confirmed {
			return nil
		}
	}

	if err := client.RemoveTimer(ctx.Context, id); err != nil {
		return err
	}

	report.Success("Removed timer %d", id)

	return nil
}

// startAction loads the timer named by the optional id argument and starts
// it, resuming it instead when it is paused.
func startAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	var snap models.Snapshot

	if ctx.Args().Present() {
		var id uint64

		id, err = timerID(ctx)
		if err != nil {
			return err
		}

		snap, err = client.LoadTimer(ctx.Context, id)
	} else {
		snap, err = client.Snapshot(ctx.Context)
	}

	if err != nil {
		return err
	}

	switch snap.Session.RunState {
	case models.Paused:
		snap, err = client.Resume(ctx.Context)
	case models.Started:
		report.Info("%s is already running", snap.Timer.Name)
	default:
		snap, err = client.Start(ctx.Context)
	}

	if err != nil {
		return err
	}

	return writeStatus(config.Stdout, snap, formatTable)
}

// commandAction returns an action that sends op to the daemon and prints
// the resulting status.
func commandAction(op string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, _, err := clientHelper(ctx)
		if err != nil {
			return err
		}

		snap, err := client.Command(ctx.Context, op)
		if err != nil {
			return err
		}

		return writeStatus(config.Stdout, snap, formatTable)
	}
}

// releaseAction unloads the timer unless it is counting down.
func releaseAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	snap, err := client.ResetServiceIsNotStarted(ctx.Context)
	if err != nil {
		return err
	}

	if snap.Loaded {
		report.Info("%s is still running in the background", snap.Timer.Name)
		return nil
	}

	report.Success("Timer released")

	return nil
}

// statusAction prints the status of the loaded timer.
func statusAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	snap, err := client.Snapshot(ctx.Context)
	if err != nil {
		return err
	}

	return writeStatus(config.Stdout, snap, ctx.String(formatFlag.Name))
}

// attachAction opens the timer screen for the loaded timer.
func attachAction(ctx *cli.Context) error {
	client, cfg, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	if err := client.Ping(ctx.Context); err != nil {
		return err
	}

	return tui.Attach(ctx.Context, client, cfg.Display.DarkTheme)
}

// historyAction prints the stages recorded since --since, or since the
// start of --period when --since is absent.
func historyAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	since, err := historySince(ctx.String(sinceFlag.Name), ctx.String(periodFlag.Name), time.Now())
	if err != nil {
		return err
	}

	records, err := client.History(ctx.Context, since, ctx.Uint64(timerFlag.Name))
	if err != nil {
		return err
	}

	timers, err := client.LoadTimers(ctx.Context)
	if err != nil {
		return err
	}

	return writeHistory(config.Stdout, records, timerNames(timers), ctx.String(formatFlag.Name))
}

// statsAction prints the work statistics for the reporting period.
func statsAction(ctx *cli.Context) error {
	client, _, err := clientHelper(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	since, err := historySince(ctx.String(sinceFlag.Name), ctx.String(periodFlag.Name), now)
	if err != nil {
		return err
	}

	records, err := client.History(ctx.Context, since, ctx.Uint64(timerFlag.Name))
	if err != nil {
		return err
	}

	timers, err := client.LoadTimers(ctx.Context)
	if err != nil {
		return err
	}

	names := make(map[uint64]string, len(timers))
	for i := range timers {
		names[timers[i].ID] = timers[i].Name
	}

	summary := stats.Compute(records, names, since, now)

	if ctx.Bool(jsonFlag.Name) {
		b, err := summary.ToJSON()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(config.Stdout, string(b))

		return err
	}

	return summary.Write(config.Stdout)
}

func historySince(since, period string, now time.Time) (time.Time, error) {
	if since != "" {
		return timeutil.FromStr(since)
	}

	return timeutil.PeriodStart(timeutil.Period(period), now)
}

func iconsAction(_ *cli.Context) error {
	return writeIcons(config.Stdout)
}

// editConfigAction opens the cats config file in the user's default text
// editor.
func editConfigAction(ctx *cli.Context) error {
	cfg, err := appConfig(ctx)
	if err != nil {
		return err
	}

	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	args, err := shellquote.Split(editor)
	if err != nil || len(args) == 0 {
		args = []string{editor}
	}

	return runEditor(ctx.Context, args, cfg.Path)
}

func runEditor(ctx context.Context, args []string, path string) error {
	//nolint:gosec // the editor comes from the user's own environment
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
