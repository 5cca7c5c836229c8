// Package notify announces stage changes of the running session with a
// desktop notification, a short chime and an optional user command
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/timeutil"
)

// Source publishes session snapshots.
type Source interface {
	Watch(ctx context.Context) (<-chan models.Snapshot, models.Snapshot)
}

// Notifier reacts to stage changes.
type Notifier struct {
	alert  func(title, msg string) error
	chime  func() error
	runCmd func(ctx context.Context, name string, args []string, env []string) error
	cfg    config.NotificationConfig
}

// New returns a notifier configured from cfg.
func New(cfg config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		alert: func(title, msg string) error {
			return beeep.Notify(title, msg, "")
		},
		chime:  playChime,
		runCmd: runCommand,
	}
}

// Run watches src until ctx is done or the source closes the stream.
func (n *Notifier) Run(ctx context.Context, src Source) error {
	updates, last := src.Watch(ctx)

	for snap := range updates {
		if StageChanged(last, snap) {
			n.Announce(ctx, snap)
		}

		last = snap
	}

	return nil
}

// StageChanged reports whether cur is a new stage of the same run as prev.
func StageChanged(prev, cur models.Snapshot) bool {
	if !prev.Loaded || !cur.Active {
		return false
	}

	if cur.Session.RunID == "" || prev.Session.RunID != cur.Session.RunID {
		return false
	}

	return prev.Session.Stage != cur.Session.Stage
}

// Message builds the notification text for the stage that just began.
func Message(snap models.Snapshot) (title, msg string) {
	title = fmt.Sprintf("%s: %s", snap.Timer.Name, snap.Session.Stage)

	if snap.Session.Stage == models.Break {
		msg = fmt.Sprintf("Work stage finished. Take a %s break.", timeutil.Minutes(snap.StageDuration))
	} else {
		msg = fmt.Sprintf("Break is over. Next %s of work.", timeutil.Minutes(snap.StageDuration))
	}

	return title, msg
}

// Announce notifies the user that the stage in snap has begun. Failures are
// logged and never returned.
func (n *Notifier) Announce(ctx context.Context, snap models.Snapshot) {
	if !n.cfg.Enabled {
		return
	}

	title, msg := Message(snap)

	if err := n.alert(title, msg); err != nil {
		slog.WarnContext(ctx, "unable to display notification", slog.Any("error", err))
	}

	if n.cfg.Sound {
		if err := n.chime(); err != nil {
			slog.WarnContext(ctx, "unable to play chime", slog.Any("error", err))
		}
	}

	if err := n.runHook(ctx, snap); err != nil {
		slog.WarnContext(ctx, "stage command failed",
			slog.String("cmd", n.cfg.Cmd),
			slog.Any("error", err),
		)
	}
}

// runHook runs the configured command with the new stage in its
// environment.
func (n *Notifier) runHook(ctx context.Context, snap models.Snapshot) error {
	if n.cfg.Cmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(n.cfg.Cmd)
	if err != nil {
		return fmt.Errorf("parsing notifications.cmd: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	env := []string{
		"CATS_TIMER=" + snap.Timer.Name,
		"CATS_STAGE=" + string(snap.Session.Stage),
		fmt.Sprintf("CATS_STAGE_SECONDS=%d", snap.StageDuration),
	}

	return n.runCmd(ctx, cmdSlice[0], cmdSlice[1:], env)
}

func runCommand(ctx context.Context, name string, args, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}

	return nil
}
