package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/models"
)

func snapshot(state models.RunState, stage models.Stage, runID string) models.Snapshot {
	return models.Snapshot{
		Timer:         models.TimerDefinition{ID: 1, Name: "Focus", WorkTime: 1800, ShortBreakTime: 300},
		Session:       models.Session{RunID: runID, RunState: state, Stage: stage, TimerID: 1},
		StageDuration: 300,
		Active:        state != models.Stopped,
		Loaded:        true,
	}
}

func TestStageChanged(t *testing.T) {
	testCases := []struct {
		name string
		prev models.Snapshot
		cur  models.Snapshot
		want bool
	}{
		{
			name: "work to break",
			prev: snapshot(models.Started, models.Work, "r1"),
			cur:  snapshot(models.Started, models.Break, "r1"),
			want: true,
		},
		{
			name: "skip while paused",
			prev: snapshot(models.Paused, models.Break, "r1"),
			cur:  snapshot(models.Paused, models.Work, "r1"),
			want: true,
		},
		{
			name: "same stage",
			prev: snapshot(models.Started, models.Work, "r1"),
			cur:  snapshot(models.Started, models.Work, "r1"),
		},
		{
			name: "reset from break",
			prev: snapshot(models.Started, models.Break, "r1"),
			cur:  snapshot(models.Stopped, models.Work, ""),
		},
		{
			name: "new run",
			prev: snapshot(models.Stopped, models.Break, "r1"),
			cur:  snapshot(models.Started, models.Work, "r2"),
		},
		{
			name: "first snapshot",
			prev: models.Snapshot{},
			cur:  snapshot(models.Started, models.Break, "r1"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StageChanged(tc.prev, tc.cur))
		})
	}
}

func TestMessage(t *testing.T) {
	title, msg := Message(snapshot(models.Started, models.Break, "r1"))
	assert.Equal(t, "Focus: Break time", title)
	assert.Equal(t, "Work stage finished. Take a 5 min break.", msg)
}

type fakeSource struct {
	ch      chan models.Snapshot
	initial models.Snapshot
}

func (f *fakeSource) Watch(_ context.Context) (<-chan models.Snapshot, models.Snapshot) {
	return f.ch, f.initial
}

type recorder struct {
	alerts []string
	chimes int
	cmds   [][]string
	envs   [][]string
}

func newTestNotifier(cfg config.NotificationConfig, rec *recorder) *Notifier {
	n := New(cfg)
	n.alert = func(title, _ string) error {
		rec.alerts = append(rec.alerts, title)
		return nil
	}
	n.chime = func() error {
		rec.chimes++
		return errors.New("no audio device")
	}
	n.runCmd = func(_ context.Context, name string, args, env []string) error {
		rec.cmds = append(rec.cmds, append([]string{name}, args...))
		rec.envs = append(rec.envs, env)

		return nil
	}

	return n
}

func TestRunAnnouncesStageChanges(t *testing.T) {
	rec := &recorder{}
	n := newTestNotifier(config.NotificationConfig{
		Enabled: true,
		Sound:   true,
		Cmd:     `notify-send "stage changed"`,
	}, rec)

	src := &fakeSource{
		ch:      make(chan models.Snapshot, 8),
		initial: snapshot(models.Started, models.Work, "r1"),
	}

	src.ch <- snapshot(models.Started, models.Work, "r1")
	src.ch <- snapshot(models.Started, models.Break, "r1")
	src.ch <- snapshot(models.Started, models.Break, "r1")
	src.ch <- snapshot(models.Started, models.Work, "r1")
	src.ch <- snapshot(models.Stopped, models.Work, "")
	close(src.ch)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, n.Run(ctx, src))

	assert.Equal(t, []string{"Focus: Break time", "Focus: Work time"}, rec.alerts)
	assert.Equal(t, 2, rec.chimes, "chime failures do not stop later announcements")
	require.Len(t, rec.cmds, 2)
	assert.Equal(t, []string{"notify-send", "stage changed"}, rec.cmds[0])
	assert.Contains(t, rec.envs[0], "CATS_STAGE=break")
	assert.Contains(t, rec.envs[1], "CATS_STAGE=work")
}

func TestAnnounceDisabled(t *testing.T) {
	rec := &recorder{}
	n := newTestNotifier(config.NotificationConfig{Enabled: false, Sound: true}, rec)

	n.Announce(context.Background(), snapshot(models.Started, models.Break, "r1"))

	assert.Empty(t, rec.alerts)
	assert.Zero(t, rec.chimes)
}

func TestBadCommandIsNotFatal(t *testing.T) {
	rec := &recorder{}
	n := newTestNotifier(config.NotificationConfig{Enabled: true, Cmd: `echo "unterminated`}, rec)

	n.Announce(context.Background(), snapshot(models.Started, models.Break, "r1"))

	assert.Len(t, rec.alerts, 1)
	assert.Empty(t, rec.cmds)
}
