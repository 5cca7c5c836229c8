package coordinator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/service"
	"github.com/kotleni/cats/store"
)

const iconCount = 12

func newTestCoordinator(t *testing.T) (*Coordinator, *store.Client) {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "cats.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return New(db, service.New(db), iconCount), db
}

func createFocus(t *testing.T, c *Coordinator) *models.TimerDefinition {
	t.Helper()

	timer, err := c.CreateTimer(context.Background(), NewTimer{
		Name:           "Focus",
		IconID:         2,
		WorkTime:       30 * 60,
		ShortBreakTime: 5 * 60,
	})
	require.NoError(t, err)

	return timer
}

func TestCreateTimerThenList(t *testing.T) {
	c, _ := newTestCoordinator(t)

	created := createFocus(t, c)

	timers, err := c.LoadTimers(context.Background())
	require.NoError(t, err)
	require.Len(t, timers, 1)

	assert.Equal(t, created.ID, timers[0].ID)
	assert.Equal(t, 1800, timers[0].WorkTime)
	assert.Equal(t, 300, timers[0].ShortBreakTime)
	assert.Zero(t, timers[0].TotalWorkTime)
	assert.Zero(t, timers[0].TotalBreakTime)
}

func TestCreateTimerValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   NewTimer
		err  *apperr.Error
	}{
		{"blank name", NewTimer{Name: "   ", WorkTime: 60, ShortBreakTime: 60}, ErrEmptyName},
		{"zero work", NewTimer{Name: "a", WorkTime: 0, ShortBreakTime: 60}, ErrNonPositiveDuration},
		{"negative break", NewTimer{Name: "a", WorkTime: 60, ShortBreakTime: -1}, ErrNonPositiveDuration},
		{"icon too big", NewTimer{Name: "a", WorkTime: 60, ShortBreakTime: 60, IconID: iconCount}, ErrIconOutOfRange},
		{"negative icon", NewTimer{Name: "a", WorkTime: 60, ShortBreakTime: 60, IconID: -1}, ErrIconOutOfRange},
	}

	c, _ := newTestCoordinator(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateTimer(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, apperr.IsKind(err, apperr.Validation))
		})
	}

	timers, err := c.LoadTimers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, timers, "rejected input must not reach the store")
}

func TestCreateTimerTrimsName(t *testing.T) {
	c, _ := newTestCoordinator(t)

	timer, err := c.CreateTimer(context.Background(), NewTimer{Name: "  Deep work ", WorkTime: 60, ShortBreakTime: 30})
	require.NoError(t, err)
	assert.Equal(t, "Deep work", timer.Name)
}

func TestRemoveTimer(t *testing.T) {
	ctx := context.Background()
	c, db := newTestCoordinator(t)

	err := c.RemoveTimer(ctx, 77)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)

	timer := createFocus(t, c)

	_, err = c.LoadTimer(ctx, timer.ID)
	require.NoError(t, err)

	_, err = c.Start(ctx)
	require.NoError(t, err)

	err = c.RemoveTimer(ctx, timer.ID)
	assert.ErrorIs(t, err, ErrTimerInUse)

	_, err = c.Pause(ctx)
	require.NoError(t, err)

	err = c.RemoveTimer(ctx, timer.ID)
	assert.ErrorIs(t, err, ErrTimerInUse)

	_, err = db.GetTimer(ctx, timer.ID)
	require.NoError(t, err, "the timer survives a rejected removal")

	_, err = c.Reset(ctx)
	require.NoError(t, err)

	require.NoError(t, c.RemoveTimer(ctx, timer.ID))
	assert.False(t, c.Snapshot().Loaded, "stopped session is released with its timer")
}

func TestActiveTimer(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCoordinator(t)

	_, ok := c.ActiveTimer()
	assert.False(t, ok)

	timer := createFocus(t, c)

	_, err := c.LoadTimer(ctx, timer.ID)
	require.NoError(t, err)

	_, ok = c.ActiveTimer()
	assert.False(t, ok, "a loaded but stopped timer is not active")

	_, err = c.Start(ctx)
	require.NoError(t, err)

	active, ok := c.ActiveTimer()
	require.True(t, ok)
	assert.Equal(t, timer.ID, active.ID)
}

func TestCommandsAndSkipCredit(t *testing.T) {
	ctx := context.Background()
	c, db := newTestCoordinator(t)

	timer := createFocus(t, c)

	_, err := c.LoadTimer(ctx, timer.ID)
	require.NoError(t, err)

	_, err = c.Pause(ctx)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))

	snap, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Started, snap.Session.RunState)

	snap, err = c.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Paused, snap.Session.RunState)

	snap, err = c.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Started, snap.Session.RunState)

	snap, err = c.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Break, snap.Session.Stage)

	_, err = c.Command(ctx, "rewind")
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	records, err := c.History(ctx, time.Now().Add(-time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Skipped)
	assert.Equal(t, models.Work, records[0].Stage)

	stored, err := db.GetTimer(ctx, timer.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalWorkTime, "skip straight after start credits zero seconds")
}

func TestResetServiceIsNotStarted(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCoordinator(t)

	timer := createFocus(t, c)

	_, err := c.LoadTimer(ctx, timer.ID)
	require.NoError(t, err)

	_, err = c.Start(ctx)
	require.NoError(t, err)

	_, err = c.Pause(ctx)
	require.NoError(t, err)

	snap, err := c.ResetServiceIsNotStarted(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Loaded)
	assert.False(t, c.Snapshot().Active)
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestCoordinator(t)

	timer := createFocus(t, c)

	updates, initial := c.Watch(ctx)
	assert.False(t, initial.Loaded)

	_, err := c.LoadTimer(context.Background(), timer.ID)
	require.NoError(t, err)

	got := <-updates
	assert.Equal(t, timer.ID, got.Timer.ID)

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
