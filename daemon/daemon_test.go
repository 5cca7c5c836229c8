package daemon

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/coordinator"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/service"
	"github.com/kotleni/cats/store"
)

type testEnv struct {
	client *Client
	svc    *service.Service
	cancel context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "cats.db"))
	require.NoError(t, err)

	svc := service.New(db, service.WithTickInterval(10*time.Millisecond))
	coord := coordinator.New(db, svc, 12)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	srv := httptest.NewServer(NewServer(coord))

	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
		db.Close()
	})

	return &testEnv{
		client: &Client{http: srv.Client(), baseURL: srv.URL, address: srv.Listener.Addr().String()},
		svc:    svc,
		cancel: cancel,
	}
}

func createFocus(t *testing.T, c *Client) *models.TimerDefinition {
	t.Helper()

	timer, err := c.CreateTimer(context.Background(), coordinator.NewTimer{
		Name:           "Focus",
		IconID:         2,
		WorkTime:       1800,
		ShortBreakTime: 300,
	})
	require.NoError(t, err)

	return timer
}

func TestTimersEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	timer := createFocus(t, env.client)
	assert.Equal(t, "Focus", timer.Name)

	timers, err := env.client.LoadTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, 1800, timers[0].WorkTime)
	assert.Equal(t, 300, timers[0].ShortBreakTime)

	_, err = env.client.CreateTimer(ctx, coordinator.NewTimer{Name: "", WorkTime: 1, ShortBreakTime: 1})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	require.NoError(t, env.client.RemoveTimer(ctx, timer.ID))

	err = env.client.RemoveTimer(ctx, timer.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestSessionCommands(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	timer := createFocus(t, env.client)

	_, ok, err := env.client.ActiveTimer(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.client.Start(ctx)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))

	_, err = env.client.LoadTimer(ctx, 999)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	snap, err := env.client.LoadTimer(ctx, timer.ID)
	require.NoError(t, err)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Active)

	snap, err = env.client.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Started, snap.Session.RunState)

	active, ok, err := env.client.ActiveTimer(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, timer.ID, active.ID)

	snap, err = env.client.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Paused, snap.Session.RunState)

	_, err = env.client.Command(ctx, "rewind")
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	snap, err = env.client.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Break, snap.Session.Stage)

	records, err := env.client.History(ctx, time.Now().Add(-time.Hour), timer.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Skipped)

	snap, err = env.client.ResetServiceIsNotStarted(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Loaded)

	got, err := env.client.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, got.Loaded)
}

func TestWatchStreamsSnapshots(t *testing.T) {
	env := newTestEnv(t)

	timer := createFocus(t, env.client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := env.client.Watch(ctx)
	require.NoError(t, err)

	first := <-updates
	assert.False(t, first.Loaded, "first event is the current snapshot")

	require.Eventually(t, func() bool {
		return env.svc.Observers() == 1
	}, time.Second, 5*time.Millisecond)

	_, err = env.client.LoadTimer(context.Background(), timer.ID)
	require.NoError(t, err)

	_, err = env.client.Start(context.Background())
	require.NoError(t, err)

	deadline := time.After(3 * time.Second)

	for {
		select {
		case snap, ok := <-updates:
			require.True(t, ok, "stream closed early")

			if snap.Session.ElapsedSeconds >= 2 {
				cancel()

				require.Eventually(t, func() bool {
					return env.svc.Observers() == 0
				}, time.Second, 5*time.Millisecond, "disconnect unbinds")

				return
			}
		case <-deadline:
			t.Fatal("no ticking snapshots received")
		}
	}
}

func TestHistoryBadQuery(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.do(context.Background(), "GET", "/history?since=yesterday", nil, nil)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	err = env.client.do(context.Background(), "DELETE", "/timers/abc", nil, nil)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestDaemonUnavailable(t *testing.T) {
	c := NewClient("127.0.0.1:1")

	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrDaemonUnavailable)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, statusFor(apperr.New(apperr.Validation, "x")))
	assert.Equal(t, 404, statusFor(apperr.New(apperr.NotFound, "x")))
	assert.Equal(t, 409, statusFor(apperr.New(apperr.InvalidTransition, "x")))
	assert.Equal(t, 503, statusFor(apperr.New(apperr.Persistence, "x")))
	assert.Equal(t, 500, statusFor(assert.AnError))
}
