// Package storetest holds the conformance suite every store.DB
// implementation must pass
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/store"
)

// Factory returns an empty database that is closed when the test ends.
type Factory func(t *testing.T) store.DB

// Run exercises db against the store contracts.
func Run(t *testing.T, newDB Factory) {
	t.Helper()

	t.Run("create then list", func(t *testing.T) { testCreateList(t, newDB(t)) })
	t.Run("ids are unique", func(t *testing.T) { testUniqueIDs(t, newDB(t)) })
	t.Run("get and delete unknown", func(t *testing.T) { testNotFound(t, newDB(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newDB(t)) })
	t.Run("add completed stage time", func(t *testing.T) { testAddStageTime(t, newDB(t)) })
	t.Run("session round trip", func(t *testing.T) { testSessionRoundTrip(t, newDB(t)) })
	t.Run("record stage", func(t *testing.T) { testRecordStage(t, newDB(t)) })
}

func testCreateList(t *testing.T, db store.DB) {
	ctx := context.Background()

	created, err := db.CreateTimer(ctx, "Focus", 2, 30*60, 5*60)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	timers, err := db.ListTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)

	got := timers[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Focus", got.Name)
	assert.Equal(t, 2, got.IconID)
	assert.Equal(t, 1800, got.WorkTime)
	assert.Equal(t, 300, got.ShortBreakTime)
	assert.Zero(t, got.TotalWorkTime)
	assert.Zero(t, got.TotalBreakTime)
}

func testUniqueIDs(t *testing.T, db store.DB) {
	ctx := context.Background()

	a, err := db.CreateTimer(ctx, "a", 0, 60, 60)
	require.NoError(t, err)

	b, err := db.CreateTimer(ctx, "b", 0, 60, 60)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)

	timers, err := db.ListTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 2)
	assert.Equal(t, "a", timers[0].Name)
	assert.Equal(t, "b", timers[1].Name)
}

func testNotFound(t *testing.T, db store.DB) {
	ctx := context.Background()

	_, err := db.GetTimer(ctx, 42)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	err = db.DeleteTimer(ctx, 42)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)

	err = db.AddCompletedStageTime(ctx, 42, models.Work, 10)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)
}

func testDelete(t *testing.T, db store.DB) {
	ctx := context.Background()

	created, err := db.CreateTimer(ctx, "Focus", 0, 60, 60)
	require.NoError(t, err)

	require.NoError(t, db.DeleteTimer(ctx, created.ID))

	_, err = db.GetTimer(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)

	timers, err := db.ListTimers(ctx)
	require.NoError(t, err)
	assert.Empty(t, timers)
}

func testAddStageTime(t *testing.T, db store.DB) {
	ctx := context.Background()

	created, err := db.CreateTimer(ctx, "Focus", 0, 1800, 300)
	require.NoError(t, err)

	require.NoError(t, db.AddCompletedStageTime(ctx, created.ID, models.Work, 1800))
	require.NoError(t, db.AddCompletedStageTime(ctx, created.ID, models.Break, 10))
	require.NoError(t, db.AddCompletedStageTime(ctx, created.ID, models.Work, 5))

	got, err := db.GetTimer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1805, got.TotalWorkTime)
	assert.Equal(t, 10, got.TotalBreakTime)
}

func testSessionRoundTrip(t *testing.T, db store.DB) {
	ctx := context.Background()

	none, err := db.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	want := &models.Session{
		RunID:          "c0ffee",
		TimerID:        7,
		RunState:       models.Paused,
		Stage:          models.Break,
		ElapsedSeconds: 123,
		UpdatedAt:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, db.SaveSession(ctx, want))

	got, err := db.LoadSession(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, db.ClearSession(ctx))

	none, err = db.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testRecordStage(t *testing.T, db store.DB) {
	ctx := context.Background()

	a, err := db.CreateTimer(ctx, "a", 0, 1800, 300)
	require.NoError(t, err)

	b, err := db.CreateTimer(ctx, "b", 0, 1500, 300)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	records := []models.StageRecord{
		{RunID: "r1", TimerID: a.ID, Stage: models.Work, Seconds: 1800, EndedAt: base},
		{RunID: "r1", TimerID: a.ID, Stage: models.Break, Seconds: 10, Skipped: true, EndedAt: base.Add(time.Hour)},
		{RunID: "r2", TimerID: b.ID, Stage: models.Work, Seconds: 1500, EndedAt: base.Add(2 * time.Hour)},
		{RunID: "r2", TimerID: b.ID, Stage: models.Break, Seconds: 300, EndedAt: base.Add(2 * time.Hour)},
	}

	var last *models.Session

	for i := range records {
		last = &models.Session{
			RunID:     records[i].RunID,
			TimerID:   records[i].TimerID,
			RunState:  models.Started,
			Stage:     models.Break,
			UpdatedAt: records[i].EndedAt,
		}

		require.NoError(t, db.RecordStage(ctx, &records[i], last))
	}

	sess, err := db.LoadSession(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(last, sess); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}

	gotA, err := db.GetTimer(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1800, gotA.TotalWorkTime)
	assert.Equal(t, 10, gotA.TotalBreakTime)

	all, err := db.StageRecords(ctx, base, base.Add(24*time.Hour), 0)
	require.NoError(t, err)

	if diff := cmp.Diff(records, all); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}

	onlyB, err := db.StageRecords(ctx, base, base.Add(24*time.Hour), b.ID)
	require.NoError(t, err)
	assert.Len(t, onlyB, 2)

	window, err := db.StageRecords(ctx, base.Add(30*time.Minute), base.Add(90*time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.True(t, window[0].Skipped)

	err = db.RecordStage(ctx, &models.StageRecord{TimerID: 99, Stage: models.Work, Seconds: 1, EndedAt: base}, nil)
	assert.ErrorIs(t, err, store.ErrTimerNotFound)

	// a failed credit leaves the session untouched
	sess, err = db.LoadSession(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(last, sess); diff != "" {
		t.Fatalf("session changed by failed credit (-want +got):\n%s", diff)
	}

	none, err := db.StageRecords(ctx, base.Add(-time.Hour), base.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	final := models.StageRecord{RunID: "r2", TimerID: b.ID, Stage: models.Work, Seconds: 60, EndedAt: base.Add(3 * time.Hour)}
	require.NoError(t, db.RecordStage(ctx, &final, nil))

	sess, err = db.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	gotB, err := db.GetTimer(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1560, gotB.TotalWorkTime)
}
