package app

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/testutil"
	"github.com/kotleni/cats/internal/timeutil"
)

func TestMain(m *testing.M) {
	disableStyling()

	os.Exit(m.Run())
}

var focusTimer = models.TimerDefinition{
	ID:             1,
	Name:           "Focus",
	IconID:         0,
	WorkTime:       1800,
	ShortBreakTime: 300,
	TotalWorkTime:  3600,
	TotalBreakTime: 300,
}

func TestWriteStatus(t *testing.T) {
	reading := models.TimerDefinition{
		ID:             2,
		Name:           "Reading",
		IconID:         3,
		WorkTime:       1500,
		ShortBreakTime: 300,
	}

	testCases := []struct {
		name string
		snap models.Snapshot
	}{
		{
			name: "status_started",
			snap: models.Snapshot{
				Timer: focusTimer,
				Session: models.Session{
					TimerID:        1,
					RunState:       models.Started,
					Stage:          models.Work,
					ElapsedSeconds: 600,
				},
				StageDuration: 1800,
				Active:        true,
				Loaded:        true,
			},
		},
		{
			name: "status_paused",
			snap: models.Snapshot{
				Timer: reading,
				Session: models.Session{
					TimerID:        2,
					RunState:       models.Paused,
					Stage:          models.Break,
					ElapsedSeconds: 45,
				},
				StageDuration: 300,
				Active:        true,
				Loaded:        true,
			},
		},
		{
			name: "status_idle",
			snap: models.Snapshot{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			require.NoError(t, writeStatus(&buf, tc.snap, formatTable))

			testutil.CompareGoldenFile(t, testutil.Output{
				Name: tc.name,
				Data: buf.Bytes(),
			})
		})
	}
}

func TestWriteStatusJSON(t *testing.T) {
	var buf bytes.Buffer

	snap := models.Snapshot{Timer: focusTimer, Loaded: true, StageDuration: 1800}

	require.NoError(t, writeStatus(&buf, snap, formatJSON))

	var got models.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, snap, got)
}

func TestSortTimers(t *testing.T) {
	timers := []models.TimerDefinition{
		{ID: 3, Name: "Timer 10"},
		{ID: 1, Name: "Timer 2"},
		{ID: 2, Name: "Reading"},
	}

	require.NoError(t, sortTimers(timers, sortByName))
	assert.Equal(t, "Reading", timers[0].Name)
	assert.Equal(t, "Timer 2", timers[1].Name)
	assert.Equal(t, "Timer 10", timers[2].Name)

	require.NoError(t, sortTimers(timers, sortByID))

	for i := range timers {
		assert.Equal(t, uint64(i+1), timers[i].ID)
	}

	err := sortTimers(timers, "size")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestWriteTimers(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, writeTimers(&buf, nil, formatTable))
		assert.Equal(t, noTimersMsg+"\n", buf.String())
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, writeTimers(&buf, nil, formatJSON))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, writeTimers(&buf, []models.TimerDefinition{focusTimer}, formatTable))

		out := buf.String()
		assert.Contains(t, out, "Focus")
		assert.Contains(t, out, "30 min")
		assert.Contains(t, out, "60 min")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, writeTimers(&buf, []models.TimerDefinition{focusTimer}, formatYAML))

		out := buf.String()
		assert.Contains(t, out, "name: Focus")
		assert.Contains(t, out, "work_time: 1800")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := writeTimers(&bytes.Buffer{}, nil, "xml")
		assert.True(t, apperr.IsKind(err, apperr.Validation))
	})
}

func TestWriteHistory(t *testing.T) {
	ended := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	records := []models.StageRecord{
		{TimerID: 1, Stage: models.Work, Seconds: 1500, EndedAt: ended},
		{TimerID: 1, Stage: models.Break, Seconds: 120, EndedAt: ended, Skipped: true},
		{TimerID: 9, Stage: models.Break, Seconds: 180, EndedAt: ended},
	}

	var buf bytes.Buffer

	err := writeHistory(&buf, records, timerNames([]models.TimerDefinition{focusTimer}), formatTable)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Focus")
	assert.Contains(t, out, "timer 9 (deleted)")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "Work: 25 min · Break: 5 min")

	buf.Reset()

	require.NoError(t, writeHistory(&buf, nil, nil, formatTable))
	assert.Equal(t, noStagesMsg+"\n", buf.String())
}

func TestHistorySince(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)

	got, err := historySince("", string(timeutil.PeriodToday), now)
	require.NoError(t, err)
	assert.Equal(t, timeutil.RoundToStart(now), got)

	got, err = historySince("", string(timeutil.PeriodAllTime), now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = historySince("", "fortnight", now)
	assert.Error(t, err)
}

func TestFirstNonEmptyString(t *testing.T) {
	assert.Equal(t, "vim", firstNonEmptyString("", "vim", "nano"))
	assert.Empty(t, firstNonEmptyString("", ""))
}

func TestWriteIcons(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeIcons(&buf))
	assert.Contains(t, buf.String(), "🐱")
}
