package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		59:   "00:59",
		60:   "01:00",
		1800: "30:00",
		5400: "90:00",
		-5:   "00:00",
	}

	for in, want := range cases {
		assert.Equal(t, want, Clock(in), "Clock(%d)", in)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("30")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	d, err = ParseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("soon")
	assert.Error(t, err)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)

	start, err := PeriodStart(Period7Days, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), start)

	start, err = PeriodStart(PeriodAllTime, now)
	require.NoError(t, err)
	assert.True(t, start.IsZero())

	_, err = PeriodStart("fortnight", now)
	assert.Error(t, err)
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, "30 min", Minutes(1830))
}

func TestToKeySortsChronologically(t *testing.T) {
	a := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	c := a.Add(time.Second)

	assert.Less(t, string(ToKey(a)), string(ToKey(b)))
	assert.Less(t, string(ToKey(b)), string(ToKey(c)))
	assert.Len(t, ToKey(a), len(ToKey(b)))
}

func TestDayFormat(t *testing.T) {
	d := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 20260302, DayFormat(d))

	back, err := FromDay(DayFormat(d), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, RoundToStart(d), back)
}
