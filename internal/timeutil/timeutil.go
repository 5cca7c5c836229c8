// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

const (
	secondsInAMinute = 60
	minutesInAnHour  = 60
	HoursInADay      = 24
	MaxHoursInAMonth = 744  // 31 day months
	MaxHoursInAYear  = 8784 // Leap years
)

const dayLayout = "20060102"

type Period string

const (
	PeriodAllTime   Period = "all-time"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	Period7Days     Period = "7days"
	Period14Days    Period = "14days"
	Period30Days    Period = "30days"
)

var Range = map[Period]int{
	PeriodAllTime:   0,
	PeriodToday:     0,
	PeriodYesterday: -1,
	Period7Days:     -6,
	Period14Days:    -13,
	Period30Days:    -29,
}

var PeriodCollection = []Period{
	PeriodAllTime,
	PeriodToday,
	PeriodYesterday,
	Period7Days,
	Period14Days,
	Period30Days,
}

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int {
	return int(math.Round(t))
}

// SecsToMinsAndSecs expresses a seconds value in minutes and seconds.
func SecsToMinsAndSecs(val int) (mins, secs int) {
	if val < 0 {
		val = 0
	}

	return val / secondsInAMinute, val % secondsInAMinute
}

// MinsToHoursAndMins expresses a minutes value in hours and mins.
func MinsToHoursAndMins(val int) (hrs, mins int) {
	hrs = int(math.Floor(float64(val) / float64(minutesInAnHour)))
	mins = val % minutesInAnHour

	return
}

// Clock formats a number of seconds as MM:SS. Minutes are not wrapped into
// hours, so a 90 minute stage reads 90:00.
func Clock(seconds int) string {
	m, s := SecsToMinsAndSecs(seconds)

	return fmt.Sprintf("%02d:%02d", m, s)
}

// Minutes formats a number of seconds as a whole-minute string.
func Minutes(seconds int) string {
	return fmt.Sprintf("%d min", seconds/secondsInAMinute)
}

// ParseDuration accepts Go duration strings ("25m", "1h30m") as well as bare
// numbers, which are read as minutes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Minute, nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	return dur, nil
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}

// DayFormat returns the date of t as a YYYYMMDD integer.
func DayFormat(t time.Time) int {
	i, _ := strconv.Atoi(t.Format(dayLayout))

	return i
}

// FromDay reverses DayFormat in the given location.
func FromDay(day int, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayLayout, strconv.Itoa(day), loc)
}

// PeriodStart returns the start of the given reporting period relative to now.
// The zero time is returned for PeriodAllTime.
func PeriodStart(p Period, now time.Time) (time.Time, error) {
	days, ok := Range[p]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown period: %s", p)
	}

	if p == PeriodAllTime {
		return time.Time{}, nil
	}

	return RoundToStart(now.AddDate(0, 0, days)), nil
}

// FromStr parses a human readable date such as "yesterday" or "3 hours ago".
// Dates without an explicit direction are resolved into the past.
func FromStr(s string) (time.Time, error) {
	cfg := &dps.Configuration{
		CurrentTime:         time.Now(),
		PreferredDateSource: dps.Past,
	}

	dt, err := dps.Parse(cfg, s)
	if err != nil {
		return time.Time{}, err
	}

	return dt.Time, nil
}

// keyLayout is fixed width so that keys sort in time order.
const keyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ToKey converts a time value to a database key for Bolt.
func ToKey(t time.Time) []byte {
	return []byte(t.UTC().Format(keyLayout))
}
