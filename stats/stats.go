// Package stats reports how much time was spent working over a reporting
// period
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/timeutil"
	"github.com/kotleni/cats/internal/ui"
)

const (
	barChartChar  = "▇"
	noStagesMsg   = "No stages recorded for the specified time range"
	reportDateFmt = "January 02, 2006"
)

type aggregatePeriod string

const (
	monthly aggregatePeriod = "Monthly"
	daily   aggregatePeriod = "Daily"
	yearly  aggregatePeriod = "Yearly"
	weekly  aggregatePeriod = "Weekly"
	hourly  aggregatePeriod = "Hourly"
)

// Summary holds the totals for the reporting period.
type Summary struct {
	Timers    map[string]time.Duration `json:"timers"`
	Work      time.Duration            `json:"work"`
	Break     time.Duration            `json:"break"`
	AvgWork   time.Duration            `json:"avg_work"`
	Completed int                      `json:"completed"`
	Skipped   int                      `json:"skipped"`
}

// Aggregates holds work time broken down by calendar unit. Daily keys are
// YYYYMMDD integers.
type Aggregates struct {
	Yearly  map[int]time.Duration `json:"yearly"`
	Monthly map[int]time.Duration `json:"monthly"`
	Weekly  map[int]time.Duration `json:"weekly"`
	Daily   map[int]time.Duration `json:"daily"`
	Hourly  map[int]time.Duration `json:"hourly"`
}

// Stats is the computed report for one reporting period.
type Stats struct {
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	Summary    Summary    `json:"summary"`
	Aggregates Aggregates `json:"aggregates"`
	empty      bool
}

func populateMap(lastKey int) map[int]time.Duration {
	m := make(map[int]time.Duration)

	for i := 0; i <= lastKey; i++ {
		m[i] = 0
	}

	return m
}

// stageBounds returns the wall-clock interval a record covers, clipped to
// the reporting period. ok is false when nothing of it falls inside.
func (s *Stats) stageBounds(rec *models.StageRecord) (begin, end time.Time, ok bool) {
	loc := s.EndTime.Location()

	end = rec.EndedAt.In(loc)
	begin = end.Add(-time.Duration(rec.Seconds) * time.Second)

	if begin.Before(s.StartTime) {
		begin = s.StartTime
	}

	if end.After(s.EndTime) {
		end = s.EndTime
	}

	return begin, end, end.After(begin)
}

// spread adds the interval to every aggregate, splitting it on local hour
// boundaries so that stages crossing midnight land on both days.
func (s *Stats) spread(begin, end time.Time) {
	for begin.Before(end) {
		next := time.Date(
			begin.Year(),
			begin.Month(),
			begin.Day(),
			begin.Hour()+1,
			0,
			0,
			0,
			begin.Location(),
		)
		if next.After(end) {
			next = end
		}

		d := next.Sub(begin)

		s.Aggregates.Yearly[begin.Year()] += d
		s.Aggregates.Monthly[int(begin.Month())] += d
		s.Aggregates.Weekly[int(begin.Weekday())] += d
		s.Aggregates.Daily[timeutil.DayFormat(begin)] += d
		s.Aggregates.Hourly[begin.Hour()] += d

		begin = next
	}
}

// Compute builds the report for the stages in records. names maps timer ids
// to display names. A zero start is moved to the day of the first stage.
func Compute(
	records []models.StageRecord,
	names map[uint64]string,
	start, end time.Time,
) *Stats {
	if start.IsZero() {
		start = timeutil.RoundToStart(end)

		if len(records) > 0 {
			first := records[0].EndedAt.Add(-time.Duration(records[0].Seconds) * time.Second)
			start = timeutil.RoundToStart(first.In(end.Location()))
		}
	}

	s := &Stats{
		StartTime: start,
		EndTime:   end,
		Summary: Summary{
			Timers: make(map[string]time.Duration),
		},
		Aggregates: Aggregates{
			Yearly:  populateMap(-1),
			Monthly: populateMap(-1),
			//nolint:mnd // 0-6 days
			Weekly: populateMap(6),
			Daily:  make(map[int]time.Duration),
			//nolint:mnd // 0-23 hours
			Hourly: populateMap(23),
		},
		empty: len(records) == 0,
	}

	for date := timeutil.RoundToStart(start); date.Before(end); date = date.AddDate(0, 0, 1) {
		s.Aggregates.Daily[timeutil.DayFormat(date)] = 0
	}

	for i := range records {
		rec := &records[i]

		begin, stop, ok := s.stageBounds(rec)
		if !ok {
			continue
		}

		d := stop.Sub(begin)

		if rec.Stage == models.Break {
			s.Summary.Break += d
			continue
		}

		s.Summary.Work += d

		if rec.Skipped {
			s.Summary.Skipped++
		} else {
			s.Summary.Completed++
		}

		name, found := names[rec.TimerID]
		if !found {
			name = fmt.Sprintf("timer %d", rec.TimerID)
		}

		s.Summary.Timers[name] += d

		s.spread(begin, stop)
	}

	numberOfDays := max(1, timeutil.Round(end.Sub(start).Hours())/timeutil.HoursInADay)

	s.Summary.AvgWork = s.Summary.Work / time.Duration(numberOfDays)

	return s
}

// formatDuration renders d in hours and minutes.
func formatDuration(d time.Duration) string {
	hrs, mins := timeutil.MinsToHoursAndMins(timeutil.Round(d.Minutes()))

	if hrs == 0 {
		return fmt.Sprintf("%d min", mins)
	}

	return fmt.Sprintf("%dh %02dm", hrs, mins)
}

func barLabel(key int, period aggregatePeriod, loc *time.Location) string {
	switch period {
	case yearly:
		return fmt.Sprintf("%d", key)
	case monthly:
		return time.Month(key).String()
	case weekly:
		return time.Weekday(key).String()
	case daily:
		date, err := timeutil.FromDay(key, loc)
		if err != nil {
			return fmt.Sprintf("%d", key)
		}

		return date.Format("Jan 02, 2006")
	case hourly:
		return fmt.Sprintf("%02d:00", key)
	}

	return ""
}

func (s *Stats) barChart(data map[int]time.Duration, period aggregatePeriod) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	header := ui.Cyan(fmt.Sprintf("\n%s breakdown (minutes)", period))

	keys := make([]int, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	bars := make(pterm.Bars, 0, len(keys))

	for _, k := range keys {
		bars = append(bars, pterm.Bar{
			Value: timeutil.Round(data[k].Minutes()),
			Label: barLabel(k, period, s.EndTime.Location()),
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		return "", err
	}

	return header + chart, nil
}

func (s *Stats) summary() string {
	header := fmt.Sprintf("%s\n", ui.Cyan("Summary"))

	work := fmt.Sprintf("Work logged: %s\n", ui.Red(formatDuration(s.Summary.Work)))
	rest := fmt.Sprintf("Break taken: %s\n", ui.Green(formatDuration(s.Summary.Break)))
	completed := fmt.Sprintln("Work stages completed:", ui.Green(s.Summary.Completed))
	skipped := fmt.Sprintln("Work stages skipped:", ui.Yellow(s.Summary.Skipped))
	avg := fmt.Sprintf("Daily average: %s\n", ui.Green(formatDuration(s.Summary.AvgWork)))

	return header + work + rest + completed + skipped + avg
}

// timers lists the work time per timer, longest first.
func (s *Stats) timers() string {
	if len(s.Summary.Timers) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Cyan("Timers")))

	type keyValue struct {
		key   string
		value time.Duration
	}

	kv := make([]keyValue, 0, len(s.Summary.Timers))
	for k, v := range s.Summary.Timers {
		kv = append(kv, keyValue{k, v})
	}

	sort.SliceStable(kv, func(i, j int) bool {
		if kv[i].value == kv[j].value {
			return kv[i].key < kv[j].key
		}

		return kv[i].value > kv[j].value
	})

	for _, v := range kv {
		builder.WriteString(fmt.Sprintf("%s: %s\n", v.key, ui.Green(formatDuration(v.value))))
	}

	return builder.String()
}

// Write prints the report with a breakdown chart sized to the period.
func (s *Stats) Write(w io.Writer) error {
	if s.empty {
		_, err := fmt.Fprintln(w, noStagesMsg)
		return err
	}

	timePeriod := "Reporting period: " + s.StartTime.Format(reportDateFmt) +
		" - " + s.EndTime.Format(reportDateFmt)

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintln(timePeriod)

	hoursDiff := timeutil.Round(s.EndTime.Sub(s.StartTime).Hours())

	history := s.Aggregates.Monthly
	period := monthly

	switch {
	case hoursDiff > timeutil.HoursInADay && hoursDiff <= timeutil.MaxHoursInAMonth:
		history, period = s.Aggregates.Daily, daily
	case hoursDiff > timeutil.MaxHoursInAYear:
		history, period = s.Aggregates.Yearly, yearly
	}

	charts := make([]string, 0, 3)

	for _, c := range []struct {
		data   map[int]time.Duration
		period aggregatePeriod
	}{
		{history, period},
		{s.Aggregates.Weekly, weekly},
		{s.Aggregates.Hourly, hourly},
	} {
		chart, err := s.barChart(c.data, c.period)
		if err != nil {
			return err
		}

		charts = append(charts, chart)
	}

	output := header + s.summary() + s.timers() + strings.Join(charts, "")

	_, err := fmt.Fprintln(w, strings.TrimSpace(output))

	return err
}

// ToJSON encodes the report.
func (s *Stats) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
