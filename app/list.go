package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/maruel/natural"
	"gopkg.in/yaml.v3"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/timeutil"
	"github.com/kotleni/cats/internal/ui"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"

	sortByID   = "id"
	sortByName = "name"

	noTimersMsg  = "No timers saved yet. Create one with 'cats create'"
	noStagesMsg  = "No stages recorded for the specified time range"
	noSessionMsg = "No timer is loaded. Start one with 'cats start <id>'"

	dateLayout = "Jan 02, 2006 03:04 PM"
)

var (
	errInvalidFormat = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "unknown output format %q: expected table, json or yaml",
	}

	errInvalidSort = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "unknown sort key %q: expected id or name",
	}
)

// sortTimers orders timers by id or by name. Names are compared in
// natural order so that "Timer 2" sorts before "Timer 10".
func sortTimers(timers []models.TimerDefinition, by string) error {
	switch by {
	case "", sortByID:
		sort.SliceStable(timers, func(i, j int) bool {
			return timers[i].ID < timers[j].ID
		})
	case sortByName:
		sort.SliceStable(timers, func(i, j int) bool {
			return natural.Less(timers[i].Name, timers[j].Name)
		})
	default:
		return errInvalidSort.Fmt(by)
	}

	return nil
}

// encode writes v as JSON or YAML. It reports false for the table format.
func encode(w io.Writer, v any, format string) (bool, error) {
	switch format {
	case "", formatTable:
		return false, nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return true, err
		}

		return true, enc.Close()
	default:
		return true, errInvalidFormat.Fmt(format)
	}
}

// writeTimers prints the saved timers with their totals.
func writeTimers(w io.Writer, timers []models.TimerDefinition, format string) error {
	if timers == nil {
		timers = []models.TimerDefinition{}
	}

	if ok, err := encode(w, timers, format); ok {
		return err
	}

	if len(timers) == 0 {
		_, err := fmt.Fprintln(w, noTimersMsg)
		return err
	}

	tableBody := make([][]string, 0, len(timers)+1)

	tableBody = append(tableBody, []string{
		"ID", "ICON", "NAME", "WORK", "BREAK", "TOTAL WORK", "TOTAL BREAK",
	})

	for i := range timers {
		t := &timers[i]

		tableBody = append(tableBody, []string{
			strconv.FormatUint(t.ID, 10),
			ui.Icon(t.IconID),
			t.Name,
			timeutil.Minutes(t.WorkTime),
			timeutil.Minutes(t.ShortBreakTime),
			ui.Red(timeutil.Minutes(t.TotalWorkTime)),
			ui.Green(timeutil.Minutes(t.TotalBreakTime)),
		})
	}

	return ui.PrintTable(tableBody, w)
}

// writeStatus prints a two line summary of snap.
func writeStatus(w io.Writer, snap models.Snapshot, format string) error {
	if ok, err := encode(w, snap, format); ok {
		return err
	}

	if !snap.Loaded {
		_, err := fmt.Fprintln(w, noSessionMsg)
		return err
	}

	t := snap.Timer
	sess := snap.Session

	_, err := fmt.Fprintf(
		w,
		"%s %s · %s · %s · %s left\nTotal work %s · Total break %s\n",
		ui.Icon(t.IconID),
		ui.Highlight(t.Name),
		ui.StageColor(sess.Stage, sess.Stage),
		ui.StateColor(sess.RunState),
		timeutil.Clock(snap.Remaining()),
		timeutil.Minutes(t.TotalWorkTime),
		timeutil.Minutes(t.TotalBreakTime),
	)

	return err
}

func timerNames(timers []models.TimerDefinition) map[uint64]string {
	names := make(map[uint64]string, len(timers))

	for i := range timers {
		names[timers[i].ID] = ui.Icon(timers[i].IconID) + " " + timers[i].Name
	}

	return names
}

// writeHistory prints the recorded stages followed by per-stage totals.
// Stages of deleted timers are listed by id.
func writeHistory(
	w io.Writer,
	records []models.StageRecord,
	names map[uint64]string,
	format string,
) error {
	if records == nil {
		records = []models.StageRecord{}
	}

	if ok, err := encode(w, records, format); ok {
		return err
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, noStagesMsg)
		return err
	}

	tableBody := make([][]string, 0, len(records)+1)

	tableBody = append(tableBody, []string{
		"#", "TIMER", "STAGE", "DURATION", "ENDED", "STATUS",
	})

	var work, rest int

	for i := range records {
		rec := &records[i]

		name, ok := names[rec.TimerID]
		if !ok {
			name = fmt.Sprintf("timer %d (deleted)", rec.TimerID)
		}

		status := ui.Green("completed")
		if rec.Skipped {
			status = ui.Yellow("skipped")
		}

		if rec.Stage == models.Break {
			rest += rec.Seconds
		} else {
			work += rec.Seconds
		}

		tableBody = append(tableBody, []string{
			strconv.Itoa(i + 1),
			name,
			ui.StageColor(rec.Stage, rec.Stage),
			timeutil.Clock(rec.Seconds),
			rec.EndedAt.Local().Format(dateLayout),
			status,
		})
	}

	if err := ui.PrintTable(tableBody, w); err != nil {
		return err
	}

	_, err := fmt.Fprintf(
		w,
		"Work: %s · Break: %s\n",
		ui.Red(timeutil.Minutes(work)),
		ui.Green(timeutil.Minutes(rest)),
	)

	return err
}

// writeIcons prints the icon catalog that --icon indexes into.
func writeIcons(w io.Writer) error {
	tableBody := [][]string{{"ID", "ICON"}}

	for i := range ui.IconCount() {
		tableBody = append(tableBody, []string{strconv.Itoa(i), ui.Icon(i)})
	}

	return ui.PrintTable(tableBody, w)
}
