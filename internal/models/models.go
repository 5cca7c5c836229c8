// Package models defines the records shared by the engine, the stores and the
// daemon API
package models

import "time"

// Stage is the current phase of a running timer.
type Stage string

const (
	Work  Stage = "work"
	Break Stage = "break"
)

// Next returns the stage that follows s.
func (s Stage) Next() Stage {
	if s == Work {
		return Break
	}

	return Work
}

func (s Stage) String() string {
	if s == Break {
		return "Break time"
	}

	return "Work time"
}

// RunState is the lifecycle status of a session.
type RunState string

const (
	Stopped RunState = "stopped"
	Paused  RunState = "paused"
	Started RunState = "started"
)

// TimerDefinition is a saved timer configuration with cumulative usage
// totals. All durations are in seconds.
type TimerDefinition struct {
	CreatedAt      time.Time `json:"created_at"       yaml:"created_at"`
	Name           string    `json:"name"             yaml:"name"`
	ID             uint64    `json:"id"               yaml:"id"`
	IconID         int       `json:"icon_id"          yaml:"icon_id"`
	WorkTime       int       `json:"work_time"        yaml:"work_time"`
	ShortBreakTime int       `json:"short_break_time" yaml:"short_break_time"`
	TotalWorkTime  int       `json:"total_work_time"  yaml:"total_work_time"`
	TotalBreakTime int       `json:"total_break_time" yaml:"total_break_time"`
}

// Duration returns the configured length of a stage.
func (t *TimerDefinition) Duration(stage Stage) int {
	if stage == Break {
		return t.ShortBreakTime
	}

	return t.WorkTime
}

// Credit adds seconds to the total that matches stage.
func (t *TimerDefinition) Credit(stage Stage, seconds int) {
	if stage == Break {
		t.TotalBreakTime += seconds
		return
	}

	t.TotalWorkTime += seconds
}

// Session is the live execution of one TimerDefinition.
type Session struct {
	UpdatedAt      time.Time `json:"updated_at"`
	RunID          string    `json:"run_id"`
	RunState       RunState  `json:"run_state"`
	Stage          Stage     `json:"stage"`
	TimerID        uint64    `json:"timer_id"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
}

// Snapshot is the observable state published by the session service.
type Snapshot struct {
	Timer         TimerDefinition `json:"timer"`
	Session       Session         `json:"session"`
	StageDuration int             `json:"stage_duration"`
	Active        bool            `json:"active"`
	Loaded        bool            `json:"loaded"`
}

// Remaining returns the seconds left in the current stage.
func (s Snapshot) Remaining() int {
	r := s.StageDuration - s.Session.ElapsedSeconds
	if r < 0 {
		return 0
	}

	return r
}

// Progress returns the fraction of the current stage that has elapsed.
func (s Snapshot) Progress() float64 {
	if s.StageDuration <= 0 {
		return 0
	}

	return float64(s.Session.ElapsedSeconds) / float64(s.StageDuration)
}

// StageRecord is a credited stage kept for history reporting.
type StageRecord struct {
	EndedAt time.Time `json:"ended_at"`
	RunID   string    `json:"run_id"`
	Stage   Stage     `json:"stage"`
	TimerID uint64    `json:"timer_id"`
	Seconds int       `json:"seconds"`
	Skipped bool      `json:"skipped"`
}
