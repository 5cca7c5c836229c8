// Package countdown implements the work/break state machine that drives a
// running timer. An Engine performs no I/O and is not safe for concurrent
// use; callers serialize access.
package countdown

import (
	"github.com/google/uuid"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
)

var ErrInvalidTransition = &apperr.Error{
	Kind:    apperr.InvalidTransition,
	Message: "cannot %s a %s session",
}

// Transition describes a stage change and the seconds it credited to the
// finished stage.
type Transition struct {
	From    models.Stage
	To      models.Stage
	Seconds int
	Skipped bool
}

// Engine owns the run state, stage and elapsed seconds of one session.
type Engine struct {
	timer   models.TimerDefinition
	session models.Session
	newID   func() string
}

// New returns a stopped engine attached to timer.
func New(timer models.TimerDefinition) *Engine {
	return &Engine{
		timer: timer,
		session: models.Session{
			TimerID:  timer.ID,
			RunState: models.Stopped,
			Stage:    models.Work,
		},
		newID: uuid.NewString,
	}
}

// Restore rebuilds an engine from a persisted session. Elapsed seconds are
// clamped to the current stage duration so that the next tick completes the
// stage at most once.
func Restore(timer models.TimerDefinition, sess models.Session) *Engine {
	e := New(timer)

	if sess.Stage != models.Break {
		sess.Stage = models.Work
	}

	switch sess.RunState {
	case models.Started, models.Paused:
	default:
		sess.RunState = models.Stopped
	}

	sess.TimerID = timer.ID
	sess.ElapsedSeconds = max(0, min(sess.ElapsedSeconds, e.durationOf(sess.Stage)))

	e.session = sess

	return e
}

// durationOf returns the configured length of stage. A duration of zero or
// less is treated as one second so that a tick never triggers more than one
// transition.
func (e *Engine) durationOf(stage models.Stage) int {
	d := e.timer.Duration(stage)
	if d <= 0 {
		return 1
	}

	return d
}

// StageDuration returns the effective length of the current stage.
func (e *Engine) StageDuration() int {
	return e.durationOf(e.session.Stage)
}

// Definition returns the attached timer, including totals credited by this
// engine.
func (e *Engine) Definition() models.TimerDefinition {
	return e.timer
}

// Session returns a copy of the current session state.
func (e *Engine) Session() models.Session {
	return e.session
}

// State returns the current run state.
func (e *Engine) State() models.RunState {
	return e.session.RunState
}

// Snapshot returns the observable state of the engine.
func (e *Engine) Snapshot() models.Snapshot {
	return models.Snapshot{
		Timer:         e.timer,
		Session:       e.session,
		StageDuration: e.StageDuration(),
		Active:        e.session.RunState != models.Stopped,
		Loaded:        true,
	}
}

func (e *Engine) invalid(op string) error {
	return ErrInvalidTransition.Fmt(op, e.session.RunState)
}

// Tick advances the countdown by one second. When the stage completes, its
// full duration is credited and the engine moves to the next stage.
func (e *Engine) Tick() (*Transition, error) {
	if e.session.RunState != models.Started {
		return nil, e.invalid("tick")
	}

	e.session.ElapsedSeconds++

	if e.session.ElapsedSeconds < e.StageDuration() {
		return nil, nil
	}

	return e.transition(e.StageDuration(), false), nil
}

// Start begins a new run in the work stage.
func (e *Engine) Start() error {
	if e.session.RunState != models.Stopped {
		return e.invalid("start")
	}

	e.session.RunState = models.Started
	e.session.Stage = models.Work
	e.session.ElapsedSeconds = 0
	e.session.RunID = e.newID()

	return nil
}

func (e *Engine) Pause() error {
	if e.session.RunState != models.Started {
		return e.invalid("pause")
	}

	e.session.RunState = models.Paused

	return nil
}

func (e *Engine) Resume() error {
	if e.session.RunState != models.Paused {
		return e.invalid("resume")
	}

	e.session.RunState = models.Started

	return nil
}

// Skip ends the current stage immediately, crediting only the seconds that
// have elapsed. The run state is left as it was.
func (e *Engine) Skip() (*Transition, error) {
	if e.session.RunState == models.Stopped {
		return nil, e.invalid("skip")
	}

	return e.transition(e.session.ElapsedSeconds, true), nil
}

// Reset abandons the run without crediting any progress.
func (e *Engine) Reset() error {
	if e.session.RunState == models.Stopped {
		return e.invalid("reset")
	}

	e.session.RunState = models.Stopped
	e.session.Stage = models.Work
	e.session.ElapsedSeconds = 0
	e.session.RunID = ""

	return nil
}

func (e *Engine) transition(seconds int, skipped bool) *Transition {
	t := &Transition{
		From:    e.session.Stage,
		To:      e.session.Stage.Next(),
		Seconds: seconds,
		Skipped: skipped,
	}

	e.timer.Credit(t.From, seconds)
	e.session.Stage = t.To
	e.session.ElapsedSeconds = 0

	return t
}
