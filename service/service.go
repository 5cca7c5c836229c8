// Package service hosts the single countdown engine of the daemon. It ticks
// the engine on a schedule, serializes commands against it, persists the
// session after every change and broadcasts snapshots to bound observers.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kotleni/cats/countdown"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/store"
)

var (
	ErrNoSession = &apperr.Error{
		Kind:    apperr.InvalidTransition,
		Message: "no timer is loaded: load a timer before sending %s",
	}

	ErrSessionBusy = &apperr.Error{
		Kind:    apperr.InvalidTransition,
		Message: "timer %q is still %s: reset it before loading another timer",
	}

	ErrUnknownOp = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "unknown command %q (must be one of start, pause, resume, skip, reset)",
	}

	ErrTimerInUse = &apperr.Error{
		Kind:    apperr.InvalidTransition,
		Message: "timer %q has a %s session: reset it before removing the timer",
	}

	ErrAlreadyRunning = &apperr.Error{
		Kind:    apperr.Internal,
		Message: "the tick loop is already running",
	}
)

// Op is a command accepted by the service.
type Op string

const (
	OpStart  Op = "start"
	OpPause  Op = "pause"
	OpResume Op = "resume"
	OpSkip   Op = "skip"
	OpReset  Op = "reset"
)

// ParseOp converts a command name into an Op.
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case OpStart, OpPause, OpResume, OpSkip, OpReset:
		return op, nil
	default:
		return "", ErrUnknownOp.Fmt(s)
	}
}

// Store is the persistence the service depends on.
type Store interface {
	GetTimer(ctx context.Context, id uint64) (*models.TimerDefinition, error)
	store.SessionStore
	RecordStage(ctx context.Context, rec *models.StageRecord, sess *models.Session) error
}

// Service owns the active session. All fields below mu are guarded by it,
// including the observer registry.
type Service struct {
	store    Store
	now      func() time.Time
	rearm    chan struct{}
	interval time.Duration

	mu        sync.Mutex
	engine    *countdown.Engine
	observers map[uint64]chan models.Snapshot
	pending   []models.StageRecord
	nextID    uint64
	running   bool
}

// Option configures a Service.
type Option func(*Service)

// WithTickInterval sets the wall-clock length of one tick.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the time source used for persisted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New returns a service with no timer loaded.
func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:     st,
		now:       time.Now,
		rearm:     make(chan struct{}, 1),
		interval:  time.Second,
		observers: make(map[uint64]chan models.Snapshot),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns the current observable state.
func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() models.Snapshot {
	if s.engine == nil {
		return models.Snapshot{}
	}

	return s.engine.Snapshot()
}

// LoadSession attaches the engine to a timer. Loading the timer that is
// already attached returns the live snapshot. Loading a different timer
// while a run is in progress is rejected.
func (s *Service) LoadSession(ctx context.Context, timerID uint64) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok, err := s.checkLoadLocked(timerID); ok || err != nil {
		return snap, err
	}

	def, err := s.store.GetTimer(ctx, timerID)
	if err != nil {
		return s.snapshotLocked(), err
	}

	s.engine = countdown.New(*def)

	slog.InfoContext(ctx, "timer loaded", slog.Uint64("timer_id", def.ID), slog.String("name", def.Name))

	s.commitLocked(ctx)

	return s.snapshotLocked(), nil
}

// RemoveIfIdle calls remove for timerID while no command can touch the
// session. A started or paused session of timerID fails with
// ErrTimerInUse and remove is not called. Once remove succeeds, a stopped
// engine attached to timerID is released.
func (s *Service) RemoveIfIdle(
	ctx context.Context,
	timerID uint64,
	remove func(ctx context.Context) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attached := s.engine != nil && s.engine.Definition().ID == timerID

	if attached && s.engine.State() != models.Stopped {
		snap := s.engine.Snapshot()
		return ErrTimerInUse.Fmt(snap.Timer.Name, snap.Session.RunState)
	}

	if err := remove(ctx); err != nil {
		return err
	}

	if attached {
		slog.InfoContext(ctx, "timer released", slog.Uint64("timer_id", timerID))

		s.engine = nil
		s.commitLocked(ctx)
	}

	return nil
}

// checkLoadLocked reports whether timerID is already attached, or an error
// if another timer is mid-run.
func (s *Service) checkLoadLocked(timerID uint64) (models.Snapshot, bool, error) {
	if s.engine == nil {
		return models.Snapshot{}, false, nil
	}

	snap := s.engine.Snapshot()

	if snap.Timer.ID == timerID {
		return snap, true, nil
	}

	if snap.Active {
		return snap, false, ErrSessionBusy.Fmt(snap.Timer.Name, snap.Session.RunState)
	}

	return snap, false, nil
}

// Command applies op to the engine. Rejected commands leave the session
// untouched and return an InvalidTransition error with the current
// snapshot.
func (s *Service) Command(ctx context.Context, op Op) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return models.Snapshot{}, ErrNoSession.Fmt(op)
	}

	var (
		tr  *countdown.Transition
		err error
	)

	switch op {
	case OpStart:
		err = s.engine.Start()
	case OpPause:
		err = s.engine.Pause()
	case OpResume:
		err = s.engine.Resume()
	case OpSkip:
		tr, err = s.engine.Skip()
	case OpReset:
		err = s.engine.Reset()
	default:
		err = ErrUnknownOp.Fmt(op)
	}

	if err != nil {
		return s.snapshotLocked(), err
	}

	if op == OpStart || op == OpResume {
		s.rearmTicker()
	}

	s.queueCreditLocked(tr)

	slog.DebugContext(ctx, "command applied",
		slog.String("op", string(op)),
		slog.String("state", string(s.engine.State())),
	)

	s.commitLocked(ctx)

	return s.snapshotLocked(), nil
}

// ResetIfNotStarted releases the attached timer unless it is counting
// down. A paused run is reset first, discarding its partial progress. A
// started run keeps going in the background.
func (s *Service) ResetIfNotStarted(ctx context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return models.Snapshot{}, nil
	}

	switch s.engine.State() {
	case models.Started:
		return s.snapshotLocked(), nil
	case models.Paused:
		if err := s.engine.Reset(); err != nil {
			return s.snapshotLocked(), err
		}
	}

	slog.InfoContext(ctx, "timer released", slog.Uint64("timer_id", s.engine.Definition().ID))

	s.engine = nil
	s.commitLocked(ctx)

	return models.Snapshot{}, nil
}

// queueCreditLocked records a transition for the store. Credits are
// flushed in order by the next commit.
func (s *Service) queueCreditLocked(tr *countdown.Transition) {
	if tr == nil {
		return
	}

	sess := s.engine.Session()

	s.pending = append(s.pending, models.StageRecord{
		RunID:   sess.RunID,
		TimerID: sess.TimerID,
		Stage:   tr.From,
		Seconds: tr.Seconds,
		Skipped: tr.Skipped,
		EndedAt: s.now(),
	})
}

// commitLocked persists the new state and broadcasts it.
func (s *Service) commitLocked(ctx context.Context) {
	s.flushLocked(ctx)
	s.publishLocked(s.snapshotLocked())
}
