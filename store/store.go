// Package store persists timer definitions, the active session and the
// stage history
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
)

var (
	ErrTimerNotFound = &apperr.Error{
		Kind:    apperr.NotFound,
		Message: "timer %d not found",
	}

	ErrAlreadyRunning = &apperr.Error{
		Kind:    apperr.Persistence,
		Message: "is cats already running? Only one daemon can hold the database at a time",
	}

	ErrPersistence = &apperr.Error{
		Kind:    apperr.Persistence,
		Message: "store operation failed",
	}
)

// TimerStore is the durable list of timer definitions.
type TimerStore interface {
	// ListTimers returns all timers ordered by id.
	ListTimers(ctx context.Context) ([]models.TimerDefinition, error)
	// GetTimer returns ErrTimerNotFound for an unknown id.
	GetTimer(ctx context.Context, id uint64) (*models.TimerDefinition, error)
	// CreateTimer assigns a new id. Totals start at zero.
	CreateTimer(
		ctx context.Context,
		name string,
		iconID, workSeconds, shortBreakSeconds int,
	) (*models.TimerDefinition, error)
	// DeleteTimer returns ErrTimerNotFound for an unknown id.
	DeleteTimer(ctx context.Context, id uint64) error
	// AddCompletedStageTime atomically increments the total matching stage.
	AddCompletedStageTime(
		ctx context.Context,
		id uint64,
		stage models.Stage,
		seconds int,
	) error
}

// SessionStore keeps the single active session across restarts.
type SessionStore interface {
	SaveSession(ctx context.Context, sess *models.Session) error
	// LoadSession returns nil when no session is stored.
	LoadSession(ctx context.Context) (*models.Session, error)
	ClearSession(ctx context.Context) error
}

// HistoryStore keeps a record of every credited stage.
type HistoryStore interface {
	// RecordStage credits rec.Seconds to the timer's total, appends rec to
	// the history and stores sess as the active session in a single
	// transaction. A nil sess clears the active session.
	RecordStage(ctx context.Context, rec *models.StageRecord, sess *models.Session) error
	// StageRecords returns records that ended in [since, until], oldest
	// first. A zero timerID matches every timer.
	StageRecords(
		ctx context.Context,
		since, until time.Time,
		timerID uint64,
	) ([]models.StageRecord, error)
}

// DB is the full storage interface used by the daemon.
type DB interface {
	TimerStore
	SessionStore
	HistoryStore
	Close() error
}

// persistErr tags err as a persistence failure unless it already carries a
// kind of its own.
func persistErr(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	return ErrPersistence.Wrap(err)
}
