package service

import (
	"context"
	"log/slog"

	"github.com/kotleni/cats/countdown"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
)

// flushLocked writes queued credits and the session to the store. Each
// credit is committed in the same transaction as the current session.
// Failures are logged and retried on the next change; the in-memory engine
// stays authoritative.
func (s *Service) flushLocked(ctx context.Context) {
	sess := s.persistedSessionLocked()
	saved := false

	for len(s.pending) > 0 {
		rec := s.pending[0]

		err := s.store.RecordStage(ctx, &rec, sess)
		if apperr.IsKind(err, apperr.NotFound) {
			slog.WarnContext(ctx, "dropping credit for deleted timer",
				slog.Uint64("timer_id", rec.TimerID),
				slog.Int("seconds", rec.Seconds),
			)

			s.pending = s.pending[1:]

			continue
		}

		if err != nil {
			slog.ErrorContext(ctx, "crediting stage failed, will retry",
				slog.Int("pending", len(s.pending)),
				slog.Any("error", err),
			)

			break
		}

		s.pending = s.pending[1:]
		saved = true
	}

	if saved {
		return
	}

	if sess == nil {
		if err := s.store.ClearSession(ctx); err != nil {
			slog.ErrorContext(ctx, "clearing session failed, will retry", slog.Any("error", err))
		}

		return
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "saving session failed, will retry", slog.Any("error", err))
	}
}

// persistedSessionLocked returns the session to store, or nil when nothing
// should survive a restart.
func (s *Service) persistedSessionLocked() *models.Session {
	if s.engine == nil || s.engine.State() == models.Stopped {
		return nil
	}

	sess := s.engine.Session()
	sess.UpdatedAt = s.now()

	return &sess
}

// Restore re-attaches the session persisted by a previous daemon. A
// session whose timer no longer exists is discarded.
func (s *Service) Restore(ctx context.Context) error {
	sess, err := s.store.LoadSession(ctx)
	if err != nil {
		return err
	}

	if sess == nil {
		return nil
	}

	def, err := s.store.GetTimer(ctx, sess.TimerID)
	if apperr.IsKind(err, apperr.NotFound) {
		slog.WarnContext(ctx, "discarding session of deleted timer", slog.Uint64("timer_id", sess.TimerID))
		return s.store.ClearSession(ctx)
	}

	if err != nil {
		return err
	}

	e := countdown.Restore(*def, *sess)
	if e.State() == models.Stopped {
		return s.store.ClearSession(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine = e

	slog.InfoContext(ctx, "session restored",
		slog.Uint64("timer_id", def.ID),
		slog.String("state", string(e.State())),
		slog.String("stage", string(sess.Stage)),
		slog.Int("elapsed", e.Session().ElapsedSeconds),
	)

	s.publishLocked(s.snapshotLocked())

	return nil
}
