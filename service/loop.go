package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kotleni/cats/internal/models"
)

const shutdownTimeout = 5 * time.Second

// Run drives the engine until ctx is cancelled, ticking once per interval
// while the session is started. Only one Run may be active at a time. On
// return the session is persisted as is and every observer is closed.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	s.running = true
	s.mu.Unlock()

	slog.InfoContext(ctx, "tick loop started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown(ctx)
			return nil
		case <-s.rearm:
			ticker.Reset(s.interval)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// rearmTicker restarts the tick interval so the first tick after a start
// or resume is a full interval away.
func (s *Service) rearmTicker() {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
}

// tick advances a started session by one second. Errors never stop the
// loop.
func (s *Service) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil || s.engine.State() != models.Started {
		return
	}

	tr, err := s.engine.Tick()
	if err != nil {
		slog.ErrorContext(ctx, "tick failed", slog.Any("error", err))
		return
	}

	if tr != nil {
		slog.InfoContext(ctx, "stage completed",
			slog.String("from", string(tr.From)),
			slog.String("to", string(tr.To)),
			slog.Int("seconds", tr.Seconds),
		)
	}

	s.queueCreditLocked(tr)
	s.commitLocked(ctx)
}

func (s *Service) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)
	s.closeObserversLocked()
	s.running = false

	slog.InfoContext(ctx, "tick loop stopped")
}
