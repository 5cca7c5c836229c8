// Package daemon exposes the session coordinator over a local HTTP API and
// provides the client used by the CLI and the attach UI
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kotleni/cats/coordinator"
	"github.com/kotleni/cats/internal/models"
)

const shutdownTimeout = 5 * time.Second

// Server serves the daemon API.
type Server struct {
	coord  *coordinator.Coordinator
	router chi.Router
}

// NewServer builds the router for coord.
func NewServer(coord *coordinator.Coordinator) *Server {
	s := &Server{coord: coord}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Method(http.MethodGet, "/timers", errorHandler(s.listTimers))
	r.Method(http.MethodPost, "/timers", errorHandler(s.createTimer))
	r.Method(http.MethodDelete, "/timers/{id}", errorHandler(s.removeTimer))

	r.Method(http.MethodGet, "/session", errorHandler(s.getSession))
	r.Method(http.MethodGet, "/session/timer", errorHandler(s.activeTimer))
	r.Method(http.MethodGet, "/session/events", errorHandler(s.streamEvents))
	r.Method(http.MethodPost, "/session/load/{id}", errorHandler(s.loadTimer))
	r.Method(http.MethodPost, "/session/release", errorHandler(s.release))
	r.Method(http.MethodPost, "/session/{op}", errorHandler(s.command))

	r.Method(http.MethodGet, "/history", errorHandler(s.history))

	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled. Request contexts
// derive from ctx so open event streams end with it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.InfoContext(ctx, "daemon listening", slog.String("address", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Duration("took", time.Since(start)),
		)
	})
}

func parseID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errBadID.Fmt(raw)
	}

	return id, nil
}

func (s *Server) listTimers(w http.ResponseWriter, r *http.Request) error {
	timers, err := s.coord.LoadTimers(r.Context())
	if err != nil {
		return err
	}

	respondJSON(w, timers, http.StatusOK)

	return nil
}

func (s *Server) createTimer(w http.ResponseWriter, r *http.Request) error {
	var in coordinator.NewTimer

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return errBadRequest.Wrap(err)
	}

	timer, err := s.coord.CreateTimer(r.Context(), in)
	if err != nil {
		return err
	}

	respondJSON(w, timer, http.StatusCreated)

	return nil
}

func (s *Server) removeTimer(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}

	if err := s.coord.RemoveTimer(r.Context(), id); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) error {
	respondJSON(w, s.coord.Snapshot(), http.StatusOK)
	return nil
}

func (s *Server) activeTimer(w http.ResponseWriter, _ *http.Request) error {
	timer, ok := s.coord.ActiveTimer()
	if !ok {
		return ErrNoActiveSession
	}

	respondJSON(w, timer, http.StatusOK)

	return nil
}

func (s *Server) loadTimer(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}

	snap, err := s.coord.LoadTimer(r.Context(), id)
	if err != nil {
		return err
	}

	respondJSON(w, snap, http.StatusOK)

	return nil
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) error {
	snap, err := s.coord.Command(r.Context(), chi.URLParam(r, "op"))
	if err != nil {
		return err
	}

	respondJSON(w, snap, http.StatusOK)

	return nil
}

func (s *Server) release(w http.ResponseWriter, r *http.Request) error {
	snap, err := s.coord.ResetServiceIsNotStarted(r.Context())
	if err != nil {
		return err
	}

	respondJSON(w, snap, http.StatusOK)

	return nil
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	var since time.Time

	if v := query.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return errBadRequest.Wrap(fmt.Errorf("since: %w", err))
		}

		since = t
	}

	var timerID uint64

	if v := query.Get("timer"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errBadID.Fmt(v)
		}

		timerID = id
	}

	records, err := s.coord.History(r.Context(), since, timerID)
	if err != nil {
		return err
	}

	respondJSON(w, records, http.StatusOK)

	return nil
}

// streamEvents binds the caller to the session. The first event is the
// current snapshot. Disconnecting unbinds.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errStreamUnsupported
	}

	updates, snap := s.coord.Watch(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, snap); err != nil {
		return nil
	}

	flusher.Flush()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return nil
			}

			if err := writeEvent(w, snap); err != nil {
				return nil
			}

			flusher.Flush()
		case <-r.Context().Done():
			return nil
		}
	}
}

func writeEvent(w http.ResponseWriter, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)

	return err
}
