package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kotleni/cats/internal/apperr"
)

var (
	ErrDaemonUnavailable = &apperr.Error{
		Kind:    apperr.Internal,
		Message: "cannot reach the cats daemon at %s: start it with 'cats daemon'",
	}

	ErrNoActiveSession = &apperr.Error{
		Kind:    apperr.NotFound,
		Message: "no session is in progress",
	}

	errBadRequest = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "invalid request",
	}

	errBadID = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "invalid timer id %q",
	}

	errStreamUnsupported = &apperr.Error{
		Message: "streaming unsupported",
	}
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to an HTTP status code.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidTransition:
		return http.StatusConflict
	case apperr.Persistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler adapts a handler that returns an error. Errors are written
// as a JSON body carrying the error kind.
type errorHandler func(w http.ResponseWriter, r *http.Request) error

func (h errorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err == nil {
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	respondJSON(w, errorBody{
		Error: err.Error(),
		Kind:  apperr.KindOf(err).String(),
	}, status)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeError rebuilds the daemon's error from a failed response so that
// callers can match on its kind.
func decodeError(res *http.Response) error {
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading error response: %w", err)
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return errors.New(res.Status)
	}

	return apperr.New(apperr.ParseKind(body.Kind), body.Error)
}
