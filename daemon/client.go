package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kotleni/cats/coordinator"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
)

// Client talks to a running daemon.
type Client struct {
	http    *http.Client
	baseURL string
	address string
}

// NewClient returns a client for the daemon listening on address
// (host:port).
func NewClient(address string) *Client {
	return &Client{
		http:    &http.Client{},
		baseURL: "http://" + address,
		address: address,
	}
}

// do sends a request and decodes a JSON response into out when out is not
// nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return c.transportErr(err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeError(res)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) transportErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return ErrDaemonUnavailable.Fmt(c.address).Wrap(err)
}

// Ping reports whether the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var snap models.Snapshot

	return c.do(ctx, http.MethodGet, "/session", nil, &snap)
}

func (c *Client) LoadTimers(ctx context.Context) ([]models.TimerDefinition, error) {
	var timers []models.TimerDefinition

	err := c.do(ctx, http.MethodGet, "/timers", nil, &timers)

	return timers, err
}

func (c *Client) CreateTimer(ctx context.Context, in coordinator.NewTimer) (*models.TimerDefinition, error) {
	var timer models.TimerDefinition

	if err := c.do(ctx, http.MethodPost, "/timers", in, &timer); err != nil {
		return nil, err
	}

	return &timer, nil
}

func (c *Client) RemoveTimer(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, "/timers/"+strconv.FormatUint(id, 10), nil, nil)
}

// Snapshot returns the daemon's current session state.
func (c *Client) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	err := c.do(ctx, http.MethodGet, "/session", nil, &snap)

	return snap, err
}

// ActiveTimer returns the timer of the session in progress. ok is false
// when there is none.
func (c *Client) ActiveTimer(ctx context.Context) (timer models.TimerDefinition, ok bool, err error) {
	err = c.do(ctx, http.MethodGet, "/session/timer", nil, &timer)
	if apperr.IsKind(err, apperr.NotFound) {
		return models.TimerDefinition{}, false, nil
	}

	if err != nil {
		return models.TimerDefinition{}, false, err
	}

	return timer, true, nil
}

func (c *Client) LoadTimer(ctx context.Context, id uint64) (models.Snapshot, error) {
	var snap models.Snapshot

	err := c.do(ctx, http.MethodPost, "/session/load/"+strconv.FormatUint(id, 10), nil, &snap)

	return snap, err
}

// Command sends start, pause, resume, skip or reset.
func (c *Client) Command(ctx context.Context, op string) (models.Snapshot, error) {
	var snap models.Snapshot

	err := c.do(ctx, http.MethodPost, "/session/"+url.PathEscape(op), nil, &snap)

	return snap, err
}

func (c *Client) Start(ctx context.Context) (models.Snapshot, error) {
	return c.Command(ctx, "start")
}

func (c *Client) Pause(ctx context.Context) (models.Snapshot, error) {
	return c.Command(ctx, "pause")
}

func (c *Client) Resume(ctx context.Context) (models.Snapshot, error) {
	return c.Command(ctx, "resume")
}

func (c *Client) Skip(ctx context.Context) (models.Snapshot, error) {
	return c.Command(ctx, "skip")
}

func (c *Client) Reset(ctx context.Context) (models.Snapshot, error) {
	return c.Command(ctx, "reset")
}

func (c *Client) ResetServiceIsNotStarted(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	err := c.do(ctx, http.MethodPost, "/session/release", nil, &snap)

	return snap, err
}

func (c *Client) History(ctx context.Context, since time.Time, timerID uint64) ([]models.StageRecord, error) {
	query := url.Values{}

	if !since.IsZero() {
		query.Set("since", since.Format(time.RFC3339))
	}

	if timerID != 0 {
		query.Set("timer", strconv.FormatUint(timerID, 10))
	}

	path := "/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var records []models.StageRecord

	err := c.do(ctx, http.MethodGet, path, nil, &records)

	return records, err
}

// Watch binds to the daemon's event stream. The first value is the current
// snapshot. The channel is closed when ctx is done or the stream ends.
func (c *Client) Watch(ctx context.Context) (<-chan models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/events", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "text/event-stream")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportErr(err)
	}

	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		return nil, decodeError(res)
	}

	out := make(chan models.Snapshot, 1)

	go func() {
		defer close(out)
		defer res.Body.Close()

		_ = readEvents(ctx, res.Body, out)
	}()

	return out, nil
}

// readEvents parses server-sent snapshot events from r.
func readEvents(ctx context.Context, r io.Reader, out chan<- models.Snapshot) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var snap models.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}

		select {
		case out <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return scanner.Err()
}
