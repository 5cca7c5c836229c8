// Package coordinator is the command surface used by the daemon API. It
// validates user input, delegates timer management to the store and
// forwards session commands to the service. It keeps no run state of its
// own.
package coordinator

import (
	"context"
	"strings"
	"time"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/service"
	"github.com/kotleni/cats/store"
)

var (
	ErrEmptyName = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "timer name must not be empty",
	}

	ErrNonPositiveDuration = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "%s duration must be greater than zero, got %ds",
	}

	ErrIconOutOfRange = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "icon id %d is out of range [0, %d)",
	}
)

// ErrTimerInUse rejects removing the timer of a started or paused session.
var ErrTimerInUse = service.ErrTimerInUse

// Store is the persistence needed by the coordinator.
type Store interface {
	store.TimerStore
	StageRecords(
		ctx context.Context,
		since, until time.Time,
		timerID uint64,
	) ([]models.StageRecord, error)
}

// NewTimer is the user input for CreateTimer. Durations are in seconds.
type NewTimer struct {
	Name           string `json:"name"`
	IconID         int    `json:"icon_id"`
	WorkTime       int    `json:"work_time"`
	ShortBreakTime int    `json:"short_break_time"`
}

// Coordinator mediates between UI clients and the session service.
type Coordinator struct {
	store     Store
	svc       *service.Service
	now       func() time.Time
	iconCount int
}

// New returns a coordinator. iconCount is the size of the icon catalog
// that icon ids index into.
func New(st Store, svc *service.Service, iconCount int) *Coordinator {
	return &Coordinator{
		store:     st,
		svc:       svc,
		now:       time.Now,
		iconCount: iconCount,
	}
}

// Validate checks user input for a new timer.
func (n *NewTimer) Validate(iconCount int) error {
	n.Name = strings.TrimSpace(n.Name)

	if n.Name == "" {
		return ErrEmptyName
	}

	if n.WorkTime <= 0 {
		return ErrNonPositiveDuration.Fmt("work", n.WorkTime)
	}

	if n.ShortBreakTime <= 0 {
		return ErrNonPositiveDuration.Fmt("break", n.ShortBreakTime)
	}

	if n.IconID < 0 || n.IconID >= iconCount {
		return ErrIconOutOfRange.Fmt(n.IconID, iconCount)
	}

	return nil
}

// LoadTimers returns every saved timer ordered by id.
func (c *Coordinator) LoadTimers(ctx context.Context) ([]models.TimerDefinition, error) {
	return c.store.ListTimers(ctx)
}

// CreateTimer validates input and saves a new timer.
func (c *Coordinator) CreateTimer(ctx context.Context, in NewTimer) (*models.TimerDefinition, error) {
	if err := in.Validate(c.iconCount); err != nil {
		return nil, err
	}

	return c.store.CreateTimer(ctx, in.Name, in.IconID, in.WorkTime, in.ShortBreakTime)
}

// RemoveTimer deletes a timer. The timer of a started or paused session
// cannot be removed. A stopped session attached to the timer is released.
func (c *Coordinator) RemoveTimer(ctx context.Context, id uint64) error {
	return c.svc.RemoveIfIdle(ctx, id, func(ctx context.Context) error {
		return c.store.DeleteTimer(ctx, id)
	})
}

// ActiveTimer returns the timer of the current session with its live
// totals. ok is false when no run is in progress.
func (c *Coordinator) ActiveTimer() (timer models.TimerDefinition, ok bool) {
	snap := c.svc.Snapshot()
	if !snap.Active {
		return models.TimerDefinition{}, false
	}

	return snap.Timer, true
}

// Snapshot returns the service's current state.
func (c *Coordinator) Snapshot() models.Snapshot {
	return c.svc.Snapshot()
}

// BindToService registers an observer of the live session.
func (c *Coordinator) BindToService(buffer int) (service.Binding, models.Snapshot) {
	return c.svc.Bind(buffer)
}

// Unbind detaches an observer registered with BindToService.
func (c *Coordinator) Unbind(id uint64) {
	c.svc.Unbind(id)
}

// Watch binds to the service until ctx is done. The returned channel is
// closed once the observer is unbound.
func (c *Coordinator) Watch(ctx context.Context) (<-chan models.Snapshot, models.Snapshot) {
	b, snap := c.svc.Bind(1)

	go func() {
		<-ctx.Done()
		c.svc.Unbind(b.ID)
	}()

	return b.C, snap
}

// LoadTimer attaches the session to a timer.
func (c *Coordinator) LoadTimer(ctx context.Context, id uint64) (models.Snapshot, error) {
	return c.svc.LoadSession(ctx, id)
}

func (c *Coordinator) Start(ctx context.Context) (models.Snapshot, error) {
	return c.svc.Command(ctx, service.OpStart)
}

func (c *Coordinator) Pause(ctx context.Context) (models.Snapshot, error) {
	return c.svc.Command(ctx, service.OpPause)
}

func (c *Coordinator) Resume(ctx context.Context) (models.Snapshot, error) {
	return c.svc.Command(ctx, service.OpResume)
}

func (c *Coordinator) Skip(ctx context.Context) (models.Snapshot, error) {
	return c.svc.Command(ctx, service.OpSkip)
}

func (c *Coordinator) Reset(ctx context.Context) (models.Snapshot, error) {
	return c.svc.Command(ctx, service.OpReset)
}

// Command forwards a parsed command name to the service.
func (c *Coordinator) Command(ctx context.Context, name string) (models.Snapshot, error) {
	op, err := service.ParseOp(name)
	if err != nil {
		return c.svc.Snapshot(), err
	}

	return c.svc.Command(ctx, op)
}

// ResetServiceIsNotStarted releases the session when the user leaves it
// without a countdown in progress.
func (c *Coordinator) ResetServiceIsNotStarted(ctx context.Context) (models.Snapshot, error) {
	return c.svc.ResetIfNotStarted(ctx)
}

// History returns credited stages that ended at or after since. A zero
// timerID matches every timer.
func (c *Coordinator) History(
	ctx context.Context,
	since time.Time,
	timerID uint64,
) ([]models.StageRecord, error) {
	return c.store.StageRecords(ctx, since, c.now(), timerID)
}
