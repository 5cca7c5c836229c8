package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/store"
)

const selectAllTimers = "SELECT id, name, icon_id, work_time, short_break_time, total_work_time, total_break_time, created_at FROM timers"

func persistErr(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	return store.ErrPersistence.Wrap(err)
}

func extractTimer(s scannable) (*models.TimerDefinition, error) {
	var (
		t         models.TimerDefinition
		createdAt int64
	)

	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.IconID,
		&t.WorkTime,
		&t.ShortBreakTime,
		&t.TotalWorkTime,
		&t.TotalBreakTime,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = fromUnix(createdAt)

	return &t, nil
}

func (d *DB) ListTimers(ctx context.Context) ([]models.TimerDefinition, error) {
	rows, err := d.dbGetter(ctx).QueryContext(ctx, selectAllTimers+" ORDER BY id")
	if err != nil {
		return nil, persistErr(err)
	}
	defer rows.Close() //nolint

	timers := []models.TimerDefinition{}

	for rows.Next() {
		t, err := extractTimer(rows)
		if err != nil {
			return nil, persistErr(err)
		}

		timers = append(timers, *t)
	}

	return timers, persistErr(rows.Err())
}

func (d *DB) GetTimer(ctx context.Context, id uint64) (*models.TimerDefinition, error) {
	row := d.dbGetter(ctx).QueryRowContext(ctx, selectAllTimers+" WHERE id = ?", id)

	t, err := extractTimer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTimerNotFound.Fmt(id)
	}

	return t, persistErr(err)
}

func (d *DB) CreateTimer(
	ctx context.Context,
	name string,
	iconID, workSeconds, shortBreakSeconds int,
) (*models.TimerDefinition, error) {
	t := &models.TimerDefinition{
		Name:           name,
		IconID:         iconID,
		WorkTime:       workSeconds,
		ShortBreakTime: shortBreakSeconds,
		CreatedAt:      d.now().UTC(),
	}

	query := "INSERT INTO timers (name, icon_id, work_time, short_break_time, created_at) VALUES (?, ?, ?, ?, ?)"

	res, err := d.dbGetter(ctx).ExecContext(
		ctx,
		query,
		t.Name,
		t.IconID,
		t.WorkTime,
		t.ShortBreakTime,
		toUnix(t.CreatedAt),
	)
	if err != nil {
		return nil, persistErr(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, persistErr(err)
	}

	t.ID = uint64(id)

	return t, nil
}

func (d *DB) DeleteTimer(ctx context.Context, id uint64) error {
	res, err := d.dbGetter(ctx).ExecContext(ctx, "DELETE FROM timers WHERE id = ?", id)
	if err != nil {
		return persistErr(err)
	}

	return affectedOne(res, id)
}

func (d *DB) AddCompletedStageTime(
	ctx context.Context,
	id uint64,
	stage models.Stage,
	seconds int,
) error {
	query := "UPDATE timers SET total_work_time = total_work_time + ? WHERE id = ?"
	if stage == models.Break {
		query = "UPDATE timers SET total_break_time = total_break_time + ? WHERE id = ?"
	}

	res, err := d.dbGetter(ctx).ExecContext(ctx, query, seconds, id)
	if err != nil {
		return persistErr(err)
	}

	return affectedOne(res, id)
}

func affectedOne(res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr(err)
	}

	if n == 0 {
		return store.ErrTimerNotFound.Fmt(id)
	}

	return nil
}
