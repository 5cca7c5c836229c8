package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kotleni/cats/internal/models"
)

func (d *DB) SaveSession(ctx context.Context, sess *models.Session) error {
	query := `INSERT INTO session (slot, run_id, timer_id, run_state, stage, elapsed_seconds, updated_at)
VALUES ('active', ?, ?, ?, ?, ?, ?)
ON CONFLICT (slot) DO UPDATE SET
    run_id = excluded.run_id,
    timer_id = excluded.timer_id,
    run_state = excluded.run_state,
    stage = excluded.stage,
    elapsed_seconds = excluded.elapsed_seconds,
    updated_at = excluded.updated_at`

	_, err := d.dbGetter(ctx).ExecContext(
		ctx,
		query,
		sess.RunID,
		sess.TimerID,
		string(sess.RunState),
		string(sess.Stage),
		sess.ElapsedSeconds,
		toUnix(sess.UpdatedAt),
	)

	return persistErr(err)
}

func (d *DB) LoadSession(ctx context.Context) (*models.Session, error) {
	row := d.dbGetter(ctx).QueryRowContext(
		ctx,
		"SELECT run_id, timer_id, run_state, stage, elapsed_seconds, updated_at FROM session WHERE slot = 'active'",
	)

	var (
		sess      models.Session
		updatedAt int64
	)

	err := row.Scan(
		&sess.RunID,
		&sess.TimerID,
		&sess.RunState,
		&sess.Stage,
		&sess.ElapsedSeconds,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, persistErr(err)
	}

	sess.UpdatedAt = fromUnix(updatedAt)

	return &sess, nil
}

func (d *DB) ClearSession(ctx context.Context) error {
	_, err := d.dbGetter(ctx).ExecContext(ctx, "DELETE FROM session")
	return persistErr(err)
}

func (d *DB) RecordStage(
	ctx context.Context,
	rec *models.StageRecord,
	sess *models.Session,
) error {
	return persistErr(d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := d.AddCompletedStageTime(ctx, rec.TimerID, rec.Stage, rec.Seconds)
		if err != nil {
			return err
		}

		if sess == nil {
			err = d.ClearSession(ctx)
		} else {
			err = d.SaveSession(ctx, sess)
		}

		if err != nil {
			return err
		}

		query := "INSERT INTO history (run_id, timer_id, stage, seconds, skipped, ended_at) VALUES (?, ?, ?, ?, ?, ?)"

		_, err = d.dbGetter(ctx).ExecContext(
			ctx,
			query,
			rec.RunID,
			rec.TimerID,
			string(rec.Stage),
			rec.Seconds,
			rec.Skipped,
			toUnix(rec.EndedAt),
		)

		return err
	}))
}

func (d *DB) StageRecords(
	ctx context.Context,
	since, until time.Time,
	timerID uint64,
) ([]models.StageRecord, error) {
	query := "SELECT run_id, timer_id, stage, seconds, skipped, ended_at FROM history WHERE ended_at >= ? AND ended_at <= ?"
	args := []any{toUnix(since), toUnix(until)}

	if timerID != 0 {
		query += " AND timer_id = ?"

		args = append(args, timerID)
	}

	rows, err := d.dbGetter(ctx).QueryContext(ctx, query+" ORDER BY ended_at, id", args...)
	if err != nil {
		return nil, persistErr(err)
	}
	defer rows.Close() //nolint

	records := []models.StageRecord{}

	for rows.Next() {
		var (
			rec     models.StageRecord
			endedAt int64
		)

		err := rows.Scan(
			&rec.RunID,
			&rec.TimerID,
			&rec.Stage,
			&rec.Seconds,
			&rec.Skipped,
			&endedAt,
		)
		if err != nil {
			return nil, persistErr(err)
		}

		rec.EndedAt = fromUnix(endedAt)
		records = append(records, rec)
	}

	return records, persistErr(rows.Err())
}
