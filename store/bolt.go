package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/osutil"
	"github.com/kotleni/cats/internal/timeutil"
)

const (
	timerBucket   = "timers"
	sessionBucket = "session"
	historyBucket = "history"
	metaBucket    = "meta"
)

var activeSessionKey = []byte("active")

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
	now func() time.Time
}

// NewClient opens the database at dbPath, locks it and migrates it to the
// latest schema.
func NewClient(dbPath string) (*Client, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), osutil.DirPermission)
	if err != nil {
		return nil, persistErr(err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	if err = db.Update(migrate); err != nil {
		db.Close()
		return nil, persistErr(err)
	}

	return &Client{
		DB:  db,
		now: time.Now,
	}, nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	db, err := bolt.Open(
		pathToDB,
		osutil.FilePermission,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, berrors.ErrTimeout) {
			return nil, ErrAlreadyRunning
		}

		return nil, persistErr(err)
	}

	return db, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

func (c *Client) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return persistErr(err)
	}

	return persistErr(c.Update(fn))
}

func (c *Client) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return persistErr(err)
	}

	return persistErr(c.View(fn))
}

func getTimer(tx *bolt.Tx, id uint64) (*models.TimerDefinition, error) {
	v := tx.Bucket([]byte(timerBucket)).Get(itob(id))
	if v == nil {
		return nil, ErrTimerNotFound.Fmt(id)
	}

	var t models.TimerDefinition

	if err := json.Unmarshal(v, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func putTimer(tx *bolt.Tx, t *models.TimerDefinition) error {
	v, err := json.Marshal(t)
	if err != nil {
		return err
	}

	return tx.Bucket([]byte(timerBucket)).Put(itob(t.ID), v)
}

func (c *Client) ListTimers(ctx context.Context) ([]models.TimerDefinition, error) {
	timers := []models.TimerDefinition{}

	err := c.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(timerBucket)).ForEach(func(_, v []byte) error {
			var t models.TimerDefinition
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			timers = append(timers, t)

			return nil
		})
	})

	return timers, err
}

func (c *Client) GetTimer(ctx context.Context, id uint64) (*models.TimerDefinition, error) {
	var t *models.TimerDefinition

	err := c.view(ctx, func(tx *bolt.Tx) error {
		var err error
		t, err = getTimer(tx, id)

		return err
	})

	return t, err
}

func (c *Client) CreateTimer(
	ctx context.Context,
	name string,
	iconID, workSeconds, shortBreakSeconds int,
) (*models.TimerDefinition, error) {
	t := &models.TimerDefinition{
		Name:           name,
		IconID:         iconID,
		WorkTime:       workSeconds,
		ShortBreakTime: shortBreakSeconds,
		CreatedAt:      c.now(),
	}

	err := c.update(ctx, func(tx *bolt.Tx) error {
		id, err := tx.Bucket([]byte(timerBucket)).NextSequence()
		if err != nil {
			return err
		}

		t.ID = id

		return putTimer(tx, t)
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (c *Client) DeleteTimer(ctx context.Context, id uint64) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(timerBucket))
		if b.Get(itob(id)) == nil {
			return ErrTimerNotFound.Fmt(id)
		}

		return b.Delete(itob(id))
	})
}

func addStageTime(tx *bolt.Tx, id uint64, stage models.Stage, seconds int) error {
	t, err := getTimer(tx, id)
	if err != nil {
		return err
	}

	t.Credit(stage, seconds)

	return putTimer(tx, t)
}

func (c *Client) AddCompletedStageTime(
	ctx context.Context,
	id uint64,
	stage models.Stage,
	seconds int,
) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		return addStageTime(tx, id, stage, seconds)
	})
}

func (c *Client) SaveSession(ctx context.Context, sess *models.Session) error {
	v, err := json.Marshal(sess)
	if err != nil {
		return persistErr(err)
	}

	return c.update(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put(activeSessionKey, v)
	})
}

func (c *Client) LoadSession(ctx context.Context) (*models.Session, error) {
	var sess *models.Session

	err := c.view(ctx, func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(sessionBucket)).Get(activeSessionKey)
		if len(v) == 0 {
			return nil
		}

		sess = &models.Session{}

		return json.Unmarshal(v, sess)
	})

	return sess, err
}

func (c *Client) ClearSession(ctx context.Context) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete(activeSessionKey)
	})
}

func (c *Client) RecordStage(
	ctx context.Context,
	rec *models.StageRecord,
	sess *models.Session,
) error {
	v, err := json.Marshal(rec)
	if err != nil {
		return persistErr(err)
	}

	var sv []byte

	if sess != nil {
		sv, err = json.Marshal(sess)
		if err != nil {
			return persistErr(err)
		}
	}

	return c.update(ctx, func(tx *bolt.Tx) error {
		err := addStageTime(tx, rec.TimerID, rec.Stage, rec.Seconds)
		if err != nil {
			return err
		}

		sb := tx.Bucket([]byte(sessionBucket))

		if sv == nil {
			err = sb.Delete(activeSessionKey)
		} else {
			err = sb.Put(activeSessionKey, sv)
		}

		if err != nil {
			return err
		}

		b := tx.Bucket([]byte(historyBucket))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		// the sequence suffix keeps records that end in the same instant apart
		key := append(timeutil.ToKey(rec.EndedAt), itob(seq)...)

		return b.Put(key, v)
	})
}

func (c *Client) StageRecords(
	ctx context.Context,
	since, until time.Time,
	timerID uint64,
) ([]models.StageRecord, error) {
	records := []models.StageRecord{}

	minKey := timeutil.ToKey(since)
	maxKey := timeutil.ToKey(until)

	err := c.view(ctx, func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(historyBucket)).Cursor()

		for k, v := cur.Seek(minKey); k != nil; k, v = cur.Next() {
			if bytes.Compare(k[:len(maxKey)], maxKey) > 0 {
				break
			}

			var rec models.StageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			if timerID != 0 && rec.TimerID != timerID {
				continue
			}

			records = append(records, rec)
		}

		return nil
	})

	return records, err
}
