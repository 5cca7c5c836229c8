// Package sqlite implements store.DB on top of an SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"
	_ "modernc.org/sqlite"

	"github.com/kotleni/cats/internal/osutil"
	"github.com/kotleni/cats/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is a store.DB backed by SQLite. Multi-statement writes run inside a
// transaction obtained from the transactor.
type DB struct {
	db       *sql.DB
	tx       transactor.Transactor
	dbGetter txStdLib.DBGetter
	now      func() time.Time
}

var _ store.DB = (*DB)(nil)

// Open opens or creates the database file at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return nil, persistErr(err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, persistErr(err)
	}

	// a single connection serializes writers and keeps transactions simple
	db.SetMaxOpenConns(1)

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)

	d := &DB{
		db:       db,
		tx:       tx,
		dbGetter: dbGetter,
		now:      time.Now,
	}

	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, persistErr(err)
	}

	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// migrate applies every embedded migration newer than the database's
// user_version.
func (d *DB) migrate(ctx context.Context) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}

	sort.Strings(files)

	var version int
	if err := d.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for i := version; i < len(files); i++ {
		script, err := migrations.ReadFile(files[i])
		if err != nil {
			return err
		}

		err = d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			db := d.dbGetter(ctx)

			if _, err := db.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("%s: %w", files[i], err)
			}

			_, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1))

			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
