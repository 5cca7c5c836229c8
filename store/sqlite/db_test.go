package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/store"
	"github.com/kotleni/cats/store/sqlite"
	"github.com/kotleni/cats/store/storetest"
)

func newSQLite(t *testing.T) store.DB {
	t.Helper()

	db, err := sqlite.Open(t.Context(), filepath.Join(t.TempDir(), "cats.sqlite"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func TestSQLiteDB(t *testing.T) {
	storetest.Run(t, newSQLite)
}

func TestSQLiteMigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cats.sqlite")

	db, err := sqlite.Open(t.Context(), path)
	require.NoError(t, err)

	_, err = db.CreateTimer(t.Context(), "Focus", 0, 60, 60)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(t.Context(), path)
	require.NoError(t, err)

	defer db.Close()

	timers, err := db.ListTimers(t.Context())
	require.NoError(t, err)
	assert.Len(t, timers, 1)
}
