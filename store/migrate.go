package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

var schemaVersionKey = []byte("schema_version")

// migrations are applied in order. The index of the last applied migration
// plus one is stored as the schema version.
var migrations = []func(tx *bolt.Tx) error{
	createBuckets,
	dropLegacySessions,
}

// migrate brings the database up to the latest schema version.
func migrate(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
	if err != nil {
		return err
	}

	var version uint64
	if v := meta.Get(schemaVersionKey); len(v) == 8 {
		version = binary.BigEndian.Uint64(v)
	}

	for i := version; i < uint64(len(migrations)); i++ {
		if err := migrations[i](tx); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return meta.Put(schemaVersionKey, itob(uint64(len(migrations))))
}

func createBuckets(tx *bolt.Tx) error {
	for _, name := range []string{timerBucket, sessionBucket, historyBucket} {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return err
		}
	}

	return nil
}

// dropLegacySessions removes the pre-release "sessions" bucket, which stored
// one entry per run instead of a single active session.
func dropLegacySessions(tx *bolt.Tx) error {
	err := tx.DeleteBucket([]byte("sessions"))
	if err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
		return err
	}

	return nil
}
