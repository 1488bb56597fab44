package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var collectionsBucket = []byte("collections")

// BoltMedium stores every key in a single bbolt bucket. bbolt holds an
// exclusive lock on the database file, so only one process may open it; all
// sessions of that process share the handle.
type BoltMedium struct {
	db *bbolt.DB
}

// NewBoltMedium opens (or creates) the database at path.
func NewBoltMedium(path string) (*BoltMedium, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(collectionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltMedium{db: db}, nil
}

func (m *BoltMedium) Load(key string) ([]byte, error) {
	var out []byte
	err := m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(collectionsBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		// Values are only valid for the life of the transaction.
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return out, nil
}

func (m *BoltMedium) Store(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("storing blob: key must not be empty")
	}
	err := m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(collectionsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

func (m *BoltMedium) Remove(key string) error {
	err := m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(collectionsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (m *BoltMedium) Close() error {
	return m.db.Close()
}
