package storage

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket and key holding the serialized playlist.
const (
	BucketPlaylist = "playlist"
	KeyEntries     = "entries"
)

// BoltStore keeps the playlist in a bbolt database.
type BoltStore struct {
	bdb *bolt.DB
}

// OpenBolt opens path, creating the file and bucket if needed.
func OpenBolt(path string) (*BoltStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists([]byte(BucketPlaylist))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{bdb: db}, nil
}

func (s *BoltStore) Load(ctx context.Context) ([]byte, error) {
	start := time.Now()
	var data []byte
	err := s.bdb.View(func(txn *bolt.Tx) error {
		v := txn.Bucket([]byte(BucketPlaylist)).Get([]byte(KeyEntries))
		if v != nil {
			// v is only valid inside the transaction
			data = append([]byte{}, v...)
		}
		return nil
	})
	record(BackendBolt, "load", start, err)
	return data, err
}

func (s *BoltStore) Save(ctx context.Context, data []byte) error {
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = s.bdb.Update(func(txn *bolt.Tx) error {
			return txn.Bucket([]byte(BucketPlaylist)).Put([]byte(KeyEntries), data)
		})
	}
	record(BackendBolt, "save", start, err)
	return err
}

func (s *BoltStore) Close() error {
	return s.bdb.Close()
}
