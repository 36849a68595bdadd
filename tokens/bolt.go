package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("tokens")

// BoltStore keeps tokens in a bbolt file so they survive restarts of a single process.
type BoltStore struct {
	db  *bolt.DB
	Now func() time.Time
}

type boltItem struct {
	Data    []byte    `msgpack:"d"`
	Expires time.Time `msgpack:"e"`
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("tokens: %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("tokens: %s: %w", path, err)
	}
	return &BoltStore{db: db, Now: time.Now}, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	var item boltItem
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return msgpack.Unmarshal(raw, &item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	if !item.Expires.IsZero() && !s.Now().Before(item.Expires) {
		return nil, s.Delete(ctx, key)
	}
	return item.Data, nil
}

func (s *BoltStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	item := boltItem{Data: data}
	if ttl > 0 {
		item.Expires = s.Now().Add(ttl)
	}
	raw, err := msgpack.Marshal(&item)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
