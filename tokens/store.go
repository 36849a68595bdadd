// Package tokens keeps CSRF and CAPTCHA challenges in a per-session key-value store.
package tokens

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("token store is closed")

// Store is a key-value store with expiry. Get returns (nil, nil) for missing or
// expired keys. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local Store, safe for concurrent use.
type MemoryStore struct {
	mut   sync.Mutex
	items map[string]memoryItem
	Now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		Now:   time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	item, found := s.items[key]
	if !found {
		return nil, nil
	}
	if !item.expires.IsZero() && !s.Now().Before(item.expires) {
		delete(s.items, key)
		return nil, nil
	}
	return item.data, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	item := memoryItem{data: append([]byte(nil), data...)}
	if ttl > 0 {
		item.expires = s.Now().Add(ttl)
	}
	s.items[key] = item
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.items)
}
