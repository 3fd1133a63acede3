package embcache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/plotsearch/internal/db"
)

// MemoryStore is a bounded least-recently-used byte store living in process memory.
// Nothing is written outside the process.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, []byte](capacity)
	return &MemoryStore{cache: cache}
}

// Get returns the stored value or db.ErrKeyNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key, evicting the least recently used entry when full.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.cache.Add(key, value)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
