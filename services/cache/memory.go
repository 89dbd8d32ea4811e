package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryCacheSize = 1024

// MemoryService is an in-process CacheService used when no memcache
// server is configured. Entries live in one expirable LRU per expiration
// value, so each Set keeps its own TTL.
type MemoryService struct {
	mu      sync.Mutex
	buckets map[time.Duration]*expirable.LRU[string, []byte]
}

// NewMemoryService creates an empty in-process cache
func NewMemoryService() *MemoryService {
	return &MemoryService{
		buckets: make(map[time.Duration]*expirable.LRU[string, []byte]),
	}
}

// Get retrieves a value that has not yet expired
func (m *MemoryService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, lru := range m.buckets {
		if value, ok := lru.Get(key); ok {
			return value, nil
		}
	}
	return nil, ErrMiss
}

// Set stores a value; a non-positive expiration never expires
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	if expiration < 0 {
		expiration = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for ttl, lru := range m.buckets {
		if ttl != expiration {
			lru.Remove(key)
		}
	}

	lru, ok := m.buckets[expiration]
	if !ok {
		lru = expirable.NewLRU[string, []byte](memoryCacheSize, nil, expiration)
		m.buckets[expiration] = lru
	}
	lru.Add(key, append([]byte(nil), value...))
	return nil
}

// Delete removes a value
func (m *MemoryService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, lru := range m.buckets {
		lru.Remove(key)
	}
	return nil
}
