package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/repairlens/backend/internal/domain"
)

const shardCount = 32

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      []byte
	Expiration time.Time
}

// shard holds one slice of the keyspace behind its own lock, so concurrent
// operations on unrelated keys never contend on a single global mutex.
type shard struct {
	mutex sync.RWMutex
	data  map[string]cacheItem
}

// MemoryCache is a thread-safe, sharded in-memory cache with TTL support
type MemoryCache struct {
	shards [shardCount]*shard
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{}
	for i := range cache.shards {
		cache.shards[i] = &shard{data: make(map[string]cacheItem)}
	}

	// Background sweep to remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

func (c *MemoryCache) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Get retrieves a value from the cache. Expired entries are a miss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	s := c.shardFor(key)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL. While holding the shard lock it
// also evicts any expired entries in the same shard, so stale data is
// reclaimed lazily on write without waiting for the background sweep.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s := c.shardFor(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for k, item := range s.data {
		if now.After(item.Expiration) {
			delete(s.data, k)
		}
	}

	s.data[key] = cacheItem{
		Value:      value,
		Expiration: now.Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	s := c.shardFor(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		for _, s := range c.shards {
			s.mutex.Lock()
			for key, item := range s.data {
				if now.After(item.Expiration) {
					delete(s.data, key)
				}
			}
			s.mutex.Unlock()
		}
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	total := 0
	for _, s := range c.shards {
		s.mutex.RLock()
		total += len(s.data)
		s.mutex.RUnlock()
	}
	return total
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	for _, s := range c.shards {
		s.mutex.Lock()
		s.data = make(map[string]cacheItem)
		s.mutex.Unlock()
	}
}
