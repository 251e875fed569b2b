package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/farmstand/backend/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCleanupInterval = time.Minute

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.Expiration.IsZero() && now.After(i.Expiration)
}

// MemoryCache is a thread-safe, size-bounded in-memory cache with per-entry
// TTL. The least recently used entry is evicted when the cache is full.
type MemoryCache struct {
	data *lru.Cache[string, cacheItem]
	now  func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache holding at most size entries
// and sweeps expired entries every cleanupInterval. Call Close to stop the sweep.
func NewMemoryCache(size int, cleanupInterval time.Duration) (*MemoryCache, error) {
	data, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	cache := &MemoryCache{
		data: data,
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache, nil
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	item, exists := c.data.Get(key)
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if item.expired(c.now()) {
		c.data.Remove(key)
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL. A zero TTL never expires.
// Values are stored as-is, so callers get back the type they stored.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	item := cacheItem{Value: value}
	if ttl > 0 {
		item.Expiration = c.now().Add(ttl)
	}
	c.data.Add(key, item)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.data.Remove(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	item, exists := c.data.Peek(key)
	if !exists {
		return false, nil
	}
	return !item.expired(c.now()), nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *MemoryCache) removeExpired() {
	now := c.now()
	for _, key := range c.data.Keys() {
		if item, ok := c.data.Peek(key); ok && item.expired(now) {
			c.data.Remove(key)
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
	return nil
}

// Size returns the current number of items in the cache, expired ones included
func (c *MemoryCache) Size() int {
	return c.data.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.data.Purge()
}
