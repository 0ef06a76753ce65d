package cache

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/halalcheck/client/internal/domain"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory store with TTL support.
// Values are kept as-is, so it can hold live objects such as page workflows.
type MemoryCache struct {
	data    map[string]cacheItem
	mutex   sync.RWMutex
	onEvict func(key string, value interface{})

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a MemoryCache
type Option func(*MemoryCache)

// WithEvictionHandler registers fn to run for every entry that is removed,
// either explicitly or by expiry. fn runs without the cache lock held.
func WithEvictionHandler(fn func(key string, value interface{})) Option {
	return func(c *MemoryCache) {
		c.onEvict = fn
	}
}

// NewMemoryCache creates a new in-memory cache and starts the sweeper.
func NewMemoryCache(cleanupInterval time.Duration, opts ...Option) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mutex.Lock()
	old, replaced := c.data[key]
	c.data[key] = cacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
	c.mutex.Unlock()

	if replaced && !sameValue(old.Value, value) {
		c.evict(key, old.Value)
	}
	return nil
}

// Touch pushes the expiry of an existing, live entry to now+ttl.
func (c *MemoryCache) Touch(ctx context.Context, key string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.Expiration) {
		return domain.ErrCacheMiss
	}
	item.Expiration = time.Now().Add(ttl)
	c.data[key] = item
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	item, exists := c.data[key]
	delete(c.data, key)
	c.mutex.Unlock()

	if exists {
		c.evict(key, item.Value)
	}
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	if time.Now().After(item.Expiration) {
		return false, nil
	}

	return true, nil
}

// Size returns the current number of items in the cache, expired ones included
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Range calls fn for every live entry until fn returns false. fn runs
// outside the lock and sees a snapshot taken when Range was called.
func (c *MemoryCache) Range(fn func(key string, value interface{}) bool) {
	now := time.Now()
	c.mutex.RLock()
	live := make(map[string]interface{}, len(c.data))
	for key, item := range c.data {
		if now.Before(item.Expiration) {
			live[key] = item.Value
		}
	}
	c.mutex.RUnlock()

	for key, value := range live {
		if !fn(key, value) {
			return
		}
	}
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	old := c.data
	c.data = make(map[string]cacheItem)
	c.mutex.Unlock()

	for key, item := range old {
		c.evict(key, item.Value)
	}
}

// Close stops the sweeper and evicts everything that is left.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.Clear()
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	expired := make(map[string]interface{})

	c.mutex.Lock()
	now := time.Now()
	for key, item := range c.data {
		if now.After(item.Expiration) {
			expired[key] = item.Value
			delete(c.data, key)
		}
	}
	c.mutex.Unlock()

	for key, value := range expired {
		c.evict(key, value)
	}
}

func (c *MemoryCache) evict(key string, value interface{}) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// sameValue reports whether a and b are the same comparable value.
func sameValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
