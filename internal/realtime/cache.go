// Package realtime runs reviews off the caller's goroutine: a debounced
// per-chapter trigger fired on every save, a TTL cache for the resulting
// mini-reports, and a bounded worker pool shared with batch jobs.
package realtime

import (
	"sync"
	"time"
)

// entry is a cached value with its expiry.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e *entry[V]) expired() bool {
	return time.Now().After(e.expiresAt)
}

// Cache is an in-memory TTL cache with periodic eviction.
type Cache[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]*entry[V]
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewCache creates a cache whose entries live for defaultTTL.
func NewCache[K comparable, V any](defaultTTL time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		data:       make(map[K]*entry[V]),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a live value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || e.expired() {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the default TTL, overwriting any prior value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.data[key] = &entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.defaultTTL),
	}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the eviction loop.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[K, V]) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.data {
		if e.expired() {
			delete(c.data, key)
		}
	}
}
