package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/c360/ontocache/errors"
)

type boundedEntry[V any] struct {
	value     V
	writtenAt time.Time
}

// boundedCache is a size-bounded cache with least-recently-used eviction and
// an optional write-based expiry window. A zero ttl disables expiry.
//
// Eviction callbacks run while the cache lock is held and must not call back
// into the cache.
type boundedCache[V any] struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, boundedEntry[V]]
	ttl     time.Duration
	now     Clock
	rec     *recorder
	evictFn EvictCallback[V]

	// explicit suppresses the capacity-eviction hook while the cache itself
	// removes entries.
	explicit bool
}

func newBoundedCache[V any](maxSize int, ttl time.Duration, opts *cacheOptions[V], constructor string) (*boundedCache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", constructor, "max_size must be positive")
	}
	if ttl < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", constructor, "ttl cannot be negative")
	}

	rec, err := newRecorder(opts, constructor)
	if err != nil {
		return nil, err
	}

	c := &boundedCache[V]{
		ttl:     ttl,
		now:     opts.clock,
		rec:     rec,
		evictFn: opts.evictCallback,
	}

	c.lru, err = simplelru.NewLRU[string, boundedEntry[V]](maxSize, c.onEvict)
	if err != nil {
		return nil, errors.WrapInvalid(err, "cache", constructor, "create lru")
	}
	return c, nil
}

func (c *boundedCache[V]) onEvict(key string, entry boundedEntry[V]) {
	if c.explicit {
		return
	}
	c.rec.evict()
	if c.evictFn != nil {
		c.evictFn(key, entry.value)
	}
}

func (c *boundedCache[V]) expired(entry boundedEntry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.writtenAt) >= c.ttl
}

// dropExpired removes key if it is expired. Caller holds c.mu.
func (c *boundedCache[V]) dropExpired(key string, entry boundedEntry[V], now time.Time) bool {
	if !c.expired(entry, now) {
		return false
	}
	c.explicit = true
	c.lru.Remove(key)
	c.explicit = false

	c.rec.expire()
	if c.evictFn != nil {
		c.evictFn(key, entry.value)
	}
	return true
}

// Get returns the value for key unless it is absent or its expiry window has
// elapsed, in which case the entry is dropped and a miss is reported.
func (c *boundedCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if ok && c.dropExpired(key, entry, c.now()) {
		ok = false
		c.rec.size(c.lru.Len())
	}
	if !ok {
		c.rec.miss()
		var zero V
		return zero, false
	}

	c.rec.hit()
	return entry.value, true
}

// Set stores value and restarts its expiry window.
func (c *boundedCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	created := true
	if prev, ok := c.lru.Peek(key); ok {
		created = c.dropExpired(key, prev, now)
	}

	c.lru.Add(key, boundedEntry[V]{value: value, writtenAt: now})
	c.rec.set()
	c.rec.size(c.lru.Len())
	return created, nil
}

// Delete removes key. Expired entries are reported as absent.
func (c *boundedCache[V]) Delete(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Peek(key)
	if !ok {
		return false, nil
	}
	if c.dropExpired(key, entry, c.now()) {
		c.rec.size(c.lru.Len())
		return false, nil
	}

	c.explicit = true
	c.lru.Remove(key)
	c.explicit = false

	c.rec.delete()
	c.rec.size(c.lru.Len())
	return true, nil
}

// Clear removes every entry without invoking the eviction callback.
func (c *boundedCache[V]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.explicit = true
	c.lru.Purge()
	c.explicit = false

	c.rec.size(0)
	return nil
}

// Size returns the number of live entries, dropping any that have expired.
func (c *boundedCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	return c.lru.Len()
}

// Keys returns live keys from least to most recently used.
func (c *boundedCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	return c.lru.Keys()
}

func (c *boundedCache[V]) sweepLocked() {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	for _, key := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(key); ok {
			c.dropExpired(key, entry, now)
		}
	}
	c.rec.size(c.lru.Len())
}

func (c *boundedCache[V]) Stats() *Statistics {
	return c.rec.stats
}

func (c *boundedCache[V]) Close() error {
	return c.Clear()
}
