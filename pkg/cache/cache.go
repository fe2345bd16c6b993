// Package cache provides generic, thread-safe key/value caches used as backing
// stores by the ontology cache.
//
// Available strategies:
//   - expiring: bounded, entries expire a fixed duration after their last write
//   - lru: bounded, least recently used entries are evicted first
//   - simple: unbounded map, entries live until deleted
//
// Expiry is lazy. An expired entry is dropped by the next access that observes
// it; there is no background sweeper. Statistics are always collected and can
// additionally be exported to Prometheus with WithMetrics.
package cache

import (
	"time"

	"github.com/c360/ontocache/errors"
)

// Cache represents a generic cache interface that all cache implementations must satisfy.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found, zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key. Returns true if a new entry was created, false if updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed and was deleted.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of live entries in the cache.
	Size() int

	// Keys returns the keys of all live entries.
	Keys() []string

	// Stats returns cache statistics, nil for the noop cache.
	Stats() *Statistics

	// Close releases resources held by the cache.
	Close() error
}

// EvictCallback is called when an entry leaves the cache without being
// explicitly deleted, either through capacity pressure or expiry.
type EvictCallback[V any] func(key string, value V)

// Clock returns the current time. Tests inject a manual clock to drive expiry.
type Clock func() time.Time

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
