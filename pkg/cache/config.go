package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/ontocache/errors"
)

// Strategy defines the eviction strategy for the cache.
type Strategy string

const (
	// StrategyExpiring bounds the cache by size and expires entries a fixed
	// duration after their last write.
	StrategyExpiring Strategy = "expiring"

	// StrategyLRU uses Least Recently Used eviction based on size.
	StrategyLRU Strategy = "lru"

	// StrategySimple uses no eviction policy.
	StrategySimple Strategy = "simple"
)

// Config contains configuration for cache creation.
type Config struct {
	// Enabled determines if caching is enabled.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Strategy determines the eviction strategy.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// MaxSize is the maximum number of entries (expiring and lru).
	MaxSize int `json:"max_size" yaml:"max_size"`

	// TTL is the write-based expiry window (expiring).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Strategy: StrategyExpiring,
		MaxSize:  10000,
		TTL:      10 * time.Minute,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Strategy {
	case StrategySimple:
	case StrategyLRU:
		if c.MaxSize <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
				fmt.Sprintf("max_size must be positive for LRU cache, got %d", c.MaxSize))
		}
	case StrategyExpiring:
		if c.MaxSize <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
				fmt.Sprintf("max_size must be positive for expiring cache, got %d", c.MaxSize))
		}
		if c.TTL <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
				fmt.Sprintf("ttl must be positive for expiring cache, got %v", c.TTL))
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %s", c.Strategy))
	}
	return nil
}

// NewFromConfig creates a cache based on the provided configuration.
// Returns a NoopCache if config.Enabled is false.
func NewFromConfig[V any](config Config, options ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "cache", "NewFromConfig", "config validation failed")
	}

	if !config.Enabled {
		return NewNoop[V](), nil
	}

	switch config.Strategy {
	case StrategyExpiring:
		return NewExpiring[V](config.MaxSize, config.TTL, options...)
	case StrategyLRU:
		return NewLRU[V](config.MaxSize, options...)
	default:
		return NewSimple[V](options...)
	}
}

// NewExpiring creates a bounded cache whose entries expire ttl after their last write.
func NewExpiring[V any](maxSize int, ttl time.Duration, options ...Option[V]) (Cache[V], error) {
	if ttl <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", "NewExpiring", "ttl must be positive")
	}
	return newBoundedCache[V](maxSize, ttl, applyOptions(options...), "NewExpiring")
}

// NewLRU creates a new LRU cache with the specified maximum size.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	return newBoundedCache[V](maxSize, 0, applyOptions(options...), "NewLRU")
}

// NewSimple creates a new Simple cache with no eviction policy.
func NewSimple[V any](options ...Option[V]) (Cache[V], error) {
	return newSimpleCache[V](applyOptions(options...))
}

// NewNoop creates a cache that does nothing (always returns cache misses).
func NewNoop[V any]() Cache[V] {
	return &noopCache[V]{}
}

type noopCache[V any] struct{}

func (c *noopCache[V]) Get(_ string) (V, bool) {
	var zero V
	return zero, false
}

func (c *noopCache[V]) Set(_ string, _ V) (bool, error) { return false, nil }
func (c *noopCache[V]) Delete(_ string) (bool, error)   { return false, nil }
func (c *noopCache[V]) Clear() error                    { return nil }
func (c *noopCache[V]) Size() int                       { return 0 }
func (c *noopCache[V]) Keys() []string                  { return nil }
func (c *noopCache[V]) Stats() *Statistics              { return nil }
func (c *noopCache[V]) Close() error                    { return nil }

// rawConfig mirrors Config with the duration kept undecoded so it can be
// given either as a string ("10m") or as integer nanoseconds.
type rawConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	MaxSize  int      `json:"max_size" yaml:"max_size"`
}

// UnmarshalJSON accepts duration strings (e.g. "1h", "5m") or nanosecond integers for ttl.
func (c *Config) UnmarshalJSON(data []byte) error {
	aux := struct {
		rawConfig
		TTL json.RawMessage `json:"ttl,omitempty"`
	}{rawConfig: c.raw()}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.apply(aux.rawConfig)

	if len(aux.TTL) > 0 {
		var str string
		if err := json.Unmarshal(aux.TTL, &str); err == nil {
			ttl, err := time.ParseDuration(str)
			if err != nil {
				return fmt.Errorf("invalid duration string for ttl: %w", err)
			}
			c.TTL = ttl
			return nil
		}
		var nsec int64
		if err := json.Unmarshal(aux.TTL, &nsec); err != nil {
			return fmt.Errorf("field ttl must be either a duration string (e.g., '10m') or integer nanoseconds")
		}
		c.TTL = time.Duration(nsec)
	}
	return nil
}

// UnmarshalYAML accepts the same ttl forms as UnmarshalJSON.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	aux := struct {
		rawConfig `yaml:",inline"`
		TTL       any `yaml:"ttl"`
	}{rawConfig: c.raw()}

	if err := value.Decode(&aux); err != nil {
		return err
	}
	c.apply(aux.rawConfig)

	switch ttl := aux.TTL.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid duration string for ttl: %w", err)
		}
		c.TTL = d
	case int:
		c.TTL = time.Duration(ttl)
	case int64:
		c.TTL = time.Duration(ttl)
	default:
		return fmt.Errorf("field ttl must be either a duration string (e.g., '10m') or integer nanoseconds")
	}
	return nil
}

func (c *Config) raw() rawConfig {
	return rawConfig{Enabled: c.Enabled, Strategy: c.Strategy, MaxSize: c.MaxSize}
}

func (c *Config) apply(r rawConfig) {
	c.Enabled = r.Enabled
	c.Strategy = r.Strategy
	c.MaxSize = r.MaxSize
}
