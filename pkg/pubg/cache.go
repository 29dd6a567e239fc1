package pubg

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache errors.
var (
	ErrKeyNotFound           = errors.New("key not found")
	ErrEntryExpired          = errors.New("cached entry expired")
	ErrCacheDisabled         = errors.New("telemetry caching is disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache layer")
	ErrNATSConfigRequired    = errors.New("cache type nats needs a NATS section")
	ErrUnsupportedCacheType  = errors.New("unknown cache type")
)

// CacheEntry is a cached response body.
type CacheEntry struct {
	Data      []byte
	ExpiresAt time.Time
	ETag      string
}

// Expired reports whether the entry has an expiry in the past.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache stores response bodies by key. The telemetry gateway uses it to avoid
// downloading the same immutable document twice.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheType selects a cache backend in CacheConfig.
type CacheType string

// Cache backends.
const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeNATS   CacheType = "nats"
	CacheTypeNone   CacheType = "none"
)

// CacheConfig configures a cache backend.
type CacheConfig struct {
	// Type defaults to CacheTypeMemory.
	Type CacheType `yaml:"type"`

	// MaxSize bounds the memory cache; zero selects DefaultCacheSize.
	MaxSize int `yaml:"max_size"`

	// TTL bounds the age of memory cache entries; zero keeps them until
	// evicted or past their own ExpiresAt.
	TTL time.Duration `yaml:"ttl"`

	// NATS is required for CacheTypeNATS.
	NATS *NATSKVConfig `yaml:"nats"`
}

// DefaultCacheSize is the memory cache capacity used when none is configured.
const DefaultCacheSize = 64

// NewCacheFromConfig creates a cache backend from configuration. A nil config
// yields a memory cache.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = &CacheConfig{Type: CacheTypeMemory}
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return newMemoryCache(config.MaxSize, config.TTL), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		cache, err := NewNATSKVCache(ctx, config.NATS)
		if err != nil {
			return nil, err
		}

		return cache, nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// MemoryCache is a size-bounded LRU cache. Entries also honor their own
// ExpiresAt.
type MemoryCache struct {
	entries *expirable.LRU[string, *CacheEntry]
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	return newMemoryCache(maxSize, 0)
}

// newMemoryCache bounds every entry's age by ttl as well; a positive ttl
// starts the LRU's background sweeper.
func newMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &MemoryCache{
		entries: expirable.NewLRU[string, *CacheEntry](maxSize, nil, ttl),
	}
}

// Get returns the entry for key.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if entry.Expired() {
		c.entries.Remove(key)

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return entry, nil
}

// Set stores entry under key, evicting the least recently used entry when
// the cache is full.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.entries.Add(key, entry)

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(context.Context) error {
	c.entries.Purge()

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// NoOpCache never stores anything. Set it as Config.TelemetryCache to
// download telemetry on every call.
type NoOpCache struct{}

// NewNoOpCache returns a cache that always misses.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get implements Cache. It always fails with ErrCacheDisabled.
func (*NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set implements Cache.
func (*NoOpCache) Set(context.Context, string, *CacheEntry) error { return nil }

// Delete implements Cache.
func (*NoOpCache) Delete(context.Context, string) error { return nil }

// Clear implements Cache.
func (*NoOpCache) Clear(context.Context) error { return nil }

// Has implements Cache.
func (*NoOpCache) Has(context.Context, string) bool { return false }

// CacheChain layers caches from fastest to slowest, typically a MemoryCache in
// front of a NATSKVCache. A hit in a slower layer is copied into the faster
// ones; writes go to every layer.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain layers caches in lookup order.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// Get implements Cache.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for depth, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, faster := range c.layers[:depth] {
			_ = faster.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set implements Cache. Failures of individual layers are joined.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(layer Cache) error {
		return layer.Set(ctx, key, entry)
	})
}

// Delete implements Cache.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(layer Cache) error {
		return layer.Delete(ctx, key)
	})
}

// Clear implements Cache.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(layer Cache) error {
		return layer.Clear(ctx)
	})
}

// Has implements Cache.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	return slices.ContainsFunc(c.layers, func(layer Cache) bool {
		return layer.Has(ctx, key)
	})
}

func (c *CacheChain) each(apply func(layer Cache) error) error {
	var errs []error

	for _, layer := range c.layers {
		err := apply(layer)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
