package openfda

import (
	"time"

	"github.com/giygas/adverse-events-api/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Reference cache settings.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute
)

// CacheEntry is a stored result and the instant it stops being served.
type CacheEntry struct {
	Key       string
	Value     Result
	ExpiresAt time.Time
}

// Cache is a bounded LRU of results with a per-entry expiry. Expiry is
// checked against the injected clock on every read, so an entry is never
// served once now is past ExpiresAt even if the LRU has not evicted it yet.
type Cache struct {
	lru *expirable.LRU[string, CacheEntry]
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a cache holding at most size entries for ttl each.
// A nil now uses time.Now.
func NewCache(size int, ttl time.Duration, now func() time.Time) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		lru: expirable.NewLRU[string, CacheEntry](size, nil, ttl),
		ttl: ttl,
		now: now,
	}
}

// Get returns a copy of the result stored under key.
func (c *Cache) Get(key string) (Result, bool) {
	entry, ok := c.lru.Get(key)
	if ok && c.now().After(entry.ExpiresAt) {
		c.lru.Remove(key)
		ok = false
	}
	if !ok {
		metrics.CacheMisses.Inc()
		metrics.CacheEntries.Set(float64(c.lru.Len()))
		return Result{}, false
	}
	metrics.CacheHits.Inc()
	return entry.Value.clone(), true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache) Put(key string, value Result) {
	c.lru.Add(key, CacheEntry{
		Key:       key,
		Value:     value.clone(),
		ExpiresAt: c.now().Add(c.ttl),
	})
	metrics.CacheEntries.Set(float64(c.lru.Len()))
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.lru.Purge()
	metrics.CacheEntries.Set(0)
}

// Len returns the number of stored entries, expired ones included until
// they are evicted.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// PurgeExpired evicts entries past their expiry and returns how many were removed.
func (c *Cache) PurgeExpired() int {
	now := c.now()
	removed := 0
	for _, key := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(key); ok && now.After(entry.ExpiresAt) {
			if c.lru.Remove(key) {
				removed++
			}
		}
	}
	metrics.CacheEntries.Set(float64(c.lru.Len()))
	return removed
}
