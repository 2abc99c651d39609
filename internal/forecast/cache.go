package forecast

import (
	"sync"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a fetched forecast stays usable.
const DefaultTTL = time.Hour

// Entry is a cached forecast and the time it was fetched.
type Entry struct {
	Result    domain.ForecastResult
	FetchedAt time.Time
}

// Cache is a process-wide, in-memory TTL cache of forecasts keyed by Key.
// Expired entries are evicted lazily on lookup; there is no background sweep
// and no capacity bound. Concurrent writers race with last-writer-wins.
type Cache struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]Entry
}

// NewCache creates an empty cache. A nil clock uses real time; a non-positive
// ttl uses DefaultTTL.
func NewCache(clock clockwork.Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]Entry),
	}
}

// Lookup outcomes reported by GetWithStatus.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupExpired = "expired"
)

// Get returns the cached forecast for key if present and fresh. A stale entry
// is removed and reported as absent.
func (c *Cache) Get(key string) (domain.ForecastResult, bool) {
	result, status := c.GetWithStatus(key)
	return result, status == LookupHit
}

// GetWithStatus is Get, additionally distinguishing a plain miss from an
// evicted stale entry.
func (c *Cache) GetWithStatus(key string) (domain.ForecastResult, string) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.ForecastResult{}, LookupMiss
	}
	if c.IsExpired(e, now) {
		delete(c.entries, key)
		return domain.ForecastResult{}, LookupExpired
	}
	return e.Result, LookupHit
}

// Put stores a forecast fetched at fetchedAt, replacing any existing entry.
func (c *Cache) Put(key string, result domain.ForecastResult, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{Result: result, FetchedAt: fetchedAt}
}

// IsExpired reports whether the entry is at least TTL old at now.
func (c *Cache) IsExpired(e Entry, now time.Time) bool {
	return now.Sub(e.FetchedAt) >= c.ttl
}

// Len returns the number of stored entries, including stale ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Now exposes the cache clock so writers can timestamp entries consistently.
func (c *Cache) Now() time.Time {
	return c.clock.Now()
}
