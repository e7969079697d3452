package search

import (
	"sync"
	"time"

	"veloce-backend/internal/domain"
)

// DefaultCatalogTTL is how long a fetched catalog stays fresh.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogCache holds the last successfully fetched catalog with a simple
// time-based invalidation rule: no partial invalidation, no per-entry
// eviction. The whole value is replaced atomically on refresh, so
// concurrent readers never observe a half-written catalog. The cache is an
// explicit object injected into the session rather than package globals,
// which keeps TTL behavior unit-testable.
type CatalogCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	records   []domain.CarRecord
	fetchedAt time.Time
	now       func() time.Time
}

// NewCatalogCache creates an empty cache. A non-positive ttl falls back to
// DefaultCatalogTTL.
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{ttl: ttl, now: time.Now}
}

// Get returns the cached catalog and whether it is still fresh.
func (c *CatalogCache) Get() ([]domain.CarRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.records == nil || c.expiredLocked() {
		return nil, false
	}
	return c.records, true
}

// Set replaces the cached catalog and restarts the TTL window.
func (c *CatalogCache) Set(records []domain.CarRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.fetchedAt = c.now()
}

// IsExpired reports whether the TTL window has elapsed (an empty cache is
// expired by definition).
func (c *CatalogCache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records == nil || c.expiredLocked()
}

// Invalidate drops the cached catalog so the next fetch hits the provider.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.fetchedAt = time.Time{}
}

func (c *CatalogCache) expiredLocked() bool {
	return c.now().Sub(c.fetchedAt) >= c.ttl
}

// SetClock overrides the time source; tests use it to step past the TTL
// without sleeping.
func (c *CatalogCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
