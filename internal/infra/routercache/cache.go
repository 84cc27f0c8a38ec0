package routercache

import (
	"sync"
	"time"

	"github.com/rakki194/nlrouter/internal/domain"
)

// Cache is a bounded TTL cache for suggestion responses. Eviction is by
// insertion order: when full, the single oldest-inserted key is removed,
// regardless of access recency.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	ttl     time.Duration
	maxSize int
	clock   domain.Clock

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry struct {
	response   domain.SuggestResponse
	insertedAt time.Time
}

// New creates a cache with the given TTL and capacity.
func New(ttl time.Duration, maxSize int, clock domain.Clock) *Cache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxCacheSize
	}
	if clock == nil {
		clock = domain.SystemClock()
	}
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
	}
}

// Get returns the cached response for key together with its age. Expired
// entries are treated as absent.
func (c *Cache) Get(key string) (domain.SuggestResponse, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.validLocked(e.insertedAt) {
		c.misses++
		return domain.SuggestResponse{}, 0, false
	}
	c.hits++
	return domain.CloneSuggestResponse(e.response), c.clock.Now().Sub(e.insertedAt), true
}

// Set stores a response under key. On overflow the oldest-inserted key is
// evicted. Re-setting an existing key refreshes its timestamp but keeps its
// original insertion position.
func (c *Cache) Set(key string, response domain.SuggestResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.response = domain.CloneSuggestResponse(response)
		existing.insertedAt = c.clock.Now()
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = &entry{
		response:   domain.CloneSuggestResponse(response),
		insertedAt: c.clock.Now(),
	}
	c.order = append(c.order, key)
}

// IsValid reports whether an entry inserted at the given time is still fresh.
func (c *Cache) IsValid(insertedAt time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked(insertedAt)
}

// Cleanup purges expired entries. The cache needs no background sweep;
// callers invoke this proactively.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok {
			continue
		}
		if c.validLocked(e.insertedAt) {
			kept = append(kept, key)
			continue
		}
		delete(c.entries, key)
		removed++
	}
	c.order = kept
	return removed
}

// Size returns the number of live (possibly expired) entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// MaxSize returns the configured capacity.
func (c *Cache) MaxSize() int { return c.maxSize }

// Stats reports hit/miss/eviction counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

func (c *Cache) validLocked(insertedAt time.Time) bool {
	return c.clock.Now().Sub(insertedAt) < c.ttl
}

func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			c.evictions++
			return
		}
	}
}
