package report

import (
	"sync"

	"RetentionSentinel/internal/cohort"
	"RetentionSentinel/internal/model"
)

type cacheKey struct {
	fingerprint   string
	month         model.YearMonth
	revenueWindow int
}

// SnapshotCache memoizes snapshots per (ledger fingerprint, month, revenue
// window). It is owned by the caller and safe for concurrent use.
type SnapshotCache struct {
	mu    sync.Mutex
	items map[cacheKey]*model.Snapshot
	hits  int
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{items: make(map[cacheKey]*model.Snapshot)}
}

// Get returns the cached snapshot or computes and stores it.
func (c *SnapshotCache) Get(l *model.Ledger, ym model.YearMonth, revenueWindow int) *model.Snapshot {
	key := cacheKey{month: ym, revenueWindow: revenueWindow}
	if l != nil {
		key.fingerprint = l.Fingerprint()
	}

	c.mu.Lock()
	if snap, ok := c.items[key]; ok {
		c.hits++
		c.mu.Unlock()
		return snap
	}
	c.mu.Unlock()

	snap := cohort.AggregateWindow(l, ym, revenueWindow)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing
	}
	c.items[key] = snap
	return snap
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Hits returns how many lookups were served from the cache.
func (c *SnapshotCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Clear drops every cached snapshot, e.g. after the ledger is reloaded.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cacheKey]*model.Snapshot)
	c.hits = 0
}
