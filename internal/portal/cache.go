package portal

import (
	"sync"
	"time"

	"github.com/nao1215/lanscan/internal/model"
)

// cacheEntry is one network's most recent scan result.
type cacheEntry struct {
	// Devices are the devices the scan found, sorted by address.
	Devices model.Devices

	// RefreshedAt is when the scan finished.
	RefreshedAt time.Time

	// ScanID identifies the refresh that produced this entry in logs and
	// response metadata.
	ScanID string
}

// resultCache holds the latest scan result per network with a shared TTL.
// Entries are never evicted, only replaced: a stale entry is still served
// while a new scan is running, so throwing it away would lose the fallback.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// newResultCache creates an empty cache whose entries expire after ttl.
func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the entry for network, if any. The entry may be stale;
// callers decide with fresh whether it is still servable without a rescan.
func (c *resultCache) get(network string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[network]
	return entry, ok
}

// put stores the entry for network, replacing any previous one.
func (c *resultCache) put(network string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[network] = entry
}

// fresh reports whether the entry is still within the TTL.
func (c *resultCache) fresh(entry cacheEntry) bool {
	return time.Since(entry.RefreshedAt) < c.ttl
}
