package application

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// searchCache stores recently computed search results to avoid re-filtering
// the full directory for identical queries while profiles remain unchanged.
type searchCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]searchCacheEntry
}

type searchCacheEntry struct {
	workers   []Worker
	expiresAt time.Time
}

func newSearchCache(ttl time.Duration, maxEntries int, now func() time.Time) *searchCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &searchCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]searchCacheEntry),
	}
}

func (c *searchCache) Get(key string) ([]Worker, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneWorkers(entry.workers), true
}

func (c *searchCache) Store(key string, workers []Worker) {
	if c == nil {
		return
	}
	cloned := cloneWorkers(workers)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = searchCacheEntry{workers: cloned, expiresAt: expiry}
}

func (c *searchCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]searchCacheEntry)
	c.mu.Unlock()
}

func (c *searchCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *searchCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneWorkers(workers []Worker) []Worker {
	if len(workers) == 0 {
		return nil
	}
	out := make([]Worker, len(workers))
	copy(out, workers)
	return out
}

func buildSearchCacheKey(params SearchParams) string {
	weekdays := make([]string, 0, len(params.AvailableWeekdays))
	for _, day := range params.AvailableWeekdays {
		weekdays = append(weekdays, strconv.Itoa(day))
	}
	sort.Strings(weekdays)

	var minRate, maxRate string
	if params.MinRate != nil {
		minRate = fmt.Sprintf("%g", *params.MinRate)
	}
	if params.MaxRate != nil {
		maxRate = fmt.Sprintf("%g", *params.MaxRate)
	}

	builder := strings.Builder{}
	builder.WriteString(strings.ToLower(params.Keyword))
	builder.WriteString("|")
	builder.WriteString(minRate)
	builder.WriteString("|")
	builder.WriteString(maxRate)
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(params.Location))
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(params.Specialty))
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(params.ServiceTier))
	builder.WriteString("|")
	builder.WriteString(params.ClientID)
	builder.WriteString("|")
	if params.MatchClientLocation {
		builder.WriteString("nearby")
	}
	builder.WriteString("|")
	builder.WriteString(strings.Join(weekdays, ","))
	builder.WriteString("|")
	builder.WriteString(params.SortBy)
	return builder.String()
}
