package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// InMemoryReportCache implements ReportCache inside the process.
// Values are stored JSON-encoded so callers never share decoded state.
// It does not share entries across instances.
type InMemoryReportCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	generation uint64
	prefix  string
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache(opts ...ReportCacheOption) *InMemoryReportCache {
	o := buildOptions(opts)
	return &InMemoryReportCache{
		entries: make(map[string]memoryEntry),
		prefix:  o.prefix,
		ttl:     o.ttl,
		now:     time.Now,
	}
}

// Get retrieves a report from cache, dropping it if expired
func (c *InMemoryReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	cacheKey := c.prefix + key

	c.mu.RLock()
	entry, ok := c.entries[cacheKey]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Set may have stored a fresh entry since the read lock was released
		if current, ok := c.entries[cacheKey]; ok && !c.now().Before(current.expiresAt) {
			delete(c.entries, cacheKey)
		}
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return true, nil
}

// Set stores a report in cache
func (c *InMemoryReportCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	c.mu.Lock()
	c.entries[c.prefix+key] = memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Generation returns the current invalidation generation
func (c *InMemoryReportCache) Generation(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

// InvalidateAll bumps the generation and removes every cached report
func (c *InMemoryReportCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	for k := range c.entries {
		if strings.HasPrefix(k, c.prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
