package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aistudy/authkit/core"
)

var _ core.CacheWithStats = (*Memory)(nil)

type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Memory is a process-local existence cache with per-entry expiry.
type Memory struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type entry struct {
	exists    bool
	expiresAt time.Time
}

func NewMemory(c Config) *Memory {
	if c.TTL == 0 {
		c.TTL = core.DefaultExistenceTTL
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &Memory{
		entries: make(map[string]entry),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Meant for tests.
func (c *Memory) WithClock(now func() time.Time) *Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *Memory) Get(_ context.Context, key string) (bool, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return false, false, nil
	}

	if !now.Before(e.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
			atomic.AddInt64(&c.evictions, 1)
		}
		c.mu.Unlock()
		return false, false, nil
	}

	atomic.AddInt64(&c.hits, 1)
	return e.exists, true, nil
}

// Set stores exists under key. A zero ttl uses the cache default.
func (c *Memory) Set(_ context.Context, key string, exists bool, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if _, present := c.entries[key]; !present && len(c.entries) >= c.maxSize {
		c.evictOne()
	}

	c.entries[key] = entry{
		exists:    exists,
		expiresAt: c.now().Add(ttl),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// evictOne drops an expired entry if there is one, else an arbitrary one.
// Caller holds the write lock.
func (c *Memory) evictOne() {
	now := c.now()
	victim := ""
	for k, e := range c.entries {
		victim = k
		if !now.Before(e.expiresAt) {
			break
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
