package hashing

import (
	"sync"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// EvalCache is a concurrency-safe store of final evaluations.
type EvalCache struct {
	mu          sync.RWMutex
	entries     map[Key]engine.EvalResult
	maxCapacity int
	hits        int
	misses      int
}

// NewEvalCache creates a cache. maxCapacity of 0 means unlimited; once a
// limited cache is full new keys are no longer stored.
func NewEvalCache(maxCapacity int) *EvalCache {
	if maxCapacity < 0 {
		maxCapacity = 0
	}
	return &EvalCache{
		entries:     make(map[Key]engine.EvalResult),
		maxCapacity: maxCapacity,
	}
}

// Get returns the stored evaluation for k and records a hit or miss.
func (c *EvalCache) Get(k Key) (engine.EvalResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.entries[k]
	if !ok {
		c.misses++
		return engine.EvalResult{}, false
	}
	c.hits++
	return copyResult(ev), true
}

// Put stores ev under k, replacing any previous entry. It reports false
// when the cache is full and k was not already present.
func (c *EvalCache) Put(k Key, ev engine.EvalResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; !ok && c.isFullLocked() {
		return false
	}
	c.entries[k] = copyResult(ev)
	return true
}

// Len returns the number of stored evaluations.
func (c *EvalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Hits returns how many lookups found an entry.
func (c *EvalCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}

// Misses returns how many lookups found nothing.
func (c *EvalCache) Misses() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.misses
}

// IsFull returns true if the cache has reached its capacity limit.
// Always returns false for unlimited capacity (maxCapacity = 0).
func (c *EvalCache) IsFull() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isFullLocked()
}

func (c *EvalCache) isFullLocked() bool {
	return c.maxCapacity > 0 && len(c.entries) >= c.maxCapacity
}

func copyResult(ev engine.EvalResult) engine.EvalResult {
	ev.BestMoves = append([]engine.BestMoves(nil), ev.BestMoves...)
	return ev
}
