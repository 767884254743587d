package cache

import (
	"sync"

	"github.com/skyward/deconflict/pkg/core"
)

// DefaultCapacity bounds how many recent runs are retained when no
// explicit capacity is given.
const DefaultCapacity = 64

// RunEntry is one completed detection run held in memory.
type RunEntry struct {
	ID        uint64          `json:"id"`
	Summary   core.RunSummary `json:"summary"`
	Conflicts []core.Conflict `json:"conflicts"`
}

// RunCache keeps the most recent detection runs so the API can serve run
// history without a database round trip. Latency on these calls matters
// when runs are triggered from the HTTP endpoint in quick succession.
type RunCache struct {
	mu       sync.RWMutex
	capacity int
	nextID   uint64
	entries  []RunEntry
}

// NewRunCache creates a cache holding at most capacity runs. A capacity
// of zero or less falls back to DefaultCapacity.
func NewRunCache(capacity int) *RunCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RunCache{
		capacity: capacity,
		entries:  make([]RunEntry, 0, capacity),
	}
}

// Add records a completed run and returns its assigned ID. The oldest
// entry is evicted once the cache is full.
func (c *RunCache) Add(summary core.RunSummary, conflicts []core.Conflict) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	entry := RunEntry{
		ID:        c.nextID,
		Summary:   summary,
		Conflicts: append([]core.Conflict(nil), conflicts...),
	}
	c.entries = append(c.entries, entry)
	if len(c.entries) > c.capacity {
		c.entries = c.entries[len(c.entries)-c.capacity:]
	}
	return entry.ID
}

// Get retrieves a run by ID.
func (c *RunCache) Get(id uint64) (RunEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].ID == id {
			return c.entries[i], true
		}
	}
	return RunEntry{}, false
}

// Recent returns up to n runs, newest first. n <= 0 returns all retained
// runs.
func (c *RunCache) Recent(n int) []RunEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || n > len(c.entries) {
		n = len(c.entries)
	}
	out := make([]RunEntry, 0, n)
	for i := len(c.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, c.entries[i])
	}
	return out
}

// Len reports how many runs are currently retained.
func (c *RunCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset clears all retained runs. Assigned IDs keep increasing.
func (c *RunCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
}
