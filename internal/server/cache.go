package server

import (
	"sync"
	"time"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

// CachedRun is a completed routine result plus its completion time.
type CachedRun struct {
	Routine     types.RoutineType       `json:"routine"`
	CompletedAt time.Time               `json:"completed_at"`
	Result      *workflow.RoutineResult `json:"result"`
}

// RunCache keeps the most recent result per routine type so the dashboard
// can re-read a run without re-triggering inference.
type RunCache struct {
	mu     sync.RWMutex
	latest map[types.RoutineType]*CachedRun
	last   *CachedRun
}

// NewRunCache creates an empty cache.
func NewRunCache() *RunCache {
	return &RunCache{latest: make(map[types.RoutineType]*CachedRun)}
}

// Put records a completed run as the latest for its routine type.
func (c *RunCache) Put(routine types.RoutineType, result *workflow.RoutineResult) {
	entry := &CachedRun{
		Routine:     routine,
		CompletedAt: time.Now(),
		Result:      result,
	}
	c.mu.Lock()
	c.latest[routine] = entry
	c.last = entry
	c.mu.Unlock()
}

// Latest returns the most recent run of the given routine type, or nil.
func (c *RunCache) Latest(routine types.RoutineType) *CachedRun {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest[routine]
}

// LatestAny returns the most recent run of any routine type, or nil.
func (c *RunCache) LatestAny() *CachedRun {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}
