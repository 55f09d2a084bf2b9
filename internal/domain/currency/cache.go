package currency

import (
	"context"
	"sync"
)

// RateCache stores the latest snapshot per base currency. Implementations
// must be safe for concurrent use; writes are last-write-wins.
type RateCache interface {
	// Get returns the cached snapshot for base. ok is false on a miss.
	Get(ctx context.Context, base string) (snap *Snapshot, ok bool, err error)
	// Set replaces the snapshot stored under snap.Base.
	Set(ctx context.Context, snap *Snapshot) error
	// Invalidate drops the snapshot for base.
	Invalidate(ctx context.Context, base string) error
}

// MemoryCache is the in-process RateCache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]*Snapshot)}
}

func (c *MemoryCache) Get(_ context.Context, base string) (*Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.items[NormalizeCode(base)]
	return s, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	c.mu.Lock()
	c.items[snap.Base] = snap
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, base string) error {
	c.mu.Lock()
	delete(c.items, NormalizeCode(base))
	c.mu.Unlock()
	return nil
}

//Personal.AI order the ending
