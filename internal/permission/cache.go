package permission

import (
	"context"
	"sync"
)

// Cache stores resolved decisions per actor. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, actorID string, r Resource, a Action) (allowed bool, found bool, err error)
	Set(ctx context.Context, actorID string, r Resource, a Action, allowed bool) error
	Invalidate(ctx context.Context, actorID string) error
}

type decisionKey struct {
	resource Resource
	action   Action
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[decisionKey]bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]map[decisionKey]bool)}
}

func (c *MemoryCache) Get(_ context.Context, actorID string, r Resource, a Action) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	allowed, ok := c.entries[actorID][decisionKey{r, a}]
	return allowed, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, actorID string, r Resource, a Action, allowed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byActor, ok := c.entries[actorID]
	if !ok {
		byActor = make(map[decisionKey]bool)
		c.entries[actorID] = byActor
	}
	byActor[decisionKey{r, a}] = allowed
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, actorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, actorID)
	return nil
}

// Len returns the number of actors with cached decisions.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
