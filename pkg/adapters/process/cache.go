package process

import (
	"context"
	"slices"
	"sync"
)

// Cache stores raw discovery manifests between registry loads, keyed by
// the source's launch spec. Implementations must be safe for concurrent
// use. A failed lookup is just a miss; discovery runs again.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, manifest []byte)
}

// MemoryCache is the in-process default.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string][]byte),
	}
}

// Get returns a copy of the cached manifest so callers cannot mutate
// the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(data), true
}

// Set stores a copy of the manifest.
func (c *MemoryCache) Set(_ context.Context, key string, manifest []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = slices.Clone(manifest)
}
