package dataset

import (
	"context"
	"sync"

	"realestate-trade-map/internal/metrics"
	"realestate-trade-map/internal/models"
)

// RecordLoader loads and normalizes one dataset.
type RecordLoader interface {
	Load(ctx context.Context, path string) ([]models.Record, error)
}

type cacheEntry struct {
	done    chan struct{}
	records []models.Record
	err     error
}

// Cache memoizes loaded datasets by path for the lifetime of the process.
// Concurrent requests for the same path share one load; failed loads are not kept.
// Returned slices are shared and must not be modified.
type Cache struct {
	loader  RecordLoader
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader RecordLoader) *Cache {
	return &Cache{
		loader:  loader,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the records of path, loading them on first use.
func (c *Cache) Get(ctx context.Context, path string) ([]models.Record, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			return e.records, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &cacheEntry{done: make(chan struct{})}
	c.entries[path] = e
	c.mu.Unlock()

	e.records, e.err = c.loader.Load(ctx, path)
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, path)
		c.mu.Unlock()
	} else {
		metrics.RecordsCached.Add(float64(len(e.records)))
	}
	close(e.done)
	return e.records, e.err
}

// Loaded reports whether path is already cached.
func (c *Cache) Loaded(path string) bool {
	c.mu.Lock()
	e, ok := c.entries[path]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-e.done:
		return e.err == nil
	default:
		return false
	}
}

// Paths lists the cached dataset paths.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	return paths
}
