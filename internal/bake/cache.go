package bake

import (
	"sync"

	"github.com/Faultbox/meshlod/pkg/lod"
)

// Cache is an in-memory store of baked level sets keyed by mesh name.
type Cache struct {
	data map[string]*lod.MeshLevels
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*lod.MeshLevels),
	}
}

// Get retrieves a level set from cache.
func (c *Cache) Get(name string) (*lod.MeshLevels, bool) {
	// Counting needs the write lock.
	c.mu.Lock()
	defer c.mu.Unlock()

	levels, ok := c.data[name]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return levels, ok
}

// Set stores a level set in cache.
func (c *Cache) Set(name string, levels *lod.MeshLevels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[name] = levels
}

// Delete removes one entry.
func (c *Cache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, name)
}

// Len returns the number of cached level sets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*lod.MeshLevels)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
