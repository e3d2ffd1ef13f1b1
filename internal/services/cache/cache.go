package cache

import (
	"strings"
	"sync"

	"imagereceiver/internal/models"
)

// Cache holds the newest known ImageInfo per key. Keys are either an image
// type ("original") or a type+coil composite ("original_C42"). Entries are
// replaced whole so readers never observe a partially written value. Writes
// come only from the watcher dispatch loop.
type Cache struct {
	mu     sync.RWMutex
	images map[string]models.ImageInfo
}

func New() *Cache {
	return &Cache{images: make(map[string]models.ImageInfo)}
}

// Update stores candidate under key iff no entry exists or the candidate is
// strictly newer. Reports whether the entry changed.
func (c *Cache) Update(key string, candidate models.ImageInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.images[key]
	if ok && candidate.Timestamp <= existing.Timestamp {
		return false
	}
	c.images[key] = candidate
	return true
}

// Set unconditionally replaces the entry for key. Used when recomputing
// after a removal, where the survivor may be older than the deleted file.
func (c *Cache) Set(key string, info models.ImageInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[key] = info
}

// Get returns the current entry for key.
func (c *Cache) Get(key string) (models.ImageInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.images[key]
	return info, ok
}

// Delete removes the entry for key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.images, key)
}

// DeleteType removes the bare type entry and every type+coil entry for the
// given image type.
func (c *Cache) DeleteType(imageType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.images {
		if key == imageType || strings.HasPrefix(key, imageType+"_") {
			delete(c.images, key)
		}
	}
}

// Snapshot returns a copy of the whole cache, keyed map as sent to newly
// connected viewers.
func (c *Cache) Snapshot() map[string]models.ImageInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]models.ImageInfo, len(c.images))
	for k, v := range c.images {
		snapshot[k] = v
	}
	return snapshot
}

// CountForType returns how many keys belong to the given image type.
func (c *Cache) CountForType(imageType string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for key := range c.images {
		if key == imageType || strings.HasPrefix(key, imageType+"_") {
			count++
		}
	}
	return count
}
