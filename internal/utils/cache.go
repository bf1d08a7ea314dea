package utils

import (
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

type cacheItem[V any] struct {
	value V
	stamp fileStamp
}

// Cache is a goroutine-safe map whose entries can be tied to a file and
// dropped once that file changes on disk
type Cache[K comparable, V any] struct {
	items map[K]cacheItem[V]
	mutex sync.RWMutex
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]cacheItem[V]),
	}
}

// Get returns the value stored under key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	return item.value, ok
}

// GetWithFileValidation returns the value stored under key if filePath still
// has the modification time and size recorded by SetWithFileInfo. A stale
// entry is removed.
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if stat, err := os.Stat(filePath); err == nil {
		if stat.ModTime().Equal(item.stamp.modTime) && stat.Size() == item.stamp.size {
			return item.value, true
		}
	}

	c.Delete(key)
	return zero, false
}

// Set stores value under key with no file attached
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = cacheItem[V]{value: value}
}

// SetWithFileInfo stores value under key together with the current stamp of
// filePath
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = cacheItem[V]{
		value: value,
		stamp: fileStamp{modTime: stat.ModTime(), size: stat.Size()},
	}
	return nil
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes every entry
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	clear(c.items)
}

// Size returns the number of entries
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
