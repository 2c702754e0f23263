package utils

import (
	"os"
	"sync"
	"time"
)

// stamp identifies one version of a file on disk
type stamp struct {
	modTime time.Time
	size    int64
}

type cacheItem[V any] struct {
	value V
	stamp *stamp
}

// Cache is a concurrency safe generic cache. Items stored with SetForFile are
// only returned by GetForFile while the file is unchanged on disk.
type Cache[K comparable, V any] struct {
	items map[K]*cacheItem[V]
	mutex sync.RWMutex
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*cacheItem[V]),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, exists := c.items[key]; exists {
		return item.value, true
	}

	var zero V
	return zero, false
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &cacheItem[V]{value: value}
}

// GetForFile retrieves an item stored with SetForFile. A changed or missing
// file evicts the item.
func (c *Cache[K, V]) GetForFile(key K, path string) (V, bool) {
	var zero V

	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()
	if !exists || item.stamp == nil {
		return zero, false
	}

	if info, err := os.Stat(path); err == nil {
		if info.ModTime().Equal(item.stamp.modTime) && info.Size() == item.stamp.size {
			return item.value, true
		}
	}

	c.Delete(key)
	return zero, false
}

// SetForFile stores an item tied to the current version of the file at path
func (c *Cache[K, V]) SetForFile(key K, value V, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &cacheItem[V]{
		value: value,
		stamp: &stamp{modTime: info.ModTime(), size: info.Size()},
	}
	return nil
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]*cacheItem[V])
}

// Len returns the number of items in the cache
func (c *Cache[K, V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

