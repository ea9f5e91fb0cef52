package cache

import (
	"sync"
)

// Map provides a type-safe in-memory key-value store.
type Map[K comparable, V any] struct {
	data map[K]V
	sync.RWMutex
}

// NewMap creates a new type-safe cache instance.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves a value by key, with existence check.
func (c *Map[K, V]) Get(key K) (V, bool) {
	c.RLock()
	defer c.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores a value with the given key.
func (c *Map[K, V]) Set(key K, value V) {
	c.Lock()
	defer c.Unlock()
	c.data[key] = value
}

// Delete removes a key-value pair.
func (c *Map[K, V]) Delete(key K) {
	c.Lock()
	defer c.Unlock()
	delete(c.data, key)
}

// Size returns the number of items in the cache.
func (c *Map[K, V]) Size() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.data)
}

// Clear empties the cache.
func (c *Map[K, V]) Clear() {
	c.Lock()
	defer c.Unlock()
	c.data = make(map[K]V)
}
