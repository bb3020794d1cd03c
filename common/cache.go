package common

import (
	lru "github.com/hashicorp/golang-lru"
)

// EntityCache is a small wrapper around an LRU cache for WSV entities,
// keyed by their string identity (account id, asset id, role name, ...).
type EntityCache struct {
	lru *lru.Cache
}

// NewEntityCache builds a cache holding at most size entries. size <= 0
// disables caching (every Get misses, every Add is a no-op).
func NewEntityCache(size int) *EntityCache {
	if size <= 0 {
		return &EntityCache{}
	}
	c, err := lru.New(size)
	if err != nil {
		// Only returned by golang-lru when size <= 0, already excluded above.
		panic(err)
	}
	return &EntityCache{lru: c}
}

// Add inserts or updates key's value.
func (c *EntityCache) Add(key string, value interface{}) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Get looks up key.
func (c *EntityCache) Get(key string) (interface{}, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Remove evicts key, if present.
func (c *EntityCache) Remove(key string) {
	if c.lru == nil {
		return
	}
	c.lru.Remove(key)
}

// Purge clears the cache.
func (c *EntityCache) Purge() {
	if c.lru == nil {
		return
	}
	c.lru.Purge()
}
