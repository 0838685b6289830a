// Package evict provides an insertion-ordered cache with move-to-end on touch
// and bulk removal of the oldest entries.
//
// A Cache is not safe for concurrent use; callers guard it with their own lock.
package evict

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Cache maps content hashes to values in recency order. The oldest entry is
// the one inserted or touched longest ago.
type Cache[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{m: orderedmap.New[string, V]()}
}

// TryGet returns the value stored for hash.
func (c *Cache[V]) TryGet(hash string) (V, bool) {
	return c.m.Get(hash)
}

// Contains reports whether hash is present.
func (c *Cache[V]) Contains(hash string) bool {
	_, ok := c.m.Get(hash)
	return ok
}

// Put inserts value at the newest position. It is a no-op returning false if
// hash is already present.
func (c *Cache[V]) Put(hash string, value V) bool {
	if _, ok := c.m.Get(hash); ok {
		return false
	}
	c.m.Set(hash, value)
	return true
}

// Set stores value for hash. An existing entry keeps its position; a new
// entry is inserted at the newest position.
func (c *Cache[V]) Set(hash string, value V) {
	c.m.Set(hash, value)
}

// Touch moves hash to the newest position. It reports whether hash was present.
func (c *Cache[V]) Touch(hash string) bool {
	return c.m.MoveToBack(hash) == nil
}

// Remove deletes hash, reporting whether it was present.
func (c *Cache[V]) Remove(hash string) bool {
	_, ok := c.m.Delete(hash)
	return ok
}

// RemoveOldest removes up to n of the oldest entries and returns how many
// were removed.
func (c *Cache[V]) RemoveOldest(n int) int {
	removed := 0
	for removed < n {
		oldest := c.m.Oldest()
		if oldest == nil {
			break
		}
		c.m.Delete(oldest.Key)
		removed++
	}
	return removed
}

// Trim removes oldest entries while the cache holds more than window entries,
// removing at most batch per call. It returns how many were removed.
func (c *Cache[V]) Trim(window, batch int) int {
	over := c.m.Len() - window
	if over <= 0 {
		return 0
	}
	return c.RemoveOldest(min(over, batch))
}

// Count returns the number of entries.
func (c *Cache[V]) Count() int {
	return c.m.Len()
}

// Keys returns the cached hashes from oldest to newest.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.m = orderedmap.New[string, V]()
}
