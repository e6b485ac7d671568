package survival

import (
	"strconv"
	"sync"

	"github.com/louisbranch/explodingdice/internal/core/probability"
	"golang.org/x/sync/singleflight"
)

// Key identifies one survival value.
type Key struct {
	Sides  int
	Target int
}

func (k Key) String() string {
	return strconv.Itoa(k.Sides) + ":" + strconv.Itoa(k.Target)
}

// Cache memoizes survival values for the lifetime of one analysis run.
//
// The zero Cache is not usable; call NewCache.
type Cache struct {
	mu     sync.RWMutex
	values map[Key]probability.Value
	frozen bool

	inflight singleflight.Group
}

// NewCache returns an empty, writable cache.
func NewCache() *Cache {
	return &Cache{values: make(map[Key]probability.Value)}
}

// Lookup returns the cached value for key.
func (c *Cache) Lookup(key Key) (probability.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Freeze makes the cache read-only. Freezing is permanent.
func (c *Cache) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Frozen reports whether Freeze has been called.
func (c *Cache) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// Keys returns a snapshot of the cached keys in no particular order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	return keys
}

// store records v under key. The first write for a key wins; later writes
// carry the same value and are dropped. Frozen caches ignore writes.
func (c *Cache) store(key Key, v probability.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return
	}
	if _, exists := c.values[key]; exists {
		return
	}
	c.values[key] = v
}
