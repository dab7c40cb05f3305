package resolver

import "sync"

// result is a cached lookup outcome. found=false is a cached negative, so
// repeated lookups for a missing key do not hit the collaborator again.
type result[T any] struct {
	value T
	found bool
}

// cache is an unbounded per-key cache with versioned writes. Every fetch
// claims a version before it starts; a write only lands if no newer fetch or
// invalidation claimed the key in the meantime, so a slow, long-superseded
// response cannot clobber a refreshed entry.
type cache[T any] struct {
	mu      sync.Mutex
	entries map[string]result[T]
	version map[string]uint64
}

func newCache[T any]() *cache[T] {
	return &cache[T]{
		entries: make(map[string]result[T]),
		version: make(map[string]uint64),
	}
}

func (c *cache[T]) get(key string) (result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

// begin claims a version for an in-flight fetch of key.
func (c *cache[T]) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version[key]++
	return c.version[key]
}

// commit stores r for key only if v is still the latest claimed version.
func (c *cache[T]) commit(key string, v uint64, r result[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version[key] != v {
		return false
	}
	c.entries[key] = r
	return true
}

// invalidate drops exactly this key and outraces any fetch still in flight.
func (c *cache[T]) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.version[key]++
}
