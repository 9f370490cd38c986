package shader

import "log"

// UniformCache maps uniform names to locations for one program. Names that
// do not resolve are cached as -1 and warned about once.
type UniformCache struct {
	locations map[string]int32
}

// NewUniformCache returns an empty cache.
func NewUniformCache() *UniformCache {
	return &UniformCache{locations: make(map[string]int32)}
}

// Lookup returns the cached location for name, calling resolve on a miss.
// ok is false when the name does not resolve.
func (c *UniformCache) Lookup(name string, resolve func(string) int32) (loc int32, ok bool) {
	if loc, hit := c.locations[name]; hit {
		return loc, loc >= 0
	}
	loc = resolve(name)
	if loc < 0 {
		loc = -1
		log.Printf("Warning: uniform '%s' not found in shader program", name)
	}
	c.locations[name] = loc
	return loc, loc >= 0
}

// Len returns the number of cached names, resolved or not.
func (c *UniformCache) Len() int { return len(c.locations) }

// Clear drops every cached location.
func (c *UniformCache) Clear() { clear(c.locations) }
