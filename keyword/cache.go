// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package keyword

// Cache is a worker-local mirror of the registry entries that worker has
// resolved. Repeat lookups for the same name skip the registry lock.
type Cache struct {
	registry *Registry
	names    map[string]uint64
	byID     map[uint64]string
}

// NewCache creates an empty cache in front of registry.
func NewCache(registry *Registry) *Cache {
	return &Cache{
		registry: registry,
		names:    make(map[string]uint64),
		byID:     make(map[uint64]string),
	}
}

// Registry returns the registry behind the cache.
func (c *Cache) Registry() *Registry {
	return c.registry
}

// Resolve returns the fingerprint of a registered name. A miss in the cache
// falls through to the registry; a registry hit is remembered, a registry
// miss is not.
func (c *Cache) Resolve(name string) (uint64, bool) {
	if fp, ok := c.names[name]; ok {
		return fp, true
	}
	fp, ok := c.registry.Lookup(name)
	if !ok {
		return 0, false
	}
	c.remember(name, fp)
	return fp, true
}

// Keyword resolves name into a Keyword or returns an *UnknownError.
func (c *Cache) Keyword(name string) (Keyword, error) {
	fp, ok := c.Resolve(name)
	if !ok {
		return Keyword{}, &UnknownError{Name: name}
	}
	return Keyword{Name: name, Fingerprint: fp}, nil
}

// Reserve registers name in the registry and caches the result.
func (c *Cache) Reserve(name string) (uint64, error) {
	if fp, ok := c.names[name]; ok {
		return fp, nil
	}
	fp, err := c.registry.Reserve(name)
	if err != nil {
		return 0, err
	}
	c.remember(name, fp)
	return fp, nil
}

// Name returns the name behind fp, preferring the cache.
func (c *Cache) Name(fp uint64) (string, bool) {
	if name, ok := c.byID[fp]; ok {
		return name, true
	}
	name, ok := c.registry.Name(fp)
	if ok {
		c.remember(name, fp)
	}
	return name, ok
}

// Cached reports whether name is already in the cache.
func (c *Cache) Cached(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.names)
}

func (c *Cache) remember(name string, fp uint64) {
	c.names[name] = fp
	c.byID[fp] = name
}
