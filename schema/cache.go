// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 1 << 10

// Cache memoizes parsed descriptors by schema string.
type Cache struct {
	cache *lru.TwoQueueCache[uint64, *Descriptor] // key := xxhash64(schema)
	stats Stats
}

func NewCache(sz int) *Cache {
	if sz <= 0 {
		sz = DefaultCacheSize
	}
	c := &Cache{}
	c.cache, _ = lru.New2Q[uint64, *Descriptor](sz)
	return c
}

func (c *Cache) Name() string {
	return "schema"
}

// Parse returns the cached descriptor for s or parses and caches it.
// Parse errors are not cached.
func (c *Cache) Parse(s string) (*Descriptor, error) {
	key := xxhash.Sum64([]byte(s))
	if d, ok := c.cache.Get(key); ok && d.raw == s {
		c.stats.CountHits(1)
		return d, nil
	}
	c.stats.CountMisses(1)
	d, err := Parse(s)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, d)
	c.stats.CountInserts(1)
	return d, nil
}

func (c *Cache) Len() int {
	return c.cache.Len()
}

func (c *Cache) Purge() {
	c.cache.Purge()
}

func (c *Cache) Stats() Stats {
	s := c.stats.Get()
	s.Size = c.cache.Len()
	return s
}
