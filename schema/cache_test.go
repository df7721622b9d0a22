// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	c := NewCache(16)
	a, err := c.Parse(voteSchema)
	require.NoError(t, err)
	b, err := c.Parse(voteSchema)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = c.Parse("broken")
	assert.ErrorIs(t, err, ErrMalformedSegment)
	_, err = c.Parse("broken")
	assert.ErrorIs(t, err, ErrMalformedSegment)

	assert.Equal(t, Stats{Size: 1, Inserts: 1, Hits: 1, Misses: 3}, c.Stats())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d, err := c.Parse(voteSchema)
				if assert.NoError(t, err) {
					assert.Equal(t, 3, d.Len())
				}
			}
		}()
	}
	wg.Wait()
	s := c.Stats()
	assert.Equal(t, int64(800), s.Hits+s.Misses)
	assert.Equal(t, 1, s.Size)
}
