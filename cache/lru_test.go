package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[int](3)
	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Count())

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Zero(t, stats.Evictions)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string](2)
	c.Set("a", "A")
	c.Set("b", "B")
	_, _ = c.Get("a") // b is now the oldest
	c.Set("c", "C")

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c := NewLRU[int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())

	c.Set("a", 1)
	c.Set("b", 2)
	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, 1, c.Count())

	c.Clear()
	assert.Zero(t, c.Count())
	_, ok := c.Get("b")
	assert.False(t, ok)

	c.Set("c", 3)
	assert.Equal(t, 1, c.Count())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](64)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((w*31 + i) % 100)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Remove(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Count(), 64)
	stats := c.Stats()
	assert.Equal(t, int64(8*500), stats.Hits+stats.Misses)
}
