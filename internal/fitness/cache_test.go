package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	t.Parallel()
	_, err := NewCache(0)
	assert.Error(t, err)
	_, err = NewCache(-1)
	assert.Error(t, err)

	c, err := NewCache(10)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCache_ReadWriteAndCounters(t *testing.T) {
	t.Parallel()
	c, err := NewCache(2)
	require.NoError(t, err)

	_, ok := c.Read(1)
	assert.False(t, ok)

	c.Write(1, 100)
	v, ok := c.Read(1)
	require.True(t, ok)
	assert.Equal(t, Value(100), v)

	hits, misses := c.Counters()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Write(1, 10)
	c.Write(2, 20)
	c.Write(3, 30)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Read(1)
	assert.False(t, ok, "oldest entry is evicted at capacity")
	_, ok = c.Read(3)
	assert.True(t, ok)
}
