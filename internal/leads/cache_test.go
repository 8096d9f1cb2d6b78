package leads

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache()
	c.Put(Lead{ID: "5", Name: "Acme"})

	got, ok := c.Get("5")
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name)

	_, ok = c.Get("6")
	assert.False(t, ok)
}

func TestCachePutOverwrites(t *testing.T) {
	c := NewCache()
	c.Put(Lead{ID: "5", Name: "Acme"})
	c.Put(Lead{ID: "5", Name: "Acme Corp"})

	got, ok := c.Get("5")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, 1, c.Len())
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	c.Put(Lead{ID: "5", Name: "Acme"})

	now = now.Add(entryTTL + time.Minute)

	_, ok := c.Get("5")
	assert.False(t, ok, "expired entry should miss")
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	for i := 0; i < maxEntries; i++ {
		c.Put(Lead{ID: fmt.Sprintf("lead-%d", i)})
		now = now.Add(time.Millisecond)
	}
	require.Equal(t, maxEntries, c.Len())

	c.Put(Lead{ID: "one-more"})

	assert.Equal(t, maxEntries, c.Len())
	_, ok := c.Get("lead-0")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get("one-more")
	assert.True(t, ok)
}
