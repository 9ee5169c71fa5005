package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int64](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiresEntries(t *testing.T) {
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("sheet", "Gastos")
	now = now.Add(30 * time.Second)
	_, ok := c.Get("sheet")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("sheet")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUOverwriteAndDelete(t *testing.T) {
	c := NewLRUCache[int](1, time.Hour)
	c.Set("k", 1)
	c.Set("k", 2)
	v, _ := c.Get("k")
	assert.Equal(t, 2, v)

	c.Delete("k")
	c.Delete("missing")
	assert.Equal(t, 0, c.Size())
}
