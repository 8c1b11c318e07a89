package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_BasicOperations(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 100})
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("key1", "value1", 0)

		val, ok := c.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("key2", "value2", 0)
		c.Delete("key2")

		_, ok := c.Get("key2")
		assert.False(t, ok)
	})
}

func TestCache_Expiration(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 100})
	defer c.Close()

	c.Set("expiring", 42, 30*time.Millisecond)

	val, ok := c.Get("expiring")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("expiring")
	assert.False(t, ok)
}

func TestCache_Eviction(t *testing.T) {
	evicted := make(map[string]bool)
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
		MaxItems:        3,
		OnEviction:      func(key string, _ any) { evicted[key] = true },
	})
	defer c.Close()

	for i := 1; i <= 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), i, 0)
	}
	assert.Equal(t, 3, c.Size())

	// key1 becomes most recently used
	c.Get("key1")

	c.Set("key4", 4, 0)
	assert.Equal(t, 3, c.Size())

	_, ok := c.Get("key2")
	assert.False(t, ok)
	assert.True(t, evicted["key2"])

	_, ok = c.Get("key1")
	assert.True(t, ok)
}
