package cache

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestCache_SetGet(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("today", "card", time.Minute)

	v, ok := c.Get("today")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "card")

	_, ok = c.Get("missing")
	assert.Equal(t, ok, false)
}

func TestCache_Expiry(t *testing.T) {
	c := New(0)
	defer c.Close()

	now := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("today", 1, time.Hour)
	now = now.Add(59 * time.Minute)
	_, ok := c.Get("today")
	assert.Equal(t, ok, true)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("today")
	assert.Equal(t, ok, false)
	assert.Equal(t, c.Len(), 1)

	c.cleanup()
	assert.Equal(t, c.Len(), 0)
}

func TestCache_Delete(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("a", 1, time.Minute)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.Equal(t, ok, false)
}

func TestCache_SweeperAndClose(t *testing.T) {
	c := New(5 * time.Millisecond)
	c.Set("a", 1, time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, c.Len(), 0)

	c.Close()
	c.Close()
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", ""), Key("a", "b"))
	assert.Equal(t, len(Key("x")), 64)
}
