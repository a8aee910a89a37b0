package realtime

import (
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	t.Run("set then get", func(t *testing.T) {
		c := NewCache[string, int](time.Minute)
		defer c.Close()

		c.Set("a", 1)
		if v, ok := c.Get("a"); !ok || v != 1 {
			t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
		}
		if _, ok := c.Get("missing"); ok {
			t.Error("Get(missing) reported a hit")
		}
	})

	t.Run("overwrite keeps the newest value", func(t *testing.T) {
		c := NewCache[string, int](time.Minute)
		defer c.Close()

		c.Set("a", 1)
		c.Set("a", 2)
		if v, _ := c.Get("a"); v != 2 {
			t.Errorf("Get(a) = %d, want 2", v)
		}
		if c.Len() != 1 {
			t.Errorf("Len() = %d, want 1", c.Len())
		}
	})

	t.Run("expired entries miss", func(t *testing.T) {
		c := NewCache[string, int](5 * time.Millisecond)
		defer c.Close()

		c.Set("a", 1)
		time.Sleep(20 * time.Millisecond)
		if _, ok := c.Get("a"); ok {
			t.Error("expired entry still readable")
		}
	})

	t.Run("delete removes the key", func(t *testing.T) {
		c := NewCache[string, int](time.Minute)
		defer c.Close()

		c.Set("a", 1)
		c.Delete("a")
		if _, ok := c.Get("a"); ok {
			t.Error("deleted entry still readable")
		}
		if c.Len() != 0 {
			t.Errorf("Len() = %d, want 0", c.Len())
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := NewCache[string, int](time.Minute)
		c.Close()
		c.Close()
	})
}
