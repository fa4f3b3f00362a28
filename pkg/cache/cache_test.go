package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T) (*Cache[string], *fakeClock) {
	t.Helper()

	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string]()
	c.now = clk.Now
	return c, clk
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(t)

	c.Set("k", "v", time.Minute)

	clk.Advance(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Has("k"))
}

func TestResetRestartsTTL(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(t)

	c.Set("k", "v1", time.Minute)
	clk.Advance(50 * time.Second)

	// Re-set before expiry restarts the clock.
	c.Set("k", "v2", time.Minute)
	clk.Advance(50 * time.Second)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestNoTTLNeverExpires(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(t)

	c.Set("k", "v", 0)
	clk.Advance(1000 * time.Hour)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	c.Set("k", "v", time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	c.Delete("k")
}

func TestClearAndSize(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Minute)
	assert.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(t)

	c.Set("live", "1", time.Hour)
	c.Set("dead1", "2", time.Second)
	c.Set("dead2", "3", time.Second)

	clk.Advance(2 * time.Second)

	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Size())
	assert.True(t, c.Has("live"))
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set("shared", "v", time.Minute)
				c.Get("shared")
				c.Size()
			}
		}()
	}
	wg.Wait()

	got, ok := c.Get("shared")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
