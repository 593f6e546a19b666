package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock permite avanzar el tiempo a mano
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(maxEntries int) (*TTLCache[string], *fakeClock) {
	clock := newFakeClock()
	c := NewTTLCache[string](Options{MaxEntries: maxEntries, DefaultTTL: time.Minute, Name: "test"}, WithClock(clock.Now))
	return c, clock
}

func TestNewTTLCache_Defaults(t *testing.T) {
	c := NewTTLCache[int](Options{})
	assert.Equal(t, DefaultMaxEntries, c.maxEntries)
	assert.Equal(t, DefaultTTL, c.defaultTTL)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_SetAndGet(t *testing.T) {
	tests := []struct {
		name      string
		ttl       time.Duration
		advance   time.Duration
		wantFound bool
	}{
		{name: "fresh entry", ttl: 10 * time.Second, advance: 5 * time.Second, wantFound: true},
		{name: "exactly at expiry is still live", ttl: 10 * time.Second, advance: 10 * time.Second, wantFound: true},
		{name: "expired entry", ttl: 10 * time.Second, advance: 11 * time.Second, wantFound: false},
		{name: "zero ttl uses default", ttl: 0, advance: 59 * time.Second, wantFound: true},
		{name: "negative ttl uses default and expires", ttl: -1, advance: 61 * time.Second, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestCache(10)
			c.Set("k", "v", tt.ttl)
			clock.Advance(tt.advance)

			got, ok := c.Get("k")
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, "v", got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestTTLCache_StaleReadContract(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("quote:AAPL", "old", 10*time.Second)
	clock.Advance(11 * time.Second)

	// allow-stale sigue devolviendo el valor y no lo purga
	v, ok := c.GetAllowStale("quote:AAPL")
	require.True(t, ok)
	assert.Equal(t, "old", v)
	assert.False(t, c.IsFresh("quote:AAPL"))

	v, state := c.Lookup("quote:AAPL")
	assert.Equal(t, "old", v)
	assert.Equal(t, interfaces.CacheStale, state)

	v, ok = c.GetAllowStale("quote:AAPL")
	require.True(t, ok)
	assert.Equal(t, "old", v)

	// get normal la reporta ausente y la purga
	_, ok = c.Get("quote:AAPL")
	assert.False(t, ok)
	_, ok = c.GetAllowStale("quote:AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_SetResetsExpiry(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("k", "v1", 10*time.Second)
	clock.Advance(11 * time.Second)
	assert.False(t, c.IsFresh("k"))

	c.Set("k", "v2", 10*time.Second)
	assert.True(t, c.IsFresh("k"))
	v, state := c.Lookup("k")
	assert.Equal(t, "v2", v)
	assert.Equal(t, interfaces.CacheFresh, state)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_LookupMiss(t *testing.T) {
	c, _ := newTestCache(10)
	v, state := c.Lookup("nope")
	assert.Empty(t, v)
	assert.Equal(t, interfaces.CacheMiss, state)
	assert.Equal(t, "miss", state.String())
}

func TestTTLCache_LRUEviction(t *testing.T) {
	c, _ := newTestCache(3)

	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Set("c", "3", 0)

	// tocar "a" la vuelve la más reciente; "b" pasa a ser la LRU
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", "4", 0)

	assert.Equal(t, 3, c.Len())
	_, ok = c.GetAllowStale("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, []string{"d", "a", "c"}, c.Keys())
}

func TestTTLCache_AllowStaleUpdatesRecency(t *testing.T) {
	c, clock := newTestCache(2)
	c.Set("a", "1", time.Second)
	c.Set("b", "2", time.Minute)
	clock.Advance(2 * time.Second)

	_, ok := c.GetAllowStale("a")
	require.True(t, ok)

	c.Set("c", "3", 0)
	_, ok = c.GetAllowStale("a")
	assert.True(t, ok)
	_, ok = c.GetAllowStale("b")
	assert.False(t, ok)
}

func TestTTLCache_OverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(2)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Set("a", "1b", 0)

	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("b")
	assert.Equal(t, "2", v)
}

func TestTTLCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(10)
	c.Set("quote:A", "1", 0)
	c.Set("history:A:x", "2", 0)
	c.Set("history:B:x", "3", 0)

	c.Delete("quote:A")
	c.Delete("missing")
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 2, c.DeletePrefix(HistoryPrefix))
	assert.Equal(t, 0, c.Len())

	c.Set("x", "1", 0)
	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c := NewTTLCache[int](Options{MaxEntries: 50, DefaultTTL: time.Minute})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Set(key, i, 0)
				c.Get(key)
				c.GetAllowStale(key)
				c.Lookup(key)
				c.IsFresh(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestKeys(t *testing.T) {
	w := entities.Window{
		Start: time.Date(2022, 1, 2, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "quote:AAPL", QuoteKey("AAPL"))
	assert.Equal(t, "history:AAPL:2022-01-02:2025-01-02:1d", HistoryKey("AAPL", w, entities.IntervalDay))
}
