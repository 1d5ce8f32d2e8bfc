package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
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

func TestLimiter_AllowAllowRejectThenReset(t *testing.T) {
	clk := newFakeClock()
	l := New(2, time.Minute, WithClock(clk.Now))

	d1 := l.Allow("k")
	d2 := l.Allow("k")
	d3 := l.Allow("k")

	assert.True(t, d1.Allowed)
	assert.Equal(t, 1, d1.Count)
	assert.True(t, d2.Allowed)
	assert.Equal(t, 2, d2.Count)
	assert.False(t, d3.Allowed)
	assert.Equal(t, 3, d3.Count)
	assert.Equal(t, 60, d3.RetryAfterSeconds())

	clk.Advance(time.Minute)

	d4 := l.Allow("k")
	assert.True(t, d4.Allowed)
	assert.Equal(t, 1, d4.Count)
	assert.Equal(t, clk.Now().Add(time.Minute), d4.ResetAt)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute, WithClock(newFakeClock().Now))

	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_RetryAfterRoundsUp(t *testing.T) {
	clk := newFakeClock()
	l := New(1, time.Minute, WithClock(clk.Now))

	l.Allow("k")
	clk.Advance(59*time.Second + 500*time.Millisecond)

	d := l.Allow("k")
	require.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)
	assert.Equal(t, 1, d.RetryAfterSeconds())

	l2 := New(1, 90*time.Second, WithClock(clk.Now))
	l2.Allow("k")
	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, 90, l2.Allow("k").RetryAfterSeconds())
}

func TestLimiter_RejectedRequestsKeepCounting(t *testing.T) {
	clk := newFakeClock()
	l := New(1, time.Minute, WithClock(clk.Now))

	l.Allow("k")
	for i := 0; i < 5; i++ {
		assert.False(t, l.Allow("k").Allowed)
	}
	assert.Equal(t, 7, l.Allow("k").Count)

	clk.Advance(2 * time.Minute)
	assert.True(t, l.Allow("k").Allowed)
}

func TestLimiter_MinimumLimit(t *testing.T) {
	l := New(0, time.Minute, WithClock(newFakeClock().Now))
	assert.True(t, l.Allow("k").Allowed)
	assert.False(t, l.Allow("k").Allowed)
}

func TestLimiter_Sweep(t *testing.T) {
	clk := newFakeClock()
	l := New(5, time.Minute, WithClock(clk.Now))

	l.Allow("old")
	clk.Advance(30 * time.Second)
	l.Allow("fresh")

	assert.Equal(t, 0, l.Sweep())
	assert.Equal(t, 2, l.Len())

	clk.Advance(30 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	d := l.Allow("old")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)

	d = l.Allow("fresh")
	assert.Equal(t, 2, d.Count)
}

func TestLimiter_ConcurrentAllowDoesNotUndercount(t *testing.T) {
	const workers, perWorker = 16, 50
	l := New(workers*perWorker, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				l.Allow("shared")
			}
		}()
	}
	wg.Wait()

	d := l.Allow("shared")
	assert.False(t, d.Allowed)
	assert.Equal(t, workers*perWorker+1, d.Count)
}

func TestLimiter_RunJanitorStopsOnCancel(t *testing.T) {
	l := New(1, time.Millisecond)
	l.Allow("k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestLimiter_RunJanitorZeroIntervalReturns(t *testing.T) {
	l := New(1, time.Minute)
	l.RunJanitor(context.Background(), 0)
}
