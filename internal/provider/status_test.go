package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls int32
	delay time.Duration
	at    func() time.Time
}

func (c *countingChecker) CheckConnection(ctx context.Context) ConnectionStatus {
	n := atomic.AddInt32(&c.calls, 1)
	time.Sleep(c.delay)
	return ConnectionStatus{OK: true, StatusCode: 200, Message: "check " + string(rune('0'+n)), CheckedAt: c.at()}
}

func TestStatusCache_ServesFreshStatus(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	checker := &countingChecker{at: func() time.Time { return now }}
	cache := NewStatusCache(checker, time.Minute)
	cache.now = func() time.Time { return now }

	first := cache.CheckConnection(context.Background())
	second := cache.CheckConnection(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&checker.calls))

	now = now.Add(time.Minute)
	third := cache.CheckConnection(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&checker.calls))
	assert.Equal(t, "check 2", third.Message)
}

func TestStatusCache_UsesStoredStatus(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	checker := &countingChecker{at: func() time.Time { return now }}
	cache := NewStatusCache(checker, time.Minute)
	cache.now = func() time.Time { return now }

	_, ok := cache.Last()
	assert.False(t, ok)

	cache.Store(ConnectionStatus{Message: "down", CheckedAt: now.Add(-10 * time.Second)})
	st := cache.CheckConnection(context.Background())
	assert.False(t, st.OK)
	assert.Equal(t, "down", st.Message)
	assert.Zero(t, atomic.LoadInt32(&checker.calls))

	// an older result never replaces a newer one
	cache.Store(ConnectionStatus{OK: true, CheckedAt: now.Add(-time.Hour)})
	last, ok := cache.Last()
	require.True(t, ok)
	assert.Equal(t, "down", last.Message)
}

func TestStatusCache_ConcurrentMissesShareOneCheck(t *testing.T) {
	checker := &countingChecker{delay: 50 * time.Millisecond, at: time.Now}
	cache := NewStatusCache(checker, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, cache.CheckConnection(context.Background()).OK)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&checker.calls))
}
