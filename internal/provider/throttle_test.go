package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Counts(t *testing.T) {
	th := NewThrottle(0, 0, nil)

	require.NoError(t, th.Wait(context.Background(), "search"))
	th.Record("search", 200, false)
	require.NoError(t, th.Wait(context.Background(), "search"))
	th.Record("search", 429, true)

	stats := th.Stats()
	assert.Equal(t, float64(-1), stats.Limit)
	assert.Equal(t, 1, stats.Burst)

	s := stats.Endpoints["search"]
	assert.Equal(t, int64(2), s.Requests)
	assert.Equal(t, int64(1), s.Failures)
	assert.Equal(t, int64(1), s.RateLimited)
	assert.Equal(t, 429, s.LastStatus)
	assert.False(t, s.LastSeen.IsZero())
}

func TestThrottle_WaitHonoursContext(t *testing.T) {
	// one request per minute, burst of one
	th := NewThrottle(1, 1, nil)
	require.NoError(t, th.Wait(context.Background(), "search"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, th.Wait(ctx, "search"))

	assert.Equal(t, int64(1), th.Stats().Endpoints["search"].Requests)
}
