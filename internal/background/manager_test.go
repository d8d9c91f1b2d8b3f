package background

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/internal/provider"
)

type countingSweeper struct {
	calls   atomic.Int32
	maxIdle time.Duration
}

func (s *countingSweeper) Sweep(maxIdle time.Duration) int {
	s.calls.Add(1)
	s.maxIdle = maxIdle
	return 0
}

type fixedProber struct {
	status provider.ConnectionStatus
}

func (p fixedProber) CheckConnection(context.Context) provider.ConnectionStatus {
	return p.status
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	m := NewManager(nil)
	err := m.Register("bad", "every so often", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	m := NewManager(nil)
	noop := func(context.Context) error { return nil }
	require.NoError(t, m.Register("sweep", "@every 1m", noop))
	assert.ErrorIs(t, m.Register("sweep", "@every 1m", noop), ErrDuplicateTask)
}

func TestRunNowRecordsOutcome(t *testing.T) {
	m := NewManager(nil)
	fail := true
	require.NoError(t, m.Register("flaky", "@every 1h", func(context.Context) error {
		if fail {
			return errors.New("boom")
		}
		return nil
	}))

	r, err := m.RunNow("flaky")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusFailure, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.Equal(t, 1, r.Failures)

	fail = false
	r, err = m.RunNow("flaky")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusSuccess, r.Status)
	assert.Empty(t, r.Error)
	assert.Equal(t, 2, r.Runs)
	assert.Equal(t, 1, r.Failures)
	require.NotNil(t, r.LastRun)

	_, err = m.RunNow("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestScheduledTaskFires(t *testing.T) {
	m := NewManager(nil)
	fired := make(chan struct{}, 4)
	require.NoError(t, m.Register("tick", "@every 1s", func(context.Context) error {
		fired <- struct{}{}
		return nil
	}))

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsHealthy())
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyRunning)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not fire")
	}

	results := m.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "tick", results[0].Name)
	assert.NotNil(t, results[0].NextRun)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	assert.False(t, m.IsHealthy())
}

func TestStopCancelsRunningTask(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	var once sync.Once
	require.NoError(t, m.Register("slow", "@every 1s", func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}))
	require.NoError(t, m.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Stop(ctx))
}

func TestSweepTask(t *testing.T) {
	s := &countingSweeper{}
	require.NoError(t, SweepTask(s, 30*time.Minute)(context.Background()))
	assert.Equal(t, int32(1), s.calls.Load())
	assert.Equal(t, 30*time.Minute, s.maxIdle)
}

func TestProbeTaskPublishes(t *testing.T) {
	var got []provider.ConnectionStatus
	publish := func(s provider.ConnectionStatus) { got = append(got, s) }

	ok := ProbeTask(fixedProber{status: provider.ConnectionStatus{OK: true, StatusCode: 200}}, publish)
	require.NoError(t, ok(context.Background()))

	down := ProbeTask(fixedProber{status: provider.ConnectionStatus{Message: "missing API key"}}, publish)
	err := down(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")

	require.Len(t, got, 2)
	assert.True(t, got[0].OK)
	assert.False(t, got[1].OK)
}
