package scroll

import (
	"context"
	"sync"

	"jobscout/internal/jobs"
	"jobscout/internal/logging"
)

// Aggregator is the part of jobs.Aggregator the controller drives
type Aggregator interface {
	Snapshot() jobs.State
	Subscribe(fn jobs.Listener) func()
	LoadMore(ctx context.Context) (bool, error)
}

// Controller turns "last result became visible" into LoadMore. It watches
// only the last result, drops the watch while a fetch is outstanding and
// when every result is loaded, and moves it whenever the list grows.
type Controller struct {
	agg      Aggregator
	observer Observer
	logger   logging.Logger

	mu          sync.Mutex
	target      string
	cancel      func()
	unsubscribe func()
	closed      bool
}

// NewController wires the controller to agg and starts watching
func NewController(agg Aggregator, observer Observer, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Controller{
		agg:      agg,
		observer: observer,
		logger:   logger.WithField("component", "scroll"),
	}
	c.unsubscribe = agg.Subscribe(func(ev jobs.Event) {
		switch ev.Type {
		case jobs.EventLoading, jobs.EventResults:
			c.sync()
		}
	})
	c.sync()
	return c
}

// Target is the job id currently watched, or "" when suspended
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Close stops watching and detaches from the aggregator
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.unsubscribe()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.target = ""
}

// sync re-reads the aggregator rather than trusting event order, since
// events from concurrent fetches may be delivered out of order. The snapshot
// is taken under mu so the last sync to run applies the newest state. Lock
// order is controller then aggregator.
func (c *Controller) sync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	s := c.agg.Snapshot()
	want := ""
	if !s.Loading && s.HasMore() {
		want = s.LastJobID()
	}
	if want == c.target {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.target = want
	if want != "" {
		c.cancel = c.observer.Observe(want, c.onVisible(want))
	}

	c.logger.Debug("Scroll target changed", map[string]interface{}{
		"target":  want,
		"results": len(s.Results),
		"total":   s.TotalJobs,
	})
}

func (c *Controller) onVisible(target string) Callback {
	return func(ctx context.Context) {
		s := c.agg.Snapshot()
		if s.Loading || !s.HasMore() || s.LastJobID() != target {
			return
		}

		fetched, err := c.agg.LoadMore(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("Scroll load more failed", map[string]interface{}{
				"target": target,
			})
			return
		}
		c.logger.Debug("Scroll triggered load more", map[string]interface{}{
			"target":  target,
			"fetched": fetched,
		})
	}
}
