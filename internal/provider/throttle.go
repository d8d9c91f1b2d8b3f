package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobscout/internal/logging"
)

// EndpointStats counts calls made to one provider endpoint
type EndpointStats struct {
	Requests    int64     `json:"requests"`
	Failures    int64     `json:"failures"`
	RateLimited int64     `json:"rate_limited"`
	LastStatus  int       `json:"last_status"`
	LastSeen    time.Time `json:"last_seen"`
}

// Stats is a point-in-time view of the throttle
type Stats struct {
	Limit     float64                  `json:"limit_per_second"`
	Burst     int                      `json:"burst"`
	Endpoints map[string]EndpointStats `json:"endpoints"`
}

// Throttle paces outgoing calls with one token bucket shared by all
// endpoints and keeps per-endpoint counters. It never retries.
type Throttle struct {
	limiter   *rate.Limiter
	endpoints map[string]*EndpointStats
	mu        sync.RWMutex
	logger    logging.Logger
}

// NewThrottle creates a throttle allowing perMinute requests with the given
// burst. A non-positive perMinute disables pacing.
func NewThrottle(perMinute, burst int, logger logging.Logger) *Throttle {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if burst < 1 {
		burst = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Throttle{
		limiter:   rate.NewLimiter(limit, burst),
		endpoints: make(map[string]*EndpointStats),
		logger:    logger.WithField("component", "provider_throttle"),
	}
}

// Wait blocks until a token is available or ctx is done
func (t *Throttle) Wait(ctx context.Context, endpoint string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		t.logger.Debug("Throttle wait aborted", map[string]interface{}{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats(endpoint)
	s.Requests++
	s.LastSeen = time.Now()
	return nil
}

// Record stores the outcome of a call. status is 0 when no response arrived.
func (t *Throttle) Record(endpoint string, status int, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats(endpoint)
	s.LastStatus = status
	if failed {
		s.Failures++
	}
	if status == 429 {
		s.RateLimited++
	}
}

// Stats returns a copy of the current counters
func (t *Throttle) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Stats{
		Limit:     float64(t.limiter.Limit()),
		Burst:     t.limiter.Burst(),
		Endpoints: make(map[string]EndpointStats, len(t.endpoints)),
	}
	if t.limiter.Limit() == rate.Inf {
		out.Limit = -1
	}
	for name, s := range t.endpoints {
		out.Endpoints[name] = *s
	}
	return out
}

// stats must be called with mu held
func (t *Throttle) stats(endpoint string) *EndpointStats {
	s, ok := t.endpoints[endpoint]
	if !ok {
		s = &EndpointStats{}
		t.endpoints[endpoint] = s
	}
	return s
}
