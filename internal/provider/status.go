package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStatusMaxAge is how long a connection status is served before
// the provider is asked again
const DefaultStatusMaxAge = 5 * time.Minute

// Checker reports provider connectivity
type Checker interface {
	CheckConnection(ctx context.Context) ConnectionStatus
}

// StatusCache serves the last known connection status. Every check costs
// a provider search, so a new one is only made once the stored status is
// older than maxAge, and concurrent misses share it.
type StatusCache struct {
	checker Checker
	maxAge  time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu   sync.RWMutex
	last ConnectionStatus
	has  bool
}

// NewStatusCache wraps checker. A non-positive maxAge uses DefaultStatusMaxAge.
func NewStatusCache(checker Checker, maxAge time.Duration) *StatusCache {
	if maxAge <= 0 {
		maxAge = DefaultStatusMaxAge
	}
	return &StatusCache{checker: checker, maxAge: maxAge, now: time.Now}
}

// Store records a status obtained elsewhere, such as by the scheduled check
func (s *StatusCache) Store(status ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has && status.CheckedAt.Before(s.last.CheckedAt) {
		return
	}
	s.last = status
	s.has = true
}

// Last returns the stored status, if any
func (s *StatusCache) Last() (ConnectionStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.has
}

// CheckConnection returns the stored status while it is fresh and checks
// the provider otherwise
func (s *StatusCache) CheckConnection(ctx context.Context) ConnectionStatus {
	if st, ok := s.fresh(); ok {
		return st
	}
	v, _, _ := s.group.Do("status", func() (interface{}, error) {
		if st, ok := s.fresh(); ok {
			return st, nil
		}
		st := s.checker.CheckConnection(ctx)
		s.Store(st)
		return st, nil
	})
	return v.(ConnectionStatus)
}

func (s *StatusCache) fresh() (ConnectionStatus, bool) {
	st, ok := s.Last()
	if !ok || s.now().Sub(st.CheckedAt) >= s.maxAge {
		return ConnectionStatus{}, false
	}
	return st, true
}
