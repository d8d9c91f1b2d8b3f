// Package session keeps one search pipeline per client. A session bundles
// the aggregator, the scroll tracker and controller, and the detail view,
// and persists its saved jobs under its own storage key.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jobscout/internal/detail"
	"jobscout/internal/jobs"
	"jobscout/internal/logging"
	"jobscout/internal/scroll"
	"jobscout/internal/storage"
	"jobscout/pkg/utils"
)

// ErrClosed is returned once the registry has been shut down
var ErrClosed = errors.New("session registry closed")

// Deps are shared by every session the registry creates
type Deps struct {
	Searcher      jobs.Searcher
	Fetcher       detail.Fetcher
	Backend       storage.Backend
	BaseKey       string
	NumPages      int
	DetailTimeout time.Duration
	Logger        logging.Logger
}

// Session is one client's pipeline
type Session struct {
	ID         string
	Aggregator *jobs.Aggregator
	Tracker    *scroll.Tracker
	Scroll     *scroll.Controller
	Detail     *detail.View
	Store      *storage.KeyedStore

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// LastSeen is when the session was last handed out
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Close tears down the pipeline. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Scroll.Close()
	s.Detail.Close()
	s.Aggregator.Close()
}

// Registry maps session ids to live sessions
type Registry struct {
	deps   Deps
	logger logging.Logger
	now    func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates an empty registry
func NewRegistry(deps Deps) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		deps:     deps,
		logger:   logger.WithField("component", "sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id without creating one
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id, building it on first use. An
// empty id gets a fresh one. Concurrent first requests for one id share a
// single build.
func (r *Registry) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = utils.GenerateSessionID()
	}
	if s, ok := r.Get(id); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(id, func() (interface{}, error) {
		if s, ok := r.Get(id); ok {
			return s, nil
		}
		// built outside the lock since loading saved jobs does I/O
		s, err := r.build(ctx, id)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			s.Close()
			return nil, ErrClosed
		}
		s.touch(r.now())
		r.sessions[id] = s
		count := len(r.sessions)
		r.mu.Unlock()

		r.logger.Info("Session created", map[string]interface{}{
			"session_id":  id,
			"storage_key": s.Store.Key(),
			"sessions":    count,
		})
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) build(ctx context.Context, id string) (*Session, error) {
	logger := r.logger.WithField("session_id", id)
	store := storage.ForKey(r.deps.Backend, storage.SessionKey(r.deps.BaseKey, id))

	agg, err := jobs.NewAggregator(ctx, r.deps.Searcher, store,
		jobs.WithLogger(logger),
		jobs.WithNumPages(r.deps.NumPages),
	)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	tracker := scroll.NewTracker()
	return &Session{
		ID:         id,
		Aggregator: agg,
		Tracker:    tracker,
		Scroll:     scroll.NewController(agg, tracker, logger),
		Detail: detail.NewView(agg, r.deps.Fetcher,
			detail.WithLogger(logger),
			detail.WithTimeout(r.deps.DetailTimeout),
		),
		Store: store,
	}, nil
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// IDs lists live session ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep closes sessions idle for longer than maxIdle and returns how many
// were removed. Their saved jobs stay in storage.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	remaining := len(r.sessions)
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		r.logger.Info("Idle sessions swept", map[string]interface{}{
			"removed":   len(idle),
			"remaining": remaining,
			"max_idle":  maxIdle.String(),
		})
	}
	return len(idle)
}

// Close shuts down every session
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	r.logger.Info("Session registry closed", map[string]interface{}{
		"closed_sessions": len(all),
	})
}
