// Package detail implements the job detail view. It follows the
// aggregator's selection and fetches full postings lazily.
package detail

import (
	"context"
	"sync"
	"time"

	"jobscout/internal/jobs"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

const msgFetchFailed = "Could not load job details. Please try again."

// Fetcher loads a full posting by id
type Fetcher interface {
	GetDetails(ctx context.Context, jobID string) (*models.JobPosting, error)
}

// Source publishes selection changes
type Source interface {
	Subscribe(fn jobs.Listener) func()
	Snapshot() jobs.State
}

// State is what the detail view renders
type State struct {
	Status models.DetailStatus
	Job    *models.JobPosting
	Error  string
}

// Loading reports whether a fetch is outstanding
func (s State) Loading() bool {
	return s.Status == models.DetailStatusLoading
}

// Option configures a View
type Option func(*View)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithTimeout bounds each detail fetch
func WithTimeout(d time.Duration) Option {
	return func(v *View) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithSpawn replaces how fetches are started. Tests pass a synchronous one.
func WithSpawn(spawn func(func())) Option {
	return func(v *View) {
		if spawn != nil {
			v.spawn = spawn
		}
	}
}

// View tracks the selected job and its full details, with loading and
// error state kept apart from the aggregator's own.
type View struct {
	src     Source
	fetcher Fetcher
	logger  logging.Logger
	timeout time.Duration
	spawn   func(func())

	mu          sync.Mutex
	state       State
	selectedID  string
	gen         uint64
	cancel      context.CancelFunc
	unsubscribe func()
	closed      bool
}

// NewView subscribes to src and renders its current selection
func NewView(src Source, fetcher Fetcher, opts ...Option) *View {
	v := &View{
		src:     src,
		fetcher: fetcher,
		logger:  logging.NewNopLogger(),
		timeout: 30 * time.Second,
		spawn:   func(f func()) { go f() },
		state:   State{Status: models.DetailStatusIdle},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithField("component", "detail")

	v.unsubscribe = src.Subscribe(func(ev jobs.Event) {
		if ev.Type == jobs.EventSelection {
			v.sync()
		}
	})
	v.sync()
	return v
}

// State returns a copy of the current view
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	if s.Job != nil {
		j := s.Job.Clone()
		s.Job = &j
	}
	return s
}

// Close cancels any fetch and detaches from the source
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.unsubscribe()
}

// sync reads the selection under mu so overlapping syncs apply in order.
// Lock order is view then source.
func (v *View) sync() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	selected := v.src.Snapshot().SelectedJob

	if selected == nil {
		if v.selectedID == "" && v.state.Status == models.DetailStatusIdle {
			v.mu.Unlock()
			return
		}
		v.reset()
		v.state = State{Status: models.DetailStatusIdle}
		v.mu.Unlock()
		return
	}

	// reselecting the job already shown is not a new selection
	if selected.JobID == v.selectedID && v.state.Status != models.DetailStatusFailure {
		v.mu.Unlock()
		return
	}

	v.reset()
	v.selectedID = selected.JobID

	if selected.HasDescription() {
		v.state = State{Status: models.DetailStatusReady, Job: selected}
		v.mu.Unlock()
		return
	}

	v.state = State{Status: models.DetailStatusLoading, Job: selected}
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	v.cancel = cancel
	gen := v.gen
	jobID := selected.JobID
	v.mu.Unlock()

	v.logger.Debug("Fetching job details", map[string]interface{}{"job_id": jobID})
	v.spawn(func() {
		defer cancel()
		full, err := v.fetcher.GetDetails(ctx, jobID)
		v.finish(gen, jobID, full, err)
	})
}

// reset supersedes the outstanding fetch. Callers hold mu.
func (v *View) reset() {
	v.gen++
	v.selectedID = ""
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) finish(gen uint64, jobID string, full *models.JobPosting, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debug("Discarding superseded detail fetch", map[string]interface{}{"job_id": jobID})
		return
	}
	v.cancel = nil

	if err != nil {
		v.logger.WithError(err).Warn("Job detail fetch failed", map[string]interface{}{"job_id": jobID})
		v.state.Status = models.DetailStatusFailure
		v.state.Error = msgFetchFailed
		return
	}

	v.state = State{Status: models.DetailStatusReady, Job: full}
}
