package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"jobscout/internal/logging"
	"jobscout/internal/provider"
	"jobscout/internal/query"
	"jobscout/pkg/models"
)

// Searcher fetches one page of results
type Searcher interface {
	Search(ctx context.Context, req provider.SearchRequest) (*provider.SearchResult, error)
}

// SavedStore persists the full saved set as one value
type SavedStore interface {
	Load(ctx context.Context) ([]models.JobPosting, error)
	Save(ctx context.Context, jobs []models.JobPosting) error
}

// Aggregator owns the search state of one session: the committed query and
// filters, the accumulated results, the saved set and the selected job.
//
// Provider calls run outside the lock. Every fetch takes a sequence number
// and a response is applied only if no newer fetch was issued meanwhile.
type Aggregator struct {
	searcher  Searcher
	store     SavedStore
	normalize func(string) string
	numPages  int
	logger    logging.Logger

	mu        sync.Mutex
	query     SearchQuery
	filters   models.Filters
	results   []models.JobPosting
	totalJobs int
	// set when the provider omitted the total and no empty page has ended
	// the search yet
	totalUnknown bool
	searched     bool
	loading      bool
	errMsg       string
	saved        []models.JobPosting
	selected     *models.JobPosting
	seq          uint64
	closed       bool

	listeners    map[int]Listener
	nextListener int

	// serializes toggles so persisted order matches in-memory order
	saveMu sync.Mutex
}

// NewAggregator creates an aggregator and loads the saved set once
func NewAggregator(ctx context.Context, searcher Searcher, store SavedStore, opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		searcher:  searcher,
		store:     store,
		normalize: query.Normalize,
		numPages:  1,
		logger:    logging.NewNopLogger(),
		filters:   models.DefaultFilters(),
		results:   []models.JobPosting{},
		saved:     []models.JobPosting{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithField("component", "aggregator")

	stored, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load saved jobs: %w", err)
	}
	for _, job := range stored {
		if job.JobID == "" || indexOf(a.saved, job.JobID) >= 0 {
			continue
		}
		a.saved = append(a.saved, job.Clone())
	}

	a.logger.Debug("Aggregator created", map[string]interface{}{
		"saved_jobs": len(a.saved),
	})
	return a, nil
}

// RunSearch normalizes raw, merges overrides into the current filters and
// fetches page one. Query and filters are committed only on success; on
// failure prior results stay in place and the error text is set.
func (a *Aggregator) RunSearch(ctx context.Context, raw string, overrides models.FilterOverrides) error {
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Field: "query", Message: msgEmptyQuery}
	}
	normalized := a.normalize(raw)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	filters := a.filters.Apply(overrides)
	seq := a.begin()
	a.mu.Unlock()
	a.emit(EventLoading)

	a.logger.Info("Running search", map[string]interface{}{
		"query":      normalized,
		"filters":    filters,
		"request_id": seq,
	})

	res, err := a.searcher.Search(ctx, provider.SearchRequest{
		Query:    normalized,
		Page:     filters.Page,
		NumPages: a.numPages,
		Filters:  filters,
	})

	a.mu.Lock()
	if !a.current(seq) {
		a.mu.Unlock()
		return ErrSuperseded
	}
	a.loading = false

	if err != nil {
		a.errMsg = describe(err)
		a.mu.Unlock()
		a.logger.WithError(err).Warn("Search failed", map[string]interface{}{
			"query":      normalized,
			"request_id": seq,
		})
		a.emit(EventResults)
		return err
	}

	items := res.Items
	total := res.TotalJobs
	// without a total, paging goes on until a page comes back empty
	unknown := res.TotalUnknown && len(items) > 0
	if res.TotalUnknown {
		total = len(items)
	}
	if total < 0 {
		total = 0
	}
	if len(items) > total {
		items = items[:total]
	}

	a.query = SearchQuery{Raw: raw, Normalized: normalized}
	a.filters = filters
	a.results = cloneJobs(items)
	a.totalJobs = total
	a.totalUnknown = unknown
	a.searched = true
	a.mu.Unlock()

	a.logger.Info("Search completed", map[string]interface{}{
		"query":      normalized,
		"results":    len(items),
		"total_jobs": total,
		"request_id": seq,
	})
	a.emit(EventResults)
	return nil
}

// LoadMore fetches the next page and appends it. It reports false without a
// fetch when nothing was searched yet, a fetch is outstanding or every
// result is already loaded.
func (a *Aggregator) LoadMore(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return false, ErrClosed
	}
	if !a.searched || a.loading || !a.totalUnknown && len(a.results) >= a.totalJobs {
		a.mu.Unlock()
		return false, nil
	}

	filters := a.filters
	filters.Page++
	normalized := a.query.Normalized
	seq := a.begin()
	a.mu.Unlock()
	a.emit(EventLoading)

	res, err := a.searcher.Search(ctx, provider.SearchRequest{
		Query:    normalized,
		Page:     filters.Page,
		NumPages: a.numPages,
		Filters:  filters,
	})

	a.mu.Lock()
	if !a.current(seq) {
		a.mu.Unlock()
		return false, ErrSuperseded
	}
	a.loading = false

	if err != nil {
		a.errMsg = describe(err)
		a.mu.Unlock()
		a.logger.WithError(err).Warn("Load more failed", map[string]interface{}{
			"query":      normalized,
			"page":       filters.Page,
			"request_id": seq,
		})
		a.emit(EventResults)
		return false, err
	}

	a.results = append(a.results, cloneJobs(res.Items)...)
	a.filters.Page = filters.Page
	a.totalJobs = res.TotalJobs
	a.totalUnknown = res.TotalUnknown
	// An empty page or a shrinking total means the provider has nothing
	// more. Never report fewer jobs than are already loaded.
	if len(res.Items) == 0 || a.totalUnknown || a.totalJobs < len(a.results) {
		a.totalJobs = len(a.results)
	}
	if len(res.Items) == 0 {
		a.totalUnknown = false
	}
	loaded, total := len(a.results), a.totalJobs
	a.mu.Unlock()

	a.logger.Debug("Loaded more results", map[string]interface{}{
		"page":       filters.Page,
		"received":   len(res.Items),
		"loaded":     loaded,
		"total_jobs": total,
		"request_id": seq,
	})
	a.emit(EventResults)
	return true, nil
}

// ToggleSave adds job to the saved set or removes it when already present,
// then persists the whole set. The in-memory set changes only if the write
// succeeds. It returns the new saved state.
func (a *Aggregator) ToggleSave(ctx context.Context, job models.JobPosting) (bool, error) {
	if job.JobID == "" {
		return false, &ValidationError{Field: "job_id", Message: msgMissingID}
	}

	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return false, ErrClosed
	}
	next := make([]models.JobPosting, 0, len(a.saved)+1)
	idx := indexOf(a.saved, job.JobID)
	for i := range a.saved {
		if i != idx {
			next = append(next, a.saved[i])
		}
	}
	saved := idx < 0
	if saved {
		next = append(next, job.Clone())
	}
	a.mu.Unlock()

	if err := a.store.Save(ctx, next); err != nil {
		a.logger.WithError(err).Error("Failed to persist saved jobs", map[string]interface{}{
			"job_id": job.JobID,
			"saved":  saved,
		})
		return !saved, fmt.Errorf("persist saved jobs: %w", err)
	}

	a.mu.Lock()
	a.saved = next
	a.mu.Unlock()

	a.logger.Debug("Toggled saved job", map[string]interface{}{
		"job_id": job.JobID,
		"saved":  saved,
	})
	a.emit(EventSaved)
	return saved, nil
}

// SelectJob sets the job shown in the detail view. It never fetches.
func (a *Aggregator) SelectJob(job models.JobPosting) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	j := job.Clone()
	a.selected = &j
	a.mu.Unlock()
	a.emit(EventSelection)
}

// ClearSelectedJob clears the selection
func (a *Aggregator) ClearSelectedJob() {
	a.mu.Lock()
	if a.closed || a.selected == nil {
		a.mu.Unlock()
		return
	}
	a.selected = nil
	a.mu.Unlock()
	a.emit(EventSelection)
}

// Snapshot returns a deep copy of the current state
func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Subscribe registers fn for state changes and returns its cancel func
func (a *Aggregator) Subscribe(fn Listener) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// Close drops listeners and discards any fetch still in flight
func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.seq++
	a.loading = false
	a.listeners = make(map[int]Listener)
	return nil
}

// begin issues a new sequence number and marks a fetch outstanding. Callers
// hold mu.
func (a *Aggregator) begin() uint64 {
	a.seq++
	a.loading = true
	a.errMsg = ""
	return a.seq
}

// current reports whether seq is still the latest fetch. Callers hold mu.
func (a *Aggregator) current(seq uint64) bool {
	if seq == a.seq {
		return true
	}
	a.logger.Debug("Discarding stale response", map[string]interface{}{
		"request_id": seq,
		"latest":     a.seq,
	})
	return false
}

// snapshot must be called with mu held
func (a *Aggregator) snapshot() State {
	s := State{
		Query:        a.query,
		Filters:      a.filters,
		Results:      cloneJobs(a.results),
		TotalJobs:    a.totalJobs,
		TotalUnknown: a.totalUnknown,
		Loading:      a.loading,
		Error:        a.errMsg,
		Saved:        cloneJobs(a.saved),
		Searched:     a.searched,
	}
	if a.selected != nil {
		j := a.selected.Clone()
		s.SelectedJob = &j
	}
	return s
}

func (a *Aggregator) emit(t EventType) {
	a.mu.Lock()
	if len(a.listeners) == 0 {
		a.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(a.listeners))
	for id := range a.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = a.listeners[id]
	}
	ev := Event{Type: t, State: a.snapshot()}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
