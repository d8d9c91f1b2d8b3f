// Package background runs periodic housekeeping on cron schedules.
package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobscout/internal/logging"
)

// DefaultTaskTimeout bounds a single run of any task
const DefaultTaskTimeout = time.Minute

type task struct {
	name     string
	schedule string
	fn       TaskFunc
	entry    cron.EntryID
	result   TaskResult
}

// Manager owns a cron scheduler and the bookkeeping of each task's runs
type Manager struct {
	cron    *cron.Cron
	logger  logging.Logger
	timeout time.Duration

	mu      sync.Mutex
	tasks   map[string]*task
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewManager creates a stopped manager. Overlapping runs of the same task
// are skipped and panics are recovered.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithField("component", "background")
	cl := cronLogger{logger: logger}

	return &Manager{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: DefaultTaskTimeout,
		tasks:   make(map[string]*task),
		ctx:     context.Background(),
	}
}

// Register schedules fn under name. schedule accepts standard cron
// expressions and descriptors such as "@every 10m".
func (m *Manager) Register(name, schedule string, fn TaskFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, name)
	}
	t := &task{
		name:     name,
		schedule: schedule,
		fn:       fn,
		result:   TaskResult{Name: name, Schedule: schedule, Status: TaskStatusScheduled},
	}
	id, err := m.cron.AddFunc(schedule, func() { m.execute(t) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, schedule, err)
	}
	t.entry = id
	m.tasks[name] = t

	m.logger.Info("Task registered", map[string]interface{}{
		"task":     name,
		"schedule": schedule,
	})
	return nil
}

// Start begins firing tasks. Runs derive their context from ctx.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true
	m.cron.Start()

	m.logger.Info("Task manager started", map[string]interface{}{
		"tasks": len(m.tasks),
	})
	return nil
}

// Stop halts the scheduler, cancels running tasks and waits for them until
// ctx expires
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	m.logger.Info("Stopping task manager...", map[string]interface{}{})
	cancel()
	done := m.cron.Stop()

	select {
	case <-done.Done():
		m.logger.Info("Task manager stopped gracefully", map[string]interface{}{})
		return nil
	case <-ctx.Done():
		m.logger.Warn("Task manager shutdown timed out", map[string]interface{}{})
		return ctx.Err()
	}
}

// RunNow runs the named task synchronously outside its schedule
func (m *Manager) RunNow(name string) (TaskResult, error) {
	m.mu.Lock()
	t, ok := m.tasks[name]
	m.mu.Unlock()
	if !ok {
		return TaskResult{}, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return m.execute(t), nil
}

// IsHealthy reports whether the scheduler is running
func (m *Manager) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Results lists the latest outcome of every task, sorted by name
func (m *Manager) Results() []TaskResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]TaskResult, 0, len(m.tasks))
	for _, t := range m.tasks {
		r := t.result
		if m.running {
			if next := m.cron.Entry(t.entry).Next; !next.IsZero() {
				r.NextRun = &next
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Manager) execute(t *task) TaskResult {
	m.mu.Lock()
	parent := m.ctx
	t.result.Status = TaskStatusProcessing
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, m.timeout)
	defer cancel()

	start := time.Now()
	err := t.fn(ctx)
	elapsed := time.Since(start)

	m.mu.Lock()
	t.result.Runs++
	t.result.LastRun = &start
	t.result.ProcessingTime = elapsed
	if err != nil {
		t.result.Status = TaskStatusFailure
		t.result.Error = err.Error()
		t.result.Failures++
	} else {
		t.result.Status = TaskStatusSuccess
		t.result.Error = ""
	}
	result := t.result
	m.mu.Unlock()

	fields := map[string]interface{}{
		"task":            t.name,
		"processing_time": elapsed.String(),
		"runs":            result.Runs,
	}
	if err != nil {
		m.logger.WithError(err).Warn("Task failed", fields)
	} else {
		m.logger.Debug("Task completed", fields)
	}
	return result
}
