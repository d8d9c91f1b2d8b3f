package scroll

import (
	"context"
	"sync"
)

// Callback runs when an observed target becomes visible
type Callback func(ctx context.Context)

// Observer delivers a callback each time a target goes from hidden to visible
type Observer interface {
	Observe(target string, fn Callback) (cancel func())
}

// Tracker implements Observer from visibility reports sent by a renderer.
// Targets start hidden. Only the hidden to visible edge fires callbacks,
// so a target reported visible twice in a row fires once.
type Tracker struct {
	mu       sync.Mutex
	visible  map[string]bool
	watchers map[string]map[int]Callback
	nextID   int
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		visible:  make(map[string]bool),
		watchers: make(map[string]map[int]Callback),
	}
}

// Observe registers fn for target. A target that is already visible does
// not fire until it is hidden and shown again.
func (t *Tracker) Observe(target string, fn Callback) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	if t.watchers[target] == nil {
		t.watchers[target] = make(map[int]Callback)
	}
	t.watchers[target][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.watchers[target], id)
			if len(t.watchers[target]) == 0 {
				delete(t.watchers, target)
			}
		})
	}
}

// Report records the visibility of target and runs its callbacks on a
// hidden to visible transition. Callbacks run on the caller's goroutine
// after the tracker lock is released. It returns how many fired.
func (t *Tracker) Report(ctx context.Context, target string, visible bool) int {
	t.mu.Lock()
	was := t.visible[target]
	if !visible {
		// hidden is the default, so forget the target
		delete(t.visible, target)
		t.mu.Unlock()
		return 0
	}
	t.visible[target] = true
	if was {
		t.mu.Unlock()
		return 0
	}

	fns := make([]Callback, 0, len(t.watchers[target]))
	for _, fn := range t.watchers[target] {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
	return len(fns)
}

// Observed reports whether anything currently watches target
func (t *Tracker) Observed(target string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.watchers[target]) > 0
}
