// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task facility for long-running
// maintenance operations.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/rigtune/internal/logging"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultWorkers is the bounded pool size when no option overrides it.
	DefaultWorkers = 4

	// DefaultReapInterval is how often the reaper sweeps finished records.
	DefaultReapInterval = 5 * time.Second

	// DefaultRetention is how long finished records stay queryable before
	// the reaper removes them.
	DefaultRetention = 5 * time.Second
)

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the task facility: registry of task records, bounded worker
// pool with a dedicated lane, event fanout, periodic reaper, and graceful
// shutdown. Construct one with New and hand it to the components that
// submit or observe work.
type Manager struct {
	workers      int
	reapInterval time.Duration
	retention    time.Duration
	logger       *logging.Logger

	// mu guards the registry and the shutdown flag. One coarse lock is
	// plenty at desktop scale; individual records carry their own mutex.
	mu       sync.Mutex
	registry map[string]*task
	shutdown bool

	seq    atomic.Uint64
	active atomic.Int64
	sem    chan struct{}
	wg     sync.WaitGroup

	stopCh   chan struct{}
	stopOnce sync.Once
	reapWg   sync.WaitGroup

	listenerMu   sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithWorkers sets the bounded pool size. Values below one fall back to
// the default.
func WithWorkers(n int) Option {
	return func(m *Manager) { m.workers = n }
}

// WithReapInterval sets how often finished records are swept.
func WithReapInterval(d time.Duration) Option {
	return func(m *Manager) { m.reapInterval = d }
}

// WithRetention sets how long finished records stay queryable. Zero reaps
// them on the next sweep.
func WithRetention(d time.Duration) Option {
	return func(m *Manager) { m.retention = d }
}

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a Manager and starts its reaper.
func New(opts ...Option) *Manager {
	m := &Manager{
		workers:      DefaultWorkers,
		reapInterval: DefaultReapInterval,
		retention:    DefaultRetention,
		logger:       logging.Default(),
		registry:     make(map[string]*task),
		listeners:    make(map[int]Listener),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers <= 0 {
		m.workers = DefaultWorkers
	}
	if m.reapInterval <= 0 {
		m.reapInterval = DefaultReapInterval
	}
	if m.retention < 0 {
		m.retention = DefaultRetention
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	m.sem = make(chan struct{}, m.workers)

	m.reapWg.Add(1)
	go m.reapLoop()

	m.logger.Debug("tasks", "manager started: %d workers, reap every %v, retention %v",
		m.workers, m.reapInterval, m.retention)
	return m
}

// Workers returns the bounded pool size.
func (m *Manager) Workers() int {
	return m.workers
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitOption configures a single submission.
type SubmitOption func(*submitOptions)

type submitOptions struct {
	name     string
	affinity Affinity
}

// WithName labels the task; the label becomes the id prefix and shows up
// in list views.
func WithName(name string) SubmitOption {
	return func(o *submitOptions) { o.name = name }
}

// Dedicated routes the task to its own goroutine instead of a pool slot.
func Dedicated() SubmitOption {
	return func(o *submitOptions) { o.affinity = AffinityDedicated }
}

// Submit registers work and returns its task id immediately. Work waits
// for a pool slot in the background; Submit itself never blocks, no matter
// how much is queued. It fails only when the manager is shut down or the
// work function is nil.
func (m *Manager) Submit(work Work, opts ...SubmitOption) (string, error) {
	if work == nil {
		return "", ErrNilWork
	}

	var so submitOptions
	for _, opt := range opts {
		opt(&so)
	}

	id := makeID(so.name, m.seq.Add(1))
	t := newTask(id, so.name, so.affinity, work)

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return "", ErrShutdown
	}
	m.registry[id] = t
	// Join the wait group under the lock so a concurrent Shutdown either
	// rejects this submission or waits for it, never neither.
	m.wg.Add(1)
	m.active.Add(1)
	m.mu.Unlock()

	go m.run(t)

	m.logger.Debug("tasks", "submitted %s on %s lane", id, t.affinity)
	return id, nil
}

// =============================================================================
// EXECUTION
// =============================================================================

// run is the task's goroutine: acquire a slot (pool lane only), execute,
// and perform the terminal transition. Every event for the task is emitted
// from here or from the RunContext used here, which is what guarantees
// per-id ordering.
func (m *Manager) run(t *task) {
	defer func() {
		m.active.Add(-1)
		m.wg.Done()
	}()

	if t.affinity == AffinityPool {
		select {
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
		case <-t.ctx.Done():
			// Canceled while pending; never ran.
			m.complete(t, StateCanceled, nil, context.Canceled)
			return
		case <-m.stopCh:
			m.complete(t, StateCanceled, nil, ErrShutdown)
			return
		}
	}

	// The signal can land between submission and slot acquisition; a
	// canceled task must never reach Running.
	if t.canceled.Load() {
		m.complete(t, StateCanceled, nil, context.Canceled)
		return
	}

	if !t.start() {
		return
	}

	result, err := m.invoke(t)

	switch {
	case err == nil:
		// Natural completion wins even when a cancel signal arrived after
		// the work's last poll point; the record reports what actually
		// happened.
		m.complete(t, StateSucceeded, result, nil)
	case t.canceled.Load() && errors.Is(err, context.Canceled):
		m.complete(t, StateCanceled, nil, err)
	default:
		m.complete(t, StateFailed, nil, err)
	}
}

// invoke runs the work function and converts panics into errors so one
// bad task can never take down the pool.
func (m *Manager) invoke(t *task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.work(&RunContext{m: m, t: t})
}

// complete performs the terminal transition and emits OnComplete exactly
// once. Late callers (a second cancel, a racing shutdown) lose the
// transition race inside finish and emit nothing. done closes only after
// the fanout, so Wait returns with the completion event already delivered.
func (m *Manager) complete(t *task, state State, result any, err error) {
	if !t.finish(state, result, err) {
		return
	}

	switch state {
	case StateFailed:
		m.logger.Warn("tasks", "%s failed: %v", t.id, err)
	default:
		m.logger.Debug("tasks", "%s finished: %s", t.id, state)
	}

	m.emitComplete(t.id, state, result, err)
	close(t.done)
}

// =============================================================================
// QUERIES
// =============================================================================

// Query returns a snapshot of the task record.
func (m *Manager) Query(id string) (Snapshot, error) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return Snapshot{}, ErrShutdown
	}
	t, ok := m.registry[id]
	m.mu.Unlock()

	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return t.snapshot(), nil
}

// ListActive returns the ids of all pending and running tasks, sorted.
func (m *Manager) ListActive() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}
	ids := make([]string, 0, len(m.registry))
	for id, t := range m.registry {
		if !t.currentState().Terminal() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshots returns copies of every record, newest submission first. The
// dashboard task panel renders from this.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	snaps := make([]Snapshot, 0, len(m.registry))
	for _, t := range m.registry {
		snaps = append(snaps, t.snapshot())
	}
	m.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID > snaps[j].ID
		}
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps
}

// Counts summarizes the registry for status displays.
type Counts struct {
	Pending   int
	Running   int
	Dedicated int // running tasks on the dedicated lane
	Terminal  int // finished but not yet reaped
	Total     int
}

// Counts tallies the registry by state.
func (m *Manager) Counts() Counts {
	m.mu.Lock()
	defer m.mu.Unlock()

	var c Counts
	for _, t := range m.registry {
		c.Total++
		switch t.currentState() {
		case StatePending:
			c.Pending++
		case StateRunning:
			c.Running++
			if t.affinity == AffinityDedicated {
				c.Dedicated++
			}
		default:
			c.Terminal++
		}
	}
	return c
}

// Wait blocks until the task reaches a terminal state and returns the
// final snapshot. A timeout of zero waits indefinitely; otherwise
// ErrWaitTimeout is returned alongside the latest snapshot.
func (m *Manager) Wait(id string, timeout time.Duration) (Snapshot, error) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return Snapshot{}, ErrShutdown
	}
	t, ok := m.registry[id]
	m.mu.Unlock()

	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}

	if timeout <= 0 {
		<-t.done
		return t.snapshot(), nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.snapshot(), nil
	case <-timer.C:
		return t.snapshot(), fmt.Errorf("%w: %s after %v", ErrWaitTimeout, id, timeout)
	}
}

// =============================================================================
// CANCELLATION
// =============================================================================

// Cancel signals cooperative cancellation. It returns true when the signal
// reached a live record: the task will either never start, or keep running
// until its next poll point. Unknown ids return false without error.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return false
	}
	t, ok := m.registry[id]
	m.mu.Unlock()

	if !ok {
		return false
	}
	if !t.signalCancel() {
		return false
	}
	m.logger.Debug("tasks", "cancel signaled for %s", id)
	return true
}

// CancelAll signals every live task and returns how many were signaled.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return 0
	}
	live := make([]*task, 0, len(m.registry))
	for _, t := range m.registry {
		live = append(live, t)
	}
	m.mu.Unlock()

	return signalAll(live)
}

func signalAll(ts []*task) int {
	n := 0
	for _, t := range ts {
		if t.signalCancel() {
			n++
		}
	}
	return n
}

// =============================================================================
// RECORD LIFECYCLE
// =============================================================================

// Acknowledge removes a finished record immediately instead of waiting for
// the reaper. Returns false for unknown ids and for tasks still in flight.
func (m *Manager) Acknowledge(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return false
	}
	t, ok := m.registry[id]
	if !ok || !t.currentState().Terminal() {
		return false
	}
	delete(m.registry, id)
	return true
}

// Reap removes finished records older than the retention window and
// returns how many were removed. The reaper calls this periodically; it is
// exported so tests can force a sweep.
func (m *Manager) Reap() int {
	cutoff := time.Now().Add(-m.retention)

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return 0
	}
	removed := 0
	for id, t := range m.registry {
		t.mu.RLock()
		expired := t.state.Terminal() && !t.finishedAt.After(cutoff)
		t.mu.RUnlock()
		if expired {
			delete(m.registry, id)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Debug("tasks", "reaped %d finished records", removed)
	}
	return removed
}

func (m *Manager) reapLoop() {
	defer m.reapWg.Done()

	ticker := time.NewTicker(m.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown stops the manager: no further submissions are accepted, every
// live task gets the cancellation signal, and the reaper exits. With wait
// set it blocks up to timeout for in-flight work to drain; a timeout of
// zero checks once and returns immediately. ErrShutdownTimeout reports
// abandoned stragglers, which keep running until their next poll point but
// are no longer tracked. Shutdown never blocks indefinitely and never
// kills a goroutine.
func (m *Manager) Shutdown(wait bool, timeout time.Duration) error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return ErrShutdown
	}
	m.shutdown = true
	live := make([]*task, 0, len(m.registry))
	for _, t := range m.registry {
		live = append(live, t)
	}
	m.mu.Unlock()

	m.stopOnce.Do(func() { close(m.stopCh) })
	signaled := signalAll(live)
	m.reapWg.Wait()

	m.logger.Info("tasks", "shutdown: signaled %d live tasks (wait=%v timeout=%v)",
		signaled, wait, timeout)

	if !wait {
		return nil
	}

	if timeout <= 0 {
		if m.active.Load() == 0 {
			return nil
		}
		return ErrShutdownTimeout
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		m.logger.Warn("tasks", "shutdown abandoned %d running tasks after %v",
			m.active.Load(), timeout)
		return ErrShutdownTimeout
	}
}

func (m *Manager) isShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}
