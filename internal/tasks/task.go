// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task facility for long-running
// maintenance operations.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// TASK STATE
// =============================================================================

// State represents the lifecycle state of a background task.
type State string

const (
	// StatePending indicates the task is waiting for a worker slot
	StatePending State = "Pending"

	// StateRunning indicates the task is currently executing
	StateRunning State = "Running"

	// StateSucceeded indicates the task finished and returned a result
	StateSucceeded State = "Succeeded"

	// StateFailed indicates the task returned an error or panicked
	StateFailed State = "Failed"

	// StateCanceled indicates the task acknowledged cancellation, or was
	// canceled before a worker picked it up
	StateCanceled State = "Canceled"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether the state is final. A task reaches exactly one
// terminal state, exactly once.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCanceled
}

// =============================================================================
// AFFINITY
// =============================================================================

// Affinity is the per-submission execution hint. Pool work shares the
// bounded worker slots; dedicated work gets its own goroutine immediately,
// for operations that must not wait behind the pool (UI-critical refreshes,
// watchdog-style monitors).
type Affinity int

const (
	// AffinityPool runs the task on the shared bounded pool (default).
	AffinityPool Affinity = iota

	// AffinityDedicated runs the task on its own goroutine, bypassing the
	// pool limit. Lifecycle, events, and cancellation behave identically.
	AffinityDedicated
)

// String returns a short tag for logs.
func (a Affinity) String() string {
	if a == AffinityDedicated {
		return "dedicated"
	}
	return "pool"
}

// =============================================================================
// WORK CONTRACT
// =============================================================================

// Work is the function signature every background task implements. The
// RunContext is the task's only channel back to the facility: progress,
// status text, and the cooperative cancellation flag. The returned value
// becomes the task's result on success; the returned error marks it Failed,
// except a context.Canceled error after Cancel, which marks it Canceled.
//
// Work that never polls the flag past its last check simply runs to natural
// completion and reports its real outcome.
type Work func(rc *RunContext) (any, error)

// =============================================================================
// TASK RECORD
// =============================================================================

// task is the internal registry record. Callers only ever see Snapshot
// copies of it.
type task struct {
	id       string
	name     string
	affinity Affinity
	work     Work

	mu         sync.RWMutex
	state      State
	progress   int
	statusText string
	result     any
	err        error
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	// canceled is the cooperative cancellation flag; ctx is canceled with
	// it so Work can drive exec.CommandContext and similar APIs.
	canceled  atomic.Bool
	ctx       context.Context
	ctxCancel context.CancelFunc

	// done closes on the terminal transition. Wait blocks on it.
	done chan struct{}
}

func newTask(id, name string, affinity Affinity, work Work) *task {
	ctx, cancel := context.WithCancel(context.Background())
	return &task{
		id:        id,
		name:      name,
		affinity:  affinity,
		work:      work,
		state:     StatePending,
		createdAt: time.Now(),
		ctx:       ctx,
		ctxCancel: cancel,
		done:      make(chan struct{}),
	}
}

// start moves Pending -> Running. Returns false if the task is no longer
// Pending (canceled before a worker got to it).
func (t *task) start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePending {
		return false
	}
	t.state = StateRunning
	t.startedAt = time.Now()
	return true
}

// finish performs the terminal transition. Returns false if the task is
// already terminal, which makes the transition exactly-once: of all
// goroutines racing to finish a task, precisely one sees true. The winner
// also owns closing done, which Manager.complete does after the completion
// event has been fanned out, so Wait never returns ahead of listeners.
func (t *task) finish(state State, result any, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return false
	}
	t.state = state
	t.result = result
	t.err = err
	t.finishedAt = time.Now()
	if state == StateSucceeded {
		t.progress = 100
	}
	return true
}

// setProgress clamps and stores progress. Updates after the terminal
// transition are discarded. Returns whether the value was stored.
func (t *task) setProgress(pct int) bool {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.progress = pct
	return true
}

// setStatus stores the status line. Updates after the terminal transition
// are discarded. Returns whether the value was stored.
func (t *task) setStatus(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.statusText = text
	return true
}

// signalCancel raises the cooperative flag and cancels the task context.
// Returns true if the task was live (not yet terminal) when the signal
// landed.
func (t *task) signalCancel() bool {
	t.mu.RLock()
	live := !t.state.Terminal()
	t.mu.RUnlock()

	if !live {
		return false
	}
	t.canceled.Store(true)
	t.ctxCancel()
	return true
}

func (t *task) currentState() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// snapshot produces the read-only copy handed to callers.
func (t *task) snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	errText := ""
	if t.err != nil {
		errText = t.err.Error()
	}
	return Snapshot{
		ID:         t.id,
		Name:       t.name,
		Affinity:   t.affinity,
		State:      t.state,
		Progress:   t.progress,
		StatusText: t.statusText,
		Result:     t.result,
		Error:      errText,
		CreatedAt:  t.createdAt,
		StartedAt:  t.startedAt,
		FinishedAt: t.finishedAt,
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of a task record. Result is the opaque
// value returned by the Work function and is only set once the task
// succeeded; Error is only set once it failed.
type Snapshot struct {
	ID         string
	Name       string
	Affinity   Affinity
	State      State
	Progress   int
	StatusText string
	Result     any
	Error      string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Terminal reports whether the snapshot captured a finished task.
func (s Snapshot) Terminal() bool {
	return s.State.Terminal()
}

// Duration returns how long the task has been running, or took to finish.
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Summary returns a one-line description for logs and list views.
func (s Snapshot) Summary() string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	out := fmt.Sprintf("[%s] %s", s.State, name)
	if d := s.Duration(); d > 0 {
		out += fmt.Sprintf(" (%.1fs)", d.Seconds())
	}
	return out
}

// =============================================================================
// RUN CONTEXT
// =============================================================================

// RunContext is the handle a Work function uses to report progress and
// observe cancellation. All methods are safe to call from the work
// goroutine for the entire life of the task; updates arriving after the
// terminal transition are silently dropped.
type RunContext struct {
	m *Manager
	t *task
}

// TaskID returns the id of the running task.
func (rc *RunContext) TaskID() string {
	return rc.t.id
}

// Progress reports completion in percent. Values are clamped to 0-100.
func (rc *RunContext) Progress(pct int) {
	if rc.t.setProgress(pct) {
		rc.m.emitProgress(rc.t.id, pct)
	}
}

// Status reports a human-readable line describing the current phase.
func (rc *RunContext) Status(text string) {
	if rc.t.setStatus(text) {
		rc.m.emitStatus(rc.t.id, text)
	}
}

// Statusf is Status with formatting.
func (rc *RunContext) Statusf(format string, args ...any) {
	rc.Status(fmt.Sprintf(format, args...))
}

// Canceled reports whether cancellation was requested. Work should poll
// this between units of work and return promptly when it turns true.
func (rc *RunContext) Canceled() bool {
	return rc.t.canceled.Load()
}

// Context returns a context that is canceled together with the task, for
// handing to exec.CommandContext and other context-aware APIs.
func (rc *RunContext) Context() context.Context {
	return rc.t.ctx
}

// =============================================================================
// ID GENERATION
// =============================================================================

// sanitizeName reduces a caller-supplied task name to a safe id prefix.
func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// makeID builds a task id from the optional name, a process-monotonic
// counter, and the submission timestamp: "clean_temp_task_7_1735689600".
// The counter keeps ids unique even for submissions in the same second.
func makeID(name string, seq uint64) string {
	id := fmt.Sprintf("task_%d_%d", seq, time.Now().Unix())
	if prefix := sanitizeName(name); prefix != "" {
		id = prefix + "_" + id
	}
	return id
}
