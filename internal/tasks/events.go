// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task facility for long-running
// maintenance operations.
package tasks

// =============================================================================
// LISTENER
// =============================================================================

// Listener receives task events. Events for one task id arrive in emission
// order, from the task's own goroutine: zero or more OnProgress/OnStatus
// calls, then exactly one OnComplete, always last. There is no ordering
// across different ids.
//
// Listeners run synchronously on the task goroutine and must return
// quickly; anything slow (UI redraws, disk writes) should hand off, the
// way the dashboard adapter forwards into the bubbletea program.
//
// A listener may receive an id it has no record of when delivery races
// with the reaper; such events are safe to ignore.
type Listener interface {
	// OnProgress delivers a clamped 0-100 completion percentage.
	OnProgress(taskID string, pct int)

	// OnStatus delivers a human-readable phase description.
	OnStatus(taskID string, text string)

	// OnComplete delivers the terminal state. result is the Work return
	// value when state is Succeeded; err is non-nil when state is Failed
	// or Canceled.
	OnComplete(taskID string, state State, result any, err error)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are skipped.
type ListenerFuncs struct {
	Progress func(taskID string, pct int)
	Status   func(taskID string, text string)
	Complete func(taskID string, state State, result any, err error)
}

// OnProgress implements Listener.
func (l ListenerFuncs) OnProgress(taskID string, pct int) {
	if l.Progress != nil {
		l.Progress(taskID, pct)
	}
}

// OnStatus implements Listener.
func (l ListenerFuncs) OnStatus(taskID string, text string) {
	if l.Status != nil {
		l.Status(taskID, text)
	}
}

// OnComplete implements Listener.
func (l ListenerFuncs) OnComplete(taskID string, state State, result any, err error) {
	if l.Complete != nil {
		l.Complete(taskID, state, result, err)
	}
}

// =============================================================================
// EVENT FANOUT
// =============================================================================

// listenersSnapshot copies the subscriber list so events are delivered
// outside the manager lock.
func (m *Manager) listenersSnapshot() []Listener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()

	if len(m.listeners) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		out = append(out, l)
	}
	return out
}

func (m *Manager) emitProgress(taskID string, pct int) {
	for _, l := range m.listenersSnapshot() {
		l.OnProgress(taskID, pct)
	}
}

func (m *Manager) emitStatus(taskID string, text string) {
	for _, l := range m.listenersSnapshot() {
		l.OnStatus(taskID, text)
	}
}

func (m *Manager) emitComplete(taskID string, state State, result any, err error) {
	for _, l := range m.listenersSnapshot() {
		l.OnComplete(taskID, state, result, err)
	}
}

// Subscribe registers a listener for all task events and returns its
// unsubscribe function. Subscribing after shutdown is a no-op.
func (m *Manager) Subscribe(l Listener) func() {
	if l == nil || m.isShutdown() {
		return func() {}
	}

	m.listenerMu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = l
	m.listenerMu.Unlock()

	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}
