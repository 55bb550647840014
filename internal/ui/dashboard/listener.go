// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/tasks"
)

// =============================================================================
// EVENT FORWARDER
// =============================================================================

// Forwarder bridges task manager and sampler callbacks into the Bubble Tea
// program. Both emit from their own goroutines; tea.Program.Send is safe to
// call from any goroutine, so each callback converts its arguments to a
// typed message and hands off immediately. Nothing here touches the model.
//
// Wire it after the program exists:
//
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	fw := dashboard.NewForwarder(p.Send)
//	unsubscribe := mgr.Subscribe(fw)
//	defer unsubscribe()
//	stopMonitor := sampler.Subscribe(fw.Snapshot)
//	defer stopMonitor()
type Forwarder struct {
	send func(tea.Msg)
}

// NewForwarder creates a forwarder around the program's Send function.
func NewForwarder(send func(tea.Msg)) *Forwarder {
	if send == nil {
		send = func(tea.Msg) {}
	}
	return &Forwarder{send: send}
}

// OnProgress implements tasks.Listener.
func (f *Forwarder) OnProgress(taskID string, pct int) {
	f.send(TaskProgressMsg{ID: taskID, Percent: pct})
}

// OnStatus implements tasks.Listener.
func (f *Forwarder) OnStatus(taskID string, text string) {
	f.send(TaskStatusMsg{ID: taskID, Text: text})
}

// OnComplete implements tasks.Listener.
func (f *Forwarder) OnComplete(taskID string, state tasks.State, result any, err error) {
	f.send(NewTaskFinishedMsg(taskID, state, result, err))
}

// Snapshot forwards a sampler snapshot. Pass this method to
// sysinfo.Sampler.Subscribe.
func (f *Forwarder) Snapshot(snap *sysinfo.Snapshot) {
	f.send(MonitorSnapshotMsg{Snapshot: snap})
}
