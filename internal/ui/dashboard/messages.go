// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
//
// This file defines all Bubble Tea message types used by the dashboard.
// Messages are organized into the following categories:
//   - Task events: submission results, progress, phase text, completion
//   - Monitor: sampler snapshots for the overview meters
//   - Cleanup: dry-run preview results
//   - Optimizer: engine status refreshes
//   - Report: markdown build, glamour render, and export results
//   - History: recorded run loads
//   - Ticks: dashboard redraw heartbeat
//
// All message types follow Bubble Tea conventions and are immutable.
package dashboard

import (
	"time"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/tasks"
)

// =============================================================================
// TASK EVENT MESSAGES
// =============================================================================

// TaskSubmittedMsg reports the outcome of a Submit call. On success ID names
// the new task; on refusal (shutdown, nil work) Err carries the reason.
type TaskSubmittedMsg struct {
	ID   string
	Name string
	Err  error
}

// TaskProgressMsg delivers a 0-100 completion percentage for a running task.
type TaskProgressMsg struct {
	ID      string
	Percent int
}

// TaskStatusMsg delivers the human-readable phase line of a running task.
type TaskStatusMsg struct {
	ID   string
	Text string
}

// TaskFinishedMsg delivers a task's terminal transition. Result is the Work
// return value when State is Succeeded; Err is the error text when the task
// failed or was canceled. Arrives exactly once per task, after every
// progress and status message for that id.
type TaskFinishedMsg struct {
	ID     string
	State  tasks.State
	Result any
	Err    string
}

// TaskCancelRequestedMsg reports whether a cancel signal landed on a live
// task. Delivered=false means the task was already finished or unknown.
type TaskCancelRequestedMsg struct {
	ID        string
	Delivered bool
}

// =============================================================================
// MONITOR MESSAGES
// =============================================================================

// MonitorSnapshotMsg delivers a fresh sampler snapshot for the overview
// meters, the process table, and the status bar memory figures.
type MonitorSnapshotMsg struct {
	Snapshot *sysinfo.Snapshot
}

// =============================================================================
// CLEANUP MESSAGES
// =============================================================================

// PreviewMsg delivers the dry-run estimate shown next to each cleanup
// category.
type PreviewMsg struct {
	Report cleaner.PreviewReport
	Err    error
}

// =============================================================================
// OPTIMIZER MESSAGES
// =============================================================================

// OptimizerStatusMsg delivers the optimizer's point-in-time status block
// for the optimize tab.
type OptimizerStatusMsg struct {
	Status optimizer.Status
}

// =============================================================================
// REPORT MESSAGES
// =============================================================================

// ReportMsg delivers a freshly built report: the raw markdown and its
// glamour-rendered terminal form.
type ReportMsg struct {
	Markdown string
	Rendered string
	Err      error
}

// ReportExportedMsg reports the outcome of writing a report to disk.
type ReportExportedMsg struct {
	Path   string
	Format string
	Err    error
}

// =============================================================================
// HISTORY MESSAGES
// =============================================================================

// HistoryMsg delivers recorded runs and lifetime totals.
type HistoryMsg struct {
	Runs   []history.Run
	Totals history.Totals
	Err    error
}

// RunRecordedMsg confirms a finished task was written to the history store.
type RunRecordedMsg struct {
	RunID string
	Kind  string
	Err   error
}

// =============================================================================
// TICK MESSAGES
// =============================================================================

// TickMsg is the dashboard heartbeat. It redraws running-task durations and
// the status bar, and re-arms itself for as long as the program runs.
type TickMsg struct {
	Time time.Time
}

// =============================================================================
// HELPER CONSTRUCTORS
// =============================================================================

// NewTaskFinishedMsg builds the completion message from listener arguments,
// flattening the error to text so the message stays comparable.
func NewTaskFinishedMsg(taskID string, state tasks.State, result any, err error) TaskFinishedMsg {
	msg := TaskFinishedMsg{
		ID:     taskID,
		State:  state,
		Result: result,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}
