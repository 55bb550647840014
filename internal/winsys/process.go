// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

// ProcessInfo is a point-in-time view of one running process.
type ProcessInfo struct {
	// PID is the process identifier
	PID uint32
	// Name is the executable name (e.g. "steam.exe")
	Name string
	// WorkingSet is the resident memory in bytes
	WorkingSet uint64
	// CPUTicks is the cumulative kernel+user processor time in 100ns ticks.
	// Per-process CPU load is computed from the delta between two snapshots.
	CPUTicks uint64
}
