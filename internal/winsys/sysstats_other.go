// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import "time"

// CPUTimes is Windows-only; the sampler treats ErrNotWindows as "no data".
func CPUTimes() (idle, total uint64, err error) {
	return 0, 0, ErrNotWindows
}

// MemoryStatus is Windows-only; the sampler treats ErrNotWindows as "no data".
func MemoryStatus() (total, avail uint64, err error) {
	return 0, 0, ErrNotWindows
}

// DiskUsage is Windows-only; the sampler treats ErrNotWindows as "no data".
func DiskUsage(path string) (total, free uint64, err error) {
	return 0, 0, ErrNotWindows
}

// Uptime is Windows-only.
func Uptime() (time.Duration, error) {
	return 0, ErrNotWindows
}
