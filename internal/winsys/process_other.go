// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

// ProcessList is Windows-only; the sampler treats ErrNotWindows as "no data".
func ProcessList() ([]ProcessInfo, error) {
	return nil, ErrNotWindows
}

// TrimWorkingSets is Windows-only.
func TrimWorkingSets() (int, error) {
	return 0, ErrNotWindows
}
