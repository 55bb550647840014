// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

// IsElevated always reports false off Windows, which routes admin-gated
// operations onto their permission-denied paths during development.
func IsElevated() bool {
	return false
}

// RelaunchElevated is Windows-only; there is no UAC to relaunch through.
func RelaunchElevated() error {
	return ErrNotWindows
}
