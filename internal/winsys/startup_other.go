// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

// StartupEntries is Windows-only; there is no HKCU Run key elsewhere.
func StartupEntries() ([]StartupEntry, error) {
	return nil, ErrNotWindows
}

// MachineStartupEntries is Windows-only.
func MachineStartupEntries() ([]StartupEntry, error) {
	return nil, ErrNotWindows
}

// DisableStartup is Windows-only.
func DisableStartup(name string) error {
	return ErrNotWindows
}

// DisableMachineStartup is Windows-only.
func DisableMachineStartup(name string) error {
	return ErrNotWindows
}

// EnableStartup is Windows-only.
func EnableStartup(name string) error {
	return ErrNotWindows
}

// EnableMachineStartup is Windows-only.
func EnableMachineStartup(name string) error {
	return ErrNotWindows
}

// AddStartup is Windows-only.
func AddStartup(name, command string) error {
	return ErrNotWindows
}

// RemoveStartup is Windows-only.
func RemoveStartup(name string) error {
	return ErrNotWindows
}
