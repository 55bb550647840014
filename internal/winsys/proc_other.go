// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import "syscall"

// hiddenWindowAttr is a no-op off Windows; there is no console window to hide.
func hiddenWindowAttr() *syscall.SysProcAttr {
	return nil
}
