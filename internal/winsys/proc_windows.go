// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import "syscall"

// CREATE_NO_WINDOW prevents a console window from being created for the child.
const CREATE_NO_WINDOW = 0x08000000

// hiddenWindowAttr returns process attributes that keep child commands from
// flashing console windows over the TUI.
func hiddenWindowAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: CREATE_NO_WINDOW,
	}
}
