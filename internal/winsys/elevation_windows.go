// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process runs with administrator
// rights. Service tuning, power plan changes, and several cleanup steps
// refuse to run without them.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// RelaunchElevated restarts the current executable through the UAC prompt
// with the same arguments. On success the caller should exit; the elevated
// instance takes over.
func RelaunchElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	exePtr, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	argPtr, err := windows.UTF16PtrFromString(strings.Join(os.Args[1:], " "))
	if err != nil {
		return err
	}
	cwdPtr, err := windows.UTF16PtrFromString(cwd)
	if err != nil {
		return err
	}

	if err := windows.ShellExecute(0, verb, exePtr, argPtr, cwdPtr, windows.SW_NORMAL); err != nil {
		// ERROR_CANCELLED means the user dismissed the UAC prompt
		return fmt.Errorf("elevation request failed: %w", err)
	}
	return nil
}
