// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import "errors"

// ErrStartupNotFound is returned when a named startup entry does not exist
// in either the active or the parked registry key.
var ErrStartupNotFound = errors.New("winsys: startup entry not found")

// StartupEntry is one program registered to launch at logon via the HKCU
// Run key. Disabled entries are parked under a rigtune-owned key so their
// command lines survive and can be restored.
type StartupEntry struct {
	Name    string
	Command string
	Enabled bool
}
