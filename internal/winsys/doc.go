// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package winsys wraps the Windows-facing machinery the rest of rigtune
// builds on: running external tools without flashing console windows,
// elevation checks and UAC relaunch, raw CPU/memory counters, process
// enumeration, working-set trimming, and HKCU Run-key startup entries.
//
// Everything syscall-bound lives in _windows.go files; the _other.go
// counterparts return ErrNotWindows so the packages above stay portable
// and testable on any platform.
package winsys
