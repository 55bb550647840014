// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the rigtune application.
//
// It contains the crash-safe file writer used by every store that persists
// state (config, backups, reports), display formatters for byte counts and
// durations, and text sanitation for strings that originate outside the
// program (process names, file paths, task status lines).
//
// # Usage
//
//	// Persist a settings file without risking a torn write
//	err := util.AtomicWriteFile(path, data, 0644)
//
//	// Render a byte count the way the dashboard shows it
//	s := util.FormatBytes(1536 * 1024) // "1.5 MB"
package util
