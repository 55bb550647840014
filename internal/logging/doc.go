// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the rigtune application log.
//
// Log files are plain text, one pipe-delimited line per entry, written to
// dated files (rigtune_YYYYMMDD.log) under the application's logs
// directory. The writer is thread-safe, rolls to a new file at midnight,
// rotates oversized files within a day, and keeps a small in-memory tail
// for the dashboard's log view.
//
// The TUI writes to file only; headless commands additionally echo
// warnings and errors to stderr via SetEcho.
//
// # Usage
//
//	logger, err := logging.New(logging.DefaultDir())
//	if err != nil { ... }
//	defer logger.Close()
//	logger.Info("cleaner", "removed %d files", n)
package logging
