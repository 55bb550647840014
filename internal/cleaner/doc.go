// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cleaner removes Windows debris: temp directories, system and
// browser caches, stale log files, the recycle bin, and the Windows Update
// download cache.
//
// The Engine walks category path tables built from the environment (TEMP,
// WINDIR, LOCALAPPDATA, APPDATA) and deletes files that pass the configured
// extension and age filters, skipping anything currently open. Command-backed
// steps (DNS flush, icon cache rebuild, event log clearing, recycle bin,
// update service cycling) go through the winsys Runner so no console windows
// flash.
//
// Operations are shaped to run as background tasks: they take a Reporter for
// progress and cancellation, return a Result instead of panicking on partial
// failure, and the Work factories adapt them onto the task manager. Dry-run
// mode walks and counts without touching anything; Preview reports per
// category what a cleanup would reclaim.
package cleaner
