// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysinfo samples live system statistics for the dashboard.
//
// A Sampler polls CPU, memory, disk, and per-process counters on a fixed
// interval (default 1s, floor 100ms), keeps rolling histories for the
// overview sparklines, and fans each Snapshot out to subscribers. CPU load
// is computed from tick deltas between consecutive samples, so the first
// sample after startup always reads 0%.
//
// The raw counters come from a Collector, defaulting to the winsys syscall
// wrappers; tests inject scripted collectors. Off Windows the collectors
// report ErrNotWindows and snapshots carry Supported=false with zeroed
// metrics rather than failing.
package sysinfo
