// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: working-set trims,
// startup entry parking, service start-mode tuning, TCP/DNS adjustments, and
// power plan switching.
//
// Each operation is shaped to run as a background task: it takes a Reporter
// for progress and cancellation and returns a Result carrying the applied
// changes, per-item errors, and a machine-readable refusal code when the
// operation needs elevation or Windows. Profiles bundle operations into the
// balanced, gamer, and maximum presets; turbo mode latches the maximum
// profile until deactivated.
//
// Destructive operations never run blind: profile application creates a
// system restore point when configured, and startup edits export a .reg
// backup of the Run keys first. Standalone operations leave checkpointing to
// the caller via Checkpoint, so a profile run does not stack restore points.
package optimizer
