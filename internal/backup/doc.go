// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backup snapshots and restores rigtune settings.
//
// Before a destructive operation the engines capture the active
// configuration as a timestamped JSON file under ~/.rigtune/backups/,
// each with a BLAKE2b digest sidecar. Restore refuses to touch the live
// config until the snapshot's digest checks out, so a truncated or
// hand-edited backup is never applied by accident.
//
// # Key Types
//
//   - Store: directory-backed snapshot collection
//   - Snapshot: one settings backup on disk
//
// # Usage
//
// Capture and list snapshots:
//
//	st, err := backup.New(cfg.Backup)
//	snap, err := st.Create(cfg)
//	snaps, err := st.List()
//
// Roll back to the most recent one:
//
//	restored, err := st.Restore(snaps[0].Name)
//
// Once MaxSnapshots is exceeded the oldest snapshots are pruned
// automatically on the next Create.
package backup
