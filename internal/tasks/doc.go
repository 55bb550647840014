// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task facility for long-running
// maintenance operations.
//
// Cleanup and optimization work runs off the UI thread through a bounded
// worker pool. Every submission gets a unique task id, a tracked record
// (state, progress, status text, result), cooperative cancellation, and
// exactly one completion event. Finished records linger for a short
// retention window so late queries still resolve, then a reaper removes
// them.
//
// # Key Types
//
//   - Manager: registry, worker pool, reaper, and shutdown in one facility
//   - Work: the function signature every task implements
//   - RunContext: progress/status/cancellation handle passed to Work
//   - Snapshot: read-only copy of a task record
//   - Listener: per-task progress/status/completion hooks
//
// # Usage
//
// Create a manager and submit work:
//
//	mgr := tasks.New(tasks.WithWorkers(4))
//	id, err := mgr.Submit(func(rc *tasks.RunContext) (any, error) {
//	    rc.Status("scanning temp files")
//	    for i, f := range files {
//	        if rc.Canceled() {
//	            return nil, rc.Context().Err()
//	        }
//	        remove(f)
//	        rc.Progress(i * 100 / len(files))
//	    }
//	    return summary, nil
//	}, tasks.WithName("clean_temp"))
//
// Observe completion:
//
//	snap, err := mgr.Wait(id, 30*time.Second)
//
// Shut down, waiting up to five seconds for stragglers:
//
//	err := mgr.Shutdown(true, 5*time.Second)
//
// A Manager is always constructed explicitly and handed to the components
// that need it; the package deliberately has no global instance.
package tasks
