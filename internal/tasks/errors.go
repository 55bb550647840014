// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task facility for long-running
// maintenance operations.
package tasks

import "errors"

var (
	// ErrShutdown is returned by every operation invoked after Shutdown.
	ErrShutdown = errors.New("task manager is shut down")

	// ErrNilWork is returned by Submit when no work function is given.
	ErrNilWork = errors.New("task work function is nil")

	// ErrUnknownTask is returned by Query and Wait when no record exists
	// for the id, either because it never did or because the reaper
	// already removed a finished one.
	ErrUnknownTask = errors.New("unknown task id")

	// ErrShutdownTimeout is returned by Shutdown when in-flight tasks did
	// not finish within the wait budget. The manager still shuts down;
	// stragglers are abandoned to run out their cooperative cancellation.
	ErrShutdownTimeout = errors.New("shutdown timed out waiting for running tasks")

	// ErrWaitTimeout is returned by Wait when the task does not reach a
	// terminal state within the given duration.
	ErrWaitTimeout = errors.New("timed out waiting for task")
)
