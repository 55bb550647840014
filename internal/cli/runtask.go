// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtask.go - drives engine work through the task manager for one-shot
// CLI commands, with live progress on interactive terminals and Ctrl+C
// mapped to cooperative cancellation.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/tasks"
)

// newManager builds a task manager sized from the Tasks config section.
func newManager(cfg *config.Config, log *logging.Logger) *tasks.Manager {
	return tasks.New(
		tasks.WithWorkers(cfg.Tasks.WorkerCount),
		tasks.WithReapInterval(time.Duration(cfg.Tasks.ReapIntervalSecs)*time.Second),
		tasks.WithLogger(log),
	)
}

// runTask submits work, streams progress to the terminal, and blocks
// until the task reaches a terminal state. Ctrl+C cancels the task and
// waits for the worker to acknowledge before returning.
func runTask(mgr *tasks.Manager, name string, work tasks.Work, args Args) (tasks.Snapshot, error) {
	showProgress := !args.Quiet && !args.JSON && stdoutIsTerminal()

	var unsubscribe func()
	if showProgress {
		unsubscribe = mgr.Subscribe(tasks.ListenerFuncs{
			Progress: func(_ string, pct int) {
				fmt.Printf("\r\x1b[2K  %s... %3d%%", name, pct)
			},
			Status: func(_ string, text string) {
				fmt.Printf("\r\x1b[2K  %s... %s", name, text)
			},
		})
	}

	id, err := mgr.Submit(work, tasks.WithName(name))
	if err != nil {
		if unsubscribe != nil {
			unsubscribe()
		}
		return tasks.Snapshot{}, err
	}

	// Map interrupt to cooperative cancel.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			mgr.Cancel(id)
		case <-done:
		}
	}()

	snap, err := mgr.Wait(id, 0)
	close(done)
	signal.Stop(sigCh)
	if unsubscribe != nil {
		unsubscribe()
		fmt.Print("\r\x1b[2K")
	}
	return snap, err
}

// openHistory opens the run log at the configured path, or nil when
// history is disabled or the store cannot be opened.
func openHistory(cfg *config.Config, log *logging.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path := cfg.History.Path
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			log.Warn("cli", "resolving history path: %v", err)
			return nil
		}
		path = p
	}
	store, err := history.New(path, history.WithLogger(log))
	if err != nil {
		log.Warn("cli", "opening history store: %v", err)
		return nil
	}
	return store
}

// recordCLIRun mirrors the dashboard's run recording for one-shot
// commands: a finished task becomes one history row with the engine
// outcome as the detail payload. Failures only log; the command's own
// result still reaches the user.
func recordCLIRun(cfg *config.Config, log *logging.Logger, snap tasks.Snapshot) {
	store := openHistory(cfg, log)
	if store == nil {
		return
	}
	defer store.Close()

	run := history.Run{
		Kind:       snap.Name,
		State:      string(snap.State),
		StartedAt:  snap.StartedAt,
		FinishedAt: snap.FinishedAt,
		Error:      snap.Error,
	}
	switch res := snap.Result.(type) {
	case cleaner.Result:
		run.Files, run.Bytes = int64(res.FilesRemoved), res.BytesFreed
	case cleaner.Summary:
		run.Files, run.Bytes = int64(res.TotalFiles), res.TotalBytes
	case optimizer.Result:
		if res.RAM != nil {
			run.Bytes = res.RAM.Freed
		}
	}
	if snap.Result != nil {
		if detail, err := json.Marshal(snap.Result); err == nil {
			run.Detail = detail
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Record(ctx, run); err != nil {
		log.Warn("cli", "recording run: %v", err)
	}
}
