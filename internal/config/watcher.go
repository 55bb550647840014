// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for rigtune.
package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER INTERFACE
// =============================================================================

// ChangeFunc is called with the freshly loaded config after the file changes.
// It is never called with a config that failed validation.
type ChangeFunc func(*Config)

// Watcher is the interface for config file watching implementations.
type Watcher interface {
	// Watch starts watching for config file changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// NewWatcher returns a watcher for the given config file, preferring fsnotify
// and falling back to mtime polling where inotify/kqueue is unavailable.
func NewWatcher(path string, onChange ChangeFunc) Watcher {
	fw, err := NewFsnotifyWatcher(path, onChange)
	if err == nil {
		return fw
	}
	return NewPollingWatcher(path, 5*time.Second, onChange)
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements Watcher using fsnotify.
//
// It watches the config file's parent directory rather than the file itself:
// most editors save via rename-replace, which drops a watch placed directly
// on the file.
type FsnotifyWatcher struct {
	path     string
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time // Last change time, zero = nothing pending

	ctx    context.Context
	cancel context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based config watcher.
func NewFsnotifyWatcher(path string, onChange ChangeFunc) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsnotifyWatcher{
		path:     path,
		onChange: onChange,
		watcher:  watcher,
		debounce: 250 * time.Millisecond,
		ctx:      ctx,
		cancel:   cancel,
	}

	return fw, nil
}

// Watch starts watching for config file changes.
func (fw *FsnotifyWatcher) Watch() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	// Start event processing goroutine
	go fw.processEvents()

	// Start debounce timer goroutine
	go fw.processPending()

	return nil
}

// processEvents processes file system events.
func (fw *FsnotifyWatcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			// Watcher goroutine must not take the process down
			_ = r
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Only the config file itself is interesting
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}

			// Write, Create, and Rename all indicate the file was replaced
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.mu.Lock()
				fw.pending = time.Now()
				fw.mu.Unlock()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal
			_ = err
		}
	}
}

// processPending fires the change callback once writes have settled.
func (fw *FsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			fw.mu.Lock()
			fire := !fw.pending.IsZero() && time.Since(fw.pending) >= fw.debounce
			if fire {
				fw.pending = time.Time{}
			}
			fw.mu.Unlock()

			if fire {
				fw.reload()
			}
		}
	}
}

// reload loads the config file and invokes the callback on success.
// Partial writes and invalid edits are skipped silently; the next settled
// write gets another chance.
func (fw *FsnotifyWatcher) reload() {
	cfg, err := LoadFrom(fw.path)
	if err != nil {
		return
	}
	fw.onChange(cfg)
}

// Close stops watching and releases resources.
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements Watcher using periodic mtime polling.
type PollingWatcher struct {
	path     string
	onChange ChangeFunc
	interval time.Duration

	mu      sync.Mutex
	modTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPollingWatcher creates a new polling-based config watcher.
func NewPollingWatcher(path string, interval time.Duration, onChange ChangeFunc) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		path:     path,
		onChange: onChange,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts watching for config file changes.
func (pw *PollingWatcher) Watch() error {
	// Record the starting mtime so only later edits trigger a reload
	if info, err := os.Stat(pw.path); err == nil {
		pw.mu.Lock()
		pw.modTime = info.ModTime()
		pw.mu.Unlock()
	}

	go pw.poll()

	return nil
}

// poll periodically checks the config file for changes.
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChanges()
		}
	}
}

// checkChanges compares the file mtime and reloads when it moved.
func (pw *PollingWatcher) checkChanges() {
	info, err := os.Stat(pw.path)
	if err != nil {
		// File missing (possibly mid-replace); keep the old mtime
		return
	}

	pw.mu.Lock()
	changed := !info.ModTime().Equal(pw.modTime)
	if changed {
		pw.modTime = info.ModTime()
	}
	pw.mu.Unlock()

	if !changed {
		return
	}

	cfg, err := LoadFrom(pw.path)
	if err != nil {
		return
	}
	pw.onChange(cfg)
}

// Close stops watching.
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}
