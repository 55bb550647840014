// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cleaner removes Windows debris: temp directories, caches, stale
// logs, the recycle bin, and the Windows Update download cache.
package cleaner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// FOLDER WALKER
// =============================================================================

// walkOptions controls one cleanPath pass.
type walkOptions struct {
	// extensions limits removal to matching suffixes (lowercase, with
	// leading dot). Empty means every regular file.
	extensions []string

	// minAge skips files modified more recently than this.
	minAge time.Duration

	// dryRun counts matches without removing anything. The in-use probe
	// is skipped too, so dry-run totals are an upper bound.
	dryRun bool

	// canceled is polled per entry; the walk stops early when it fires.
	canceled func() bool
}

// cleanPath removes (or, in dry-run, counts) the files under root that pass
// the filters. Root may be a single file or a directory tree; a missing root
// contributes nothing. Per-file failures are collected, never fatal. After a
// real pass, subdirectories left empty are removed deepest-first.
func cleanPath(root string, opt walkOptions) (files int, freed int64, errs []string) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, 0, nil
	}

	if !info.IsDir() {
		if !matchesFilters(info, opt) {
			return 0, 0, nil
		}
		if opt.dryRun {
			return 1, info.Size(), nil
		}
		if fileInUse(root) {
			return 0, 0, nil
		}
		if err := os.Remove(root); err != nil {
			return 0, 0, []string{fmt.Sprintf("remove %s: %v", root, err)}
		}
		return 1, info.Size(), nil
	}

	var subdirs []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if opt.canceled != nil && opt.canceled() {
			return fs.SkipAll
		}
		if err != nil {
			if path == root {
				return err
			}
			errs = append(errs, fmt.Sprintf("access %s: %v", path, err))
			return nil
		}
		if d.IsDir() {
			if path != root {
				subdirs = append(subdirs, path)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if !matchesFilters(fi, opt) {
			return nil
		}
		if opt.dryRun {
			files++
			freed += fi.Size()
			return nil
		}
		if fileInUse(path) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Sprintf("remove %s: %v", path, err))
			return nil
		}
		files++
		freed += fi.Size()
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Sprintf("walk %s: %v", root, walkErr))
	}

	if !opt.dryRun {
		removeEmptyDirs(subdirs)
	}
	return files, freed, errs
}

// matchesFilters applies the extension and age filters to one file.
func matchesFilters(info fs.FileInfo, opt walkOptions) bool {
	if len(opt.extensions) > 0 {
		name := strings.ToLower(info.Name())
		matched := false
		for _, ext := range opt.extensions {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if opt.minAge > 0 && time.Since(info.ModTime()) < opt.minAge {
		return false
	}
	return true
}

// fileInUse probes whether a file can be opened for writing. Locked,
// permission-protected, and already-vanished files all count as in use and
// are skipped rather than reported.
func fileInUse(path string) bool {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return true
	}
	f.Close()
	return false
}

// removeEmptyDirs removes directories left empty by a pass, deepest paths
// first so parents empty out as children disappear. Non-empty directories
// make os.Remove fail, which is the point.
func removeEmptyDirs(dirs []string) {
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})
	for _, dir := range dirs {
		_ = os.Remove(dir)
	}
}

// normalizeExts lowercases an extension filter list.
func normalizeExts(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		out = append(out, ext)
	}
	return out
}
