// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cleaner removes Windows debris: temp directories, caches, stale
// logs, the recycle bin, and the Windows Update download cache.
package cleaner

import (
	"fmt"
	"strings"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category names one cleanable area of the system.
type Category string

const (
	CategoryTemp        Category = "temp"
	CategorySystemCache Category = "cache"
	CategoryBrowser     Category = "browser"
	CategoryLogs        Category = "logs"
	CategoryRecycleBin  Category = "recycle"
	CategoryUpdateCache Category = "update"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryTemp,
		CategorySystemCache,
		CategoryBrowser,
		CategoryLogs,
		CategoryRecycleBin,
		CategoryUpdateCache,
	}
}

// ParseCategory resolves a CLI argument to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temp", "tmp":
		return CategoryTemp, nil
	case "cache", "system":
		return CategorySystemCache, nil
	case "browser", "browsers":
		return CategoryBrowser, nil
	case "logs", "log":
		return CategoryLogs, nil
	case "recycle", "recyclebin", "bin":
		return CategoryRecycleBin, nil
	case "update", "updates", "windowsupdate":
		return CategoryUpdateCache, nil
	}
	return "", fmt.Errorf("unknown cleanup category %q", s)
}

func (c Category) String() string {
	return string(c)
}

// Title returns the human-readable name used in status lines and reports.
func (c Category) Title() string {
	switch c {
	case CategoryTemp:
		return "temporary files"
	case CategorySystemCache:
		return "system cache"
	case CategoryBrowser:
		return "browser caches"
	case CategoryLogs:
		return "system logs"
	case CategoryRecycleBin:
		return "recycle bin"
	case CategoryUpdateCache:
		return "Windows Update cache"
	}
	return string(c)
}

// =============================================================================
// RESULTS
// =============================================================================

// Result describes the outcome of cleaning one category. Per-file failures
// land in Errors without failing the run; Success goes false only when the
// category could not run at all, with Code carrying the machine-readable
// reason ("admin_required", "unsupported_platform"). The task facility and
// the history store treat Code as an opaque string; the UI and CLI interpret
// it.
type Result struct {
	Category     Category `json:"category"`
	Success      bool     `json:"success"`
	FilesRemoved int      `json:"files_removed"`
	BytesFreed   int64    `json:"bytes_freed"`
	DryRun       bool     `json:"dry_run,omitempty"`
	Canceled     bool     `json:"canceled,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	Code         string   `json:"code,omitempty"`
}

// Summary aggregates a full cleanup run.
type Summary struct {
	Results    []Result `json:"results"`
	TotalFiles int      `json:"total_files"`
	TotalBytes int64    `json:"total_bytes"`
	DryRun     bool     `json:"dry_run,omitempty"`
	Canceled   bool     `json:"canceled,omitempty"`
}

// CategoryPreview reports what one category would reclaim.
type CategoryPreview struct {
	Category  Category `json:"category"`
	FileCount int      `json:"file_count"`
	Bytes     int64    `json:"bytes"`
}

// PreviewReport is the dry-run estimate across categories.
type PreviewReport struct {
	Categories []CategoryPreview `json:"categories"`
	TotalFiles int               `json:"total_files"`
	TotalBytes int64             `json:"total_bytes"`
}
