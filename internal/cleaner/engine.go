// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cleaner removes Windows debris: temp directories, caches, stale
// logs, the recycle bin, and the Windows Update download cache.
package cleaner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/util"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// =============================================================================
// SEAMS
// =============================================================================

// Reporter receives progress while a cleanup runs. *tasks.RunContext
// satisfies it.
type Reporter interface {
	Progress(pct int)
	Status(text string)
	Statusf(format string, args ...any)
	Canceled() bool
	Context() context.Context
}

// nopReporter stands in when the caller passes nil.
type nopReporter struct{}

func (nopReporter) Progress(int)             {}
func (nopReporter) Status(string)            {}
func (nopReporter) Statusf(string, ...any)   {}
func (nopReporter) Canceled() bool           { return false }
func (nopReporter) Context() context.Context { return context.Background() }

// statusOnlyReporter suppresses sub-step progress so a full cleanup owns the
// progress bar while categories still emit status lines.
type statusOnlyReporter struct {
	Reporter
}

func (statusOnlyReporter) Progress(int) {}

// CommandRunner is the slice of winsys.Runner the engine needs.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	PowerShell(ctx context.Context, script string) (string, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// updateServices are stopped around the update cache purge and restarted
// afterwards, in this order.
var updateServices = []string{"wuauserv", "cryptSvc", "bits", "msiserver"}

// eventLogNames are the logs cleared when event log cleanup is enabled.
// The Security log is deliberately left alone.
var eventLogNames = []string{"Application", "System", "Setup"}

// firefoxCacheSubdirs are the only parts of a Firefox profile the engine
// touches; everything else in a profile is user data.
var firefoxCacheSubdirs = []string{"cache2", "startupCache", "OfflineCache"}

// Engine performs cleanup over the category path table.
type Engine struct {
	cfg   config.CleanupConfig
	run   CommandRunner
	log   *logging.Logger
	paths Paths

	// windows gates the command-backed steps; tests flip it to exercise
	// them with a fake runner on any host.
	windows  bool
	elevated func() bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithRunner sets the command executor. Defaults to a winsys.Runner.
func WithRunner(r CommandRunner) Option {
	return func(e *Engine) { e.run = r }
}

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPaths replaces the environment-derived path table.
func WithPaths(p Paths) Option {
	return func(e *Engine) { e.paths = p }
}

// New creates an Engine over the given cleanup configuration.
func New(cfg config.CleanupConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		log:      logging.Default(),
		paths:    DefaultPaths(),
		windows:  runtime.GOOS == "windows",
		elevated: winsys.IsElevated,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.NewNop()
	}
	if e.run == nil {
		e.run = winsys.NewRunner(e.log)
	}
	return e
}

// walkOpts builds the filter set one category pass uses.
func (e *Engine) walkOpts(extensions []string, rep Reporter) walkOptions {
	return walkOptions{
		extensions: normalizeExts(extensions),
		minAge:     time.Duration(e.cfg.MinAgeHours) * time.Hour,
		dryRun:     e.cfg.DryRun,
		canceled:   rep.Canceled,
	}
}

// =============================================================================
// SINGLE CATEGORY
// =============================================================================

// Clean runs one category and returns its outcome. A canceled reporter
// stops the walk early; the partial counts are still returned.
func (e *Engine) Clean(rep Reporter, cat Category) Result {
	if rep == nil {
		rep = nopReporter{}
	}

	rep.Statusf("Cleaning %s", cat.Title())
	rep.Progress(0)

	res := e.cleanCategory(rep, cat)
	res.DryRun = e.cfg.DryRun
	if rep.Canceled() {
		res.Canceled = true
	}

	rep.Progress(100)
	e.log.Info("cleaner", "%s: %d files, %s, %d errors (dry_run=%v)",
		cat, res.FilesRemoved, util.FormatBytes(res.BytesFreed), len(res.Errors), res.DryRun)
	return res
}

func (e *Engine) cleanCategory(rep Reporter, cat Category) Result {
	switch cat {
	case CategoryTemp:
		return e.cleanTemp(rep)
	case CategorySystemCache:
		return e.cleanSystemCache(rep)
	case CategoryBrowser:
		return e.cleanBrowserCaches(rep)
	case CategoryLogs:
		return e.cleanLogs(rep)
	case CategoryRecycleBin:
		return e.emptyRecycleBin(rep)
	case CategoryUpdateCache:
		return e.cleanUpdateCache(rep)
	}
	return Result{
		Category: cat,
		Errors:   []string{fmt.Sprintf("unknown category %q", cat)},
	}
}

// walkAll sweeps a list of roots with shared options, reporting progress per
// root.
func (e *Engine) walkAll(rep Reporter, cat Category, roots []string, opt walkOptions) Result {
	res := Result{Category: cat, Success: true}
	for i, root := range roots {
		if rep.Canceled() {
			break
		}
		files, freed, errs := cleanPath(root, opt)
		res.FilesRemoved += files
		res.BytesFreed += freed
		res.Errors = append(res.Errors, errs...)
		rep.Progress((i + 1) * 100 / len(roots))
	}
	return res
}

func (e *Engine) cleanTemp(rep Reporter) Result {
	return e.walkAll(rep, CategoryTemp, e.paths.Temp, e.walkOpts(nil, rep))
}

func (e *Engine) cleanSystemCache(rep Reporter) Result {
	res := e.walkAll(rep, CategorySystemCache, e.paths.SystemCache, e.walkOpts(nil, rep))

	if rep.Canceled() || e.cfg.DryRun || !e.windows {
		return res
	}
	ctx := rep.Context()
	if e.cfg.DNSCache {
		rep.Status("Flushing DNS resolver cache")
		if _, err := e.run.Run(ctx, "ipconfig", "/flushdns"); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("dns flush: %v", err))
		}
	}
	if e.cfg.IconCache {
		rep.Status("Rebuilding icon cache")
		if _, err := e.run.Run(ctx, "ie4uinit", "-ClearIconCache"); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("icon cache: %v", err))
		}
	}
	return res
}

func (e *Engine) cleanBrowserCaches(rep Reporter) Result {
	res := Result{Category: CategoryBrowser, Success: true}

	roots := append([]string(nil), e.paths.Browser...)
	roots = append(roots, e.firefoxCacheDirs()...)
	if len(roots) == 0 {
		return res
	}

	opt := e.walkOpts(nil, rep)
	lastBrowser := ""
	for i, root := range roots {
		if rep.Canceled() {
			break
		}
		if name := identifyBrowser(root); name != "" && name != lastBrowser {
			rep.Statusf("Cleaning %s cache", name)
			lastBrowser = name
		}
		files, freed, errs := cleanPath(root, opt)
		res.FilesRemoved += files
		res.BytesFreed += freed
		res.Errors = append(res.Errors, errs...)
		rep.Progress((i + 1) * 100 / len(roots))
	}
	return res
}

// firefoxCacheDirs expands the profile containers into per-profile cache
// directories.
func (e *Engine) firefoxCacheDirs() []string {
	var dirs []string
	for _, container := range e.paths.FirefoxProfiles {
		entries, err := os.ReadDir(container)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if !ent.IsDir() {
				continue
			}
			profile := filepath.Join(container, ent.Name())
			for _, sub := range firefoxCacheSubdirs {
				dirs = append(dirs, filepath.Join(profile, sub))
			}
		}
	}
	return dirs
}

func (e *Engine) cleanLogs(rep Reporter) Result {
	res := e.walkAll(rep, CategoryLogs, e.paths.Logs, e.walkOpts(e.cfg.LogExtensions, rep))

	if rep.Canceled() || e.cfg.DryRun || !e.windows || !e.cfg.EventLogs {
		return res
	}
	rep.Status("Clearing event logs")
	for _, name := range eventLogNames {
		if _, err := e.run.Run(rep.Context(), "wevtutil", "cl", name); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("event log %s: %v", name, err))
		}
	}
	return res
}

func (e *Engine) emptyRecycleBin(rep Reporter) Result {
	res := Result{Category: CategoryRecycleBin, Success: true}

	rep.Status("Measuring recycle bin")
	files, freed, _ := cleanPath(e.paths.RecycleBin, walkOptions{dryRun: true, canceled: rep.Canceled})
	res.FilesRemoved = files
	res.BytesFreed = freed

	if e.cfg.DryRun {
		return res
	}
	if !e.windows {
		return unsupportedResult(CategoryRecycleBin, "recycle bin cleanup requires Windows")
	}

	rep.Status("Emptying recycle bin")
	// SilentlyContinue keeps an already-empty bin from reporting failure.
	if _, err := e.run.PowerShell(rep.Context(), "Clear-RecycleBin -Force -ErrorAction SilentlyContinue"); err != nil {
		res.Success = false
		res.FilesRemoved, res.BytesFreed = 0, 0
		res.Errors = append(res.Errors, fmt.Sprintf("clear recycle bin: %v", err))
	}
	return res
}

func (e *Engine) cleanUpdateCache(rep Reporter) Result {
	res := Result{Category: CategoryUpdateCache, Success: true}

	if e.cfg.DryRun {
		for _, dir := range e.paths.UpdateCache {
			files, freed, _ := cleanPath(dir, walkOptions{dryRun: true, canceled: rep.Canceled})
			res.FilesRemoved += files
			res.BytesFreed += freed
		}
		return res
	}
	if !e.windows {
		return unsupportedResult(CategoryUpdateCache, "update cache cleanup requires Windows")
	}
	if !e.elevated() {
		res.Success = false
		res.Code = winsys.CodeAdminRequired
		res.Errors = append(res.Errors, "update cache cleanup requires administrator rights")
		return res
	}

	ctx := rep.Context()
	rep.Status("Stopping update services")
	for _, svc := range updateServices {
		// Already-stopped services report an error; tolerated.
		_, _ = e.run.Run(ctx, "net", "stop", svc)
	}

	rep.Status("Moving update caches aside")
	for _, dir := range e.paths.UpdateCache {
		if rep.Canceled() {
			break
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		files, freed, _ := cleanPath(dir, walkOptions{dryRun: true})

		backup := dir + ".bak"
		_ = os.RemoveAll(backup)
		if err := os.Rename(dir, backup); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("rename %s: %v", dir, err))
			continue
		}
		res.FilesRemoved += files
		res.BytesFreed += freed
	}

	rep.Status("Restarting update services")
	for _, svc := range updateServices {
		_, _ = e.run.Run(ctx, "net", "start", svc)
	}
	return res
}

func unsupportedResult(cat Category, msg string) Result {
	return Result{
		Category: cat,
		Code:     winsys.CodeUnsupportedPlatform,
		Errors:   []string{msg},
	}
}

// =============================================================================
// FULL CLEANUP
// =============================================================================

// enabledCategories resolves the configuration toggles into the category
// list a full cleanup runs. System cache and log sweeps always run; their
// aggressive sub-steps have their own toggles.
func (e *Engine) enabledCategories() []Category {
	var cats []Category
	if e.cfg.TempFiles {
		cats = append(cats, CategoryTemp)
	}
	cats = append(cats, CategorySystemCache)
	if e.cfg.BrowserCaches {
		cats = append(cats, CategoryBrowser)
	}
	cats = append(cats, CategoryLogs)
	if e.cfg.RecycleBin {
		cats = append(cats, CategoryRecycleBin)
	}
	if e.cfg.WindowsUpdate {
		cats = append(cats, CategoryUpdateCache)
	}
	return cats
}

// FullCleanup runs every enabled category in order, owning the progress bar
// across phases. Cancellation stops between categories; finished categories
// stay in the summary.
func (e *Engine) FullCleanup(rep Reporter) Summary {
	if rep == nil {
		rep = nopReporter{}
	}

	cats := e.enabledCategories()
	sum := Summary{DryRun: e.cfg.DryRun}
	e.log.Info("cleaner", "full cleanup: %d categories (dry_run=%v)", len(cats), e.cfg.DryRun)

	phases := statusOnlyReporter{rep}
	for i, cat := range cats {
		if rep.Canceled() {
			sum.Canceled = true
			break
		}
		rep.Statusf("Cleaning %s (%d/%d)", cat.Title(), i+1, len(cats))
		rep.Progress(i * 100 / len(cats))

		res := e.cleanCategory(phases, cat)
		res.DryRun = e.cfg.DryRun
		sum.Results = append(sum.Results, res)
		sum.TotalFiles += res.FilesRemoved
		sum.TotalBytes += res.BytesFreed
	}
	if rep.Canceled() {
		sum.Canceled = true
	}
	rep.Progress(100)

	e.log.Info("cleaner", "full cleanup done: %d files, %s",
		sum.TotalFiles, util.FormatBytes(sum.TotalBytes))
	return sum
}

// =============================================================================
// PREVIEW
// =============================================================================

// Preview walks the requested categories (all of them by default) without
// removing anything and reports what a cleanup would reclaim.
func (e *Engine) Preview(ctx context.Context, cats ...Category) (PreviewReport, error) {
	if len(cats) == 0 {
		cats = Categories()
	}
	var report PreviewReport
	for _, cat := range cats {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p := e.previewCategory(cat)
		report.Categories = append(report.Categories, p)
		report.TotalFiles += p.FileCount
		report.TotalBytes += p.Bytes
	}
	return report, nil
}

func (e *Engine) previewCategory(cat Category) CategoryPreview {
	p := CategoryPreview{Category: cat}

	opt := walkOptions{
		dryRun: true,
		minAge: time.Duration(e.cfg.MinAgeHours) * time.Hour,
	}
	var roots []string
	switch cat {
	case CategoryTemp:
		roots = e.paths.Temp
	case CategorySystemCache:
		roots = e.paths.SystemCache
	case CategoryBrowser:
		roots = append(append([]string(nil), e.paths.Browser...), e.firefoxCacheDirs()...)
	case CategoryLogs:
		roots = e.paths.Logs
		opt.extensions = normalizeExts(e.cfg.LogExtensions)
	case CategoryRecycleBin:
		// Whole-folder categories ignore the age filter, matching Clean.
		roots = []string{e.paths.RecycleBin}
		opt.minAge = 0
	case CategoryUpdateCache:
		roots = e.paths.UpdateCache
		opt.minAge = 0
	}

	for _, root := range roots {
		files, size, _ := cleanPath(root, opt)
		p.FileCount += files
		p.Bytes += size
	}
	return p
}

// =============================================================================
// TASK ADAPTERS
// =============================================================================

// CleanWork adapts a single-category clean onto the task manager. Domain
// refusals (admin rights, wrong platform) ride inside the Result with their
// code; only a cancel cut short of completion fails the task.
func (e *Engine) CleanWork(cat Category) tasks.Work {
	return func(rc *tasks.RunContext) (any, error) {
		res := e.Clean(rc, cat)
		if res.Canceled {
			return res, context.Canceled
		}
		return res, nil
	}
}

// FullCleanupWork adapts a full cleanup onto the task manager. Individual
// category failures stay inside the summary.
func (e *Engine) FullCleanupWork() tasks.Work {
	return func(rc *tasks.RunContext) (any, error) {
		sum := e.FullCleanup(rc)
		if sum.Canceled {
			return sum, context.Canceled
		}
		return sum, nil
	}
}
