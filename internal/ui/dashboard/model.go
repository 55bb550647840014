// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/ui/components"
	"github.com/jeranaias/rigtune/internal/ui/styles"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// =============================================================================
// TABS
// =============================================================================

// Tab identifies one dashboard pane.
type Tab int

const (
	TabOverview Tab = iota
	TabTasks
	TabCleanup
	TabOptimize
	TabReport

	tabCount
)

// Title returns the tab's display name.
func (t Tab) Title() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabTasks:
		return "Tasks"
	case TabCleanup:
		return "Cleanup"
	case TabOptimize:
		return "Optimize"
	case TabReport:
		return "Report"
	default:
		return "Unknown"
	}
}

// next returns the tab to the right, wrapping around.
func (t Tab) next() Tab {
	return (t + 1) % tabCount
}

// prev returns the tab to the left, wrapping around.
func (t Tab) prev() Tab {
	return (t + tabCount - 1) % tabCount
}

// =============================================================================
// MENU ENTRIES
// =============================================================================

// cleanupEntry is one row of the cleanup menu: a single category, or the
// full-cleanup row that runs every enabled category.
type cleanupEntry struct {
	cat cleaner.Category
	all bool
}

func (e cleanupEntry) title() string {
	if e.all {
		return "Full cleanup (all enabled categories)"
	}
	return e.cat.Title()
}

// cleanupEntries builds the menu in display order.
func cleanupEntries() []cleanupEntry {
	cats := cleaner.Categories()
	entries := make([]cleanupEntry, 0, len(cats)+1)
	for _, cat := range cats {
		entries = append(entries, cleanupEntry{cat: cat})
	}
	entries = append(entries, cleanupEntry{all: true})
	return entries
}

// optimizeKind discriminates the optimize menu rows.
type optimizeKind int

const (
	entryOperation optimizeKind = iota
	entryProfile
	entryTurbo
)

// optimizeEntry is one row of the optimize menu.
type optimizeEntry struct {
	kind    optimizeKind
	op      optimizer.Operation
	profile optimizer.Profile
}

func (e optimizeEntry) title() string {
	switch e.kind {
	case entryProfile:
		return "Profile: " + e.profile.Title()
	case entryTurbo:
		return "Turbo mode"
	default:
		return e.op.Title()
	}
}

// optimizeEntries builds the menu: single operations first, then profiles,
// then the turbo toggle.
func optimizeEntries() []optimizeEntry {
	ops := optimizer.Operations()
	profiles := optimizer.Profiles()
	entries := make([]optimizeEntry, 0, len(ops)+len(profiles)+1)
	for _, op := range ops {
		entries = append(entries, optimizeEntry{kind: entryOperation, op: op})
	}
	for _, p := range profiles {
		entries = append(entries, optimizeEntry{kind: entryProfile, profile: p})
	}
	entries = append(entries, optimizeEntry{kind: entryTurbo})
	return entries
}

// =============================================================================
// PENDING ACTION
// =============================================================================

// pendingAction holds a submission deferred behind the confirmation dialog.
// The id must match the ConfirmResultMsg that releases it.
type pendingAction struct {
	id     string
	submit tea.Cmd
}

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Deps carries the services the dashboard drives. Manager and Sampler are
// required for a functional dashboard; the rest degrade gracefully when nil
// (the corresponding tab reports the feature as unavailable).
type Deps struct {
	Config *config.Config

	// Manager runs cleanup and optimization as background tasks.
	Manager *tasks.Manager

	// Sampler feeds the overview meters. The dashboard does not start or
	// stop it; main owns its lifecycle.
	Sampler *sysinfo.Sampler

	// Cleaner performs deletions per the user's cleanup config.
	Cleaner *cleaner.Engine

	// CleanerDry is the same engine with dry-run forced on. The d key picks
	// between the two; keeping both avoids mutating engine config while
	// task goroutines may be reading it.
	CleanerDry *cleaner.Engine

	// Optimizer applies system tweaks and owns turbo state.
	Optimizer *optimizer.Engine

	// History records finished runs and feeds the report tab.
	History *history.Store
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	// Styling
	theme *styles.Theme

	// Configuration
	cfg *config.Config

	// Key bindings
	keyMap KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Active tab and overlays
	tab      Tab
	showHelp bool
	quitting bool

	// Services
	manager    *tasks.Manager
	sampler    *sysinfo.Sampler
	cleanEng   *cleaner.Engine
	cleanDry   *cleaner.Engine
	optimEng   *optimizer.Engine
	histStore  *history.Store

	// UI components
	header     *components.Header
	statusBar  *components.StatusBar
	taskPanel  *components.TaskPanel
	cpuMeter   *components.Meter
	ramMeter   *components.Meter
	diskMeter  *components.Meter
	procTable  *components.ProcTable
	confirm    *components.ConfirmDialog
	toasts     *components.ToastManager
	spinner    components.Spinner
	reportView viewport.Model

	// Monitor data
	snapshot *sysinfo.Snapshot
	specs    sysinfo.Specs
	cpuHist  []float64
	ramHist  []float64
	diskHist []float64

	// Tasks tab
	showFinished bool

	// Cleanup tab
	cleanRows   []cleanupEntry
	cleanCursor int
	preview     *cleaner.PreviewReport
	previewErr  string
	dryRun      bool

	// Optimize tab
	optimRows   []optimizeEntry
	optimCursor int
	optimStatus *optimizer.Status

	// Report tab
	reportMarkdown string
	reportReady    bool
	reportErr      string

	// Confirmation gate
	pending *pendingAction

	sessionStart time.Time
}

// New creates the dashboard model. The theme must not be nil; nil Deps
// fields disable the corresponding feature rather than panicking.
func New(theme *styles.Theme, deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	header := components.NewHeader(theme)
	statusBar := components.NewStatusBar(theme)
	taskPanel := components.NewTaskPanel(theme)
	confirm := components.NewConfirmDialog(theme)

	admin := winsys.IsElevated()
	header.SetAdmin(admin)
	statusBar.SetAdmin(admin)
	header.SetPlan(cfg.Power.ActivePlan)
	statusBar.SetPlan(cfg.Power.ActivePlan)

	dryRun := cfg.Cleanup.DryRun
	header.SetDryRun(dryRun)
	statusBar.SetDryRun(dryRun)

	var specs sysinfo.Specs
	if deps.Sampler != nil {
		specs = deps.Sampler.Specs()
		header.SetHost(specs.Hostname)
	}

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := components.NewSpinner()
	sp.SetShowTimer(false)

	m := Model{
		theme:        theme,
		cfg:          cfg,
		keyMap:       DefaultKeyMap(),
		tab:          TabOverview,
		manager:      deps.Manager,
		sampler:      deps.Sampler,
		cleanEng:     deps.Cleaner,
		cleanDry:     deps.CleanerDry,
		optimEng:     deps.Optimizer,
		histStore:    deps.History,
		header:       header,
		statusBar:    statusBar,
		taskPanel:    taskPanel,
		confirm:      confirm,
		toasts:       components.NewToastManager(),
		spinner:      sp,
		reportView:   vp,
		cpuMeter:     components.NewMeter(theme, "CPU"),
		ramMeter:     components.NewMeter(theme, "RAM"),
		diskMeter:    components.NewMeter(theme, "Disk"),
		procTable:    components.NewProcTable(theme),
		specs:        specs,
		showFinished: true,
		cleanRows:    cleanupEntries(),
		optimRows:    optimizeEntries(),
		dryRun:       dryRun,
		sessionStart: time.Now(),
	}
	m.refreshTasks()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init kicks off the heartbeat and the initial data loads. The monitor
// stream itself arrives via the Forwarder wired in main.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.previewCmd(),
		m.optimizerStatusCmd(),
		m.buildReportCmd(),
	)
}

// =============================================================================
// SHARED STATE HELPERS
// =============================================================================

// refreshInterval is the heartbeat period, bounded so a bad config value
// cannot spin the CPU or freeze the clock.
func (m *Model) refreshInterval() time.Duration {
	ms := 1000
	if m.cfg != nil && m.cfg.UI.RefreshIntervalMS > 0 {
		ms = m.cfg.UI.RefreshIntervalMS
	}
	if ms < 100 {
		ms = 100
	}
	if ms > 10000 {
		ms = 10000
	}
	return time.Duration(ms) * time.Millisecond
}

// activeCleaner picks the engine matching the dry-run toggle.
func (m *Model) activeCleaner() *cleaner.Engine {
	if m.dryRun && m.cleanDry != nil {
		return m.cleanDry
	}
	return m.cleanEng
}

// refreshTasks re-reads the manager registry into the task panel and the
// status bar. Cheap enough to call on every task event.
func (m *Model) refreshTasks() {
	if m.manager == nil {
		return
	}
	m.taskPanel.SetTasks(m.manager.Snapshots())

	counts := m.manager.Counts()
	active := counts.Running + counts.Pending
	m.statusBar.SetRunningTasks(active)
	if active > 0 {
		m.statusBar.SetStatus(components.StatusWorking)
	} else {
		m.statusBar.SetStatus(components.StatusReady)
	}
}

// setDryRun flips the toggle and the badges together.
func (m *Model) setDryRun(on bool) {
	m.dryRun = on
	m.header.SetDryRun(on)
	m.statusBar.SetDryRun(on)
}

// Tab returns the active tab. Exposed for tests and the help overlay.
func (m Model) Tab() Tab {
	return m.tab
}

// DryRun reports whether cleanup submissions run in dry-run mode.
func (m Model) DryRun() bool {
	return m.dryRun
}
