// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/util"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// ErrTurboActive is returned when turbo mode is activated twice.
var ErrTurboActive = errors.New("optimizer: turbo mode already active")

// =============================================================================
// SEAMS
// =============================================================================

// Reporter receives progress while an optimization runs. *tasks.RunContext
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

func orNop(rep Reporter) Reporter {
	if rep == nil {
		return nopReporter{}
	}
	return rep
}

// statusOnlyReporter suppresses sub-step progress so a composite operation
// owns the progress bar while its steps still emit status lines.
type statusOnlyReporter struct {
	Reporter
}

func (statusOnlyReporter) Progress(int) {}

// CommandRunner is the slice of winsys.Runner the engine needs.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	PowerShell(ctx context.Context, script string) (string, error)
	CreateRestorePoint(ctx context.Context, description string) error
}

// MemoryTrimmer is the slice of winsys the RAM cleanup needs.
type MemoryTrimmer interface {
	MemoryStatus() (total, avail uint64, err error)
	TrimWorkingSets() (int, error)
}

// systemMemory is the production MemoryTrimmer backed by Windows APIs.
type systemMemory struct{}

func (systemMemory) MemoryStatus() (uint64, uint64, error) { return winsys.MemoryStatus() }
func (systemMemory) TrimWorkingSets() (int, error)         { return winsys.TrimWorkingSets() }

// =============================================================================
// ENGINE
// =============================================================================

// Engine applies optimizations according to the configuration.
type Engine struct {
	cfg        *config.Config
	run        CommandRunner
	mem        MemoryTrimmer
	startup    StartupStore
	log        *logging.Logger
	startupDir string
	backupDir  string

	// windows gates the command-backed steps; tests flip it to exercise
	// them with fakes on any host.
	windows  bool
	elevated func() bool

	mu          sync.Mutex
	turboActive bool
	lastRun     time.Time
	lastAction  string
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

// WithMemory sets the memory reader and trimmer.
func WithMemory(m MemoryTrimmer) Option {
	return func(e *Engine) { e.mem = m }
}

// WithStartup sets the startup entry store.
func WithStartup(s StartupStore) Option {
	return func(e *Engine) { e.startup = s }
}

// WithStartupDir replaces the logon Startup folder path.
func WithStartupDir(dir string) Option {
	return func(e *Engine) { e.startupDir = dir }
}

// WithBackupDir replaces the directory startup backups are exported to.
func WithBackupDir(dir string) Option {
	return func(e *Engine) { e.backupDir = dir }
}

// New creates an Engine over the given configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:        cfg,
		log:        logging.Default(),
		startupDir: defaultStartupDir(),
		backupDir:  cfg.Backup.Dir,
		windows:    runtime.GOOS == "windows",
		elevated:   winsys.IsElevated,
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
	if e.mem == nil {
		e.mem = systemMemory{}
	}
	if e.startup == nil {
		e.startup = registryStartup{}
	}
	return e
}

// defaultStartupDir locates the per-user logon Startup folder.
func defaultStartupDir() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return ""
	}
	return filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", "Startup")
}

// noteRun records the most recent action for the status snapshot.
func (e *Engine) noteRun(op Operation) {
	e.mu.Lock()
	e.lastRun = time.Now()
	e.lastAction = op.Title()
	e.mu.Unlock()
}

func unsupported(op Operation, msg string) Result {
	return Result{Op: op, Code: winsys.CodeUnsupportedPlatform, Errors: []string{msg}}
}

func adminRequired(op Operation, msg string) Result {
	return Result{Op: op, Code: winsys.CodeAdminRequired, Errors: []string{msg}}
}

// =============================================================================
// SINGLE OPERATIONS
// =============================================================================

// RunOperation runs one optimization by name, using the configured power
// plan for the power step.
func (e *Engine) RunOperation(rep Reporter, op Operation) Result {
	return e.runOperation(orNop(rep), op, e.cfg.Power.ActivePlan)
}

func (e *Engine) runOperation(rep Reporter, op Operation, plan string) Result {
	switch op {
	case OpRAM:
		return e.CleanRAM(rep)
	case OpStartup:
		return e.OptimizeStartup(rep)
	case OpServices:
		return e.OptimizeServices(rep)
	case OpNetwork:
		return e.OptimizeNetwork(rep)
	case OpPower:
		return e.SetPowerPlan(rep, plan)
	case OpBoost:
		return e.QuickBoost(rep)
	}
	return Result{
		Op:     op,
		Errors: []string{fmt.Sprintf("unknown operation %q", op)},
	}
}

// CleanRAM trims every accessible process working set and reports the
// before/after memory picture. Runs without elevation, just reaching fewer
// processes.
func (e *Engine) CleanRAM(rep Reporter) Result {
	rep = orNop(rep)
	res := Result{Op: OpRAM, Success: true}

	if !e.windows {
		return unsupported(OpRAM, "RAM cleanup requires Windows")
	}

	rep.Status("Measuring memory")
	total, availBefore, err := e.mem.MemoryStatus()
	if err != nil {
		if errors.Is(err, winsys.ErrNotWindows) {
			return unsupported(OpRAM, "RAM cleanup requires Windows")
		}
		res.Success = false
		res.Errors = append(res.Errors, fmt.Sprintf("memory status: %v", err))
		return res
	}

	rep.Status("Trimming process working sets")
	rep.Progress(30)
	trimmed, err := e.mem.TrimWorkingSets()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("trim working sets: %v", err))
	}

	rep.Progress(80)
	_, availAfter, err := e.mem.MemoryStatus()
	if err != nil {
		availAfter = availBefore
	}

	beforeUsed := total - availBefore
	afterUsed := total - availAfter
	res.RAM = &RAMStats{
		Total:      total,
		BeforeUsed: beforeUsed,
		AfterUsed:  afterUsed,
		Freed:      int64(beforeUsed) - int64(afterUsed),
		Trimmed:    trimmed,
	}
	res.Applied = trimmed
	res.Changes = append(res.Changes, fmt.Sprintf("trimmed %d process working sets", trimmed))
	if res.RAM.Freed > 0 {
		res.Changes = append(res.Changes, "released "+util.FormatBytes(res.RAM.Freed))
	}

	if rep.Canceled() {
		res.Canceled = true
	}
	rep.Progress(100)
	e.log.Info("optimizer", "ram: trimmed %d working sets, freed %s",
		trimmed, util.FormatBytes(res.RAM.Freed))
	e.noteRun(OpRAM)
	return res
}

// QuickBoost chains the fast wins: a RAM trim, a DNS flush, and the
// configured power plan.
func (e *Engine) QuickBoost(rep Reporter) Result {
	rep = orNop(rep)
	res := Result{Op: OpBoost, Success: true}

	if !e.windows {
		return unsupported(OpBoost, "quick boost requires Windows")
	}
	if !e.elevated() {
		return adminRequired(OpBoost, "quick boost requires administrator rights")
	}

	phases := statusOnlyReporter{rep}
	rep.Progress(0)

	res.merge(e.CleanRAM(phases))
	rep.Progress(33)

	if !rep.Canceled() {
		rep.Status("Flushing DNS resolver cache")
		if _, err := e.run.Run(rep.Context(), "ipconfig", "/flushdns"); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("dns flush: %v", err))
		} else {
			res.Applied++
			res.Changes = append(res.Changes, "flushed DNS cache")
		}
		rep.Progress(66)
	}

	if !rep.Canceled() {
		res.merge(e.SetPowerPlan(phases, e.cfg.Power.ActivePlan))
	}

	if rep.Canceled() {
		res.Canceled = true
	}
	rep.Progress(100)
	e.log.Info("optimizer", "quick boost: %d tweaks applied", res.Applied)
	e.noteRun(OpBoost)
	return res
}

// =============================================================================
// PROFILES AND TURBO
// =============================================================================

// Checkpoint creates a system restore point when the configuration asks for
// one. Failures are logged, not fatal: Windows throttles restore points to
// one per day by default.
func (e *Engine) Checkpoint(rep Reporter, label string) bool {
	if !e.cfg.Backup.CreateRestorePoint || !e.windows || !e.elevated() {
		return false
	}
	rep = orNop(rep)
	rep.Status("Creating restore point")
	if err := e.run.CreateRestorePoint(rep.Context(), "rigtune: "+label); err != nil {
		e.log.Warn("optimizer", "restore point not created: %v", err)
		return false
	}
	e.log.Info("optimizer", "restore point created: %s", label)
	return true
}

// ApplyProfile runs a profile's bundled operations in order, owning the
// progress bar across phases. A restore point is attempted once up front;
// cancellation stops between operations and finished ones stay in the
// summary.
func (e *Engine) ApplyProfile(rep Reporter, p Profile) ProfileSummary {
	rep = orNop(rep)
	sum := ProfileSummary{Profile: p}

	ops := p.Operations()
	if len(ops) == 0 {
		return sum
	}
	if rep.Canceled() {
		sum.Canceled = true
		return sum
	}
	e.log.Info("optimizer", "applying %s profile: %d operations", p, len(ops))

	sum.RestorePoint = e.Checkpoint(rep, p.Title()+" profile")

	phases := statusOnlyReporter{rep}
	for i, op := range ops {
		if rep.Canceled() {
			sum.Canceled = true
			break
		}
		rep.Statusf("Applying %s (%d/%d)", op.Title(), i+1, len(ops))
		rep.Progress(i * 100 / len(ops))

		res := e.runOperation(phases, op, p.PowerPlan())
		sum.Results = append(sum.Results, res)
		sum.Applied += res.Applied
	}
	if rep.Canceled() {
		sum.Canceled = true
	}
	rep.Progress(100)

	e.log.Info("optimizer", "%s profile done: %d tweaks applied", p, sum.Applied)
	return sum
}

// ActivateTurbo applies the maximum profile and latches the turbo flag.
// Returns ErrTurboActive if turbo mode is already on.
func (e *Engine) ActivateTurbo(rep Reporter) (ProfileSummary, error) {
	e.mu.Lock()
	if e.turboActive {
		e.mu.Unlock()
		return ProfileSummary{Profile: ProfileMaximum}, ErrTurboActive
	}
	e.mu.Unlock()

	sum := e.ApplyProfile(rep, ProfileMaximum)
	if !sum.Canceled {
		e.mu.Lock()
		e.turboActive = true
		e.mu.Unlock()
	}
	return sum, nil
}

// DeactivateTurbo returns the power plan to Balanced and clears the turbo
// flag. Service start modes and parked startup entries stay as tuned; those
// restore from the exported backups.
func (e *Engine) DeactivateTurbo(rep Reporter) Result {
	res := e.SetPowerPlan(orNop(rep), "balanced")
	res.Changes = append(res.Changes, "turbo mode off")

	e.mu.Lock()
	e.turboActive = false
	e.mu.Unlock()
	return res
}

// TurboActive reports whether turbo mode is latched on.
func (e *Engine) TurboActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turboActive
}

// Status assembles the optimizer panel snapshot. Every field is best-effort;
// collectors that fail leave their fields zeroed.
func (e *Engine) Status(ctx context.Context) Status {
	s := Status{
		Supported: e.windows,
		Elevated:  e.elevated(),
		CPUCount:  runtime.NumCPU(),
	}
	if total, avail, err := e.mem.MemoryStatus(); err == nil {
		s.MemoryTotal, s.MemoryAvail = total, avail
	}
	if e.windows {
		s.ActivePlan = e.activePlanName(ctx)
	}

	e.mu.Lock()
	s.TurboActive = e.turboActive
	s.LastRun = e.lastRun
	s.LastAction = e.lastAction
	e.mu.Unlock()
	return s
}

// =============================================================================
// TASK ADAPTERS
// =============================================================================

// OperationWork adapts a single optimization onto the task manager. Domain
// refusals (admin rights, wrong platform) ride inside the Result with their
// code; only a cancel cut short of completion fails the task.
func (e *Engine) OperationWork(op Operation) tasks.Work {
	return func(rc *tasks.RunContext) (any, error) {
		res := e.RunOperation(rc, op)
		if res.Canceled {
			return res, context.Canceled
		}
		return res, nil
	}
}

// ProfileWork adapts a profile application onto the task manager.
func (e *Engine) ProfileWork(p Profile) tasks.Work {
	return func(rc *tasks.RunContext) (any, error) {
		sum := e.ApplyProfile(rc, p)
		if sum.Canceled {
			return sum, context.Canceled
		}
		return sum, nil
	}
}

// TurboWork adapts turbo activation onto the task manager. A double
// activation fails the task with ErrTurboActive.
func (e *Engine) TurboWork() tasks.Work {
	return func(rc *tasks.RunContext) (any, error) {
		sum, err := e.ActivateTurbo(rc)
		if err != nil {
			return nil, err
		}
		if sum.Canceled {
			return sum, context.Canceled
		}
		return sum, nil
	}
}
