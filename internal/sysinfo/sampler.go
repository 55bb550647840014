// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysinfo samples live system statistics for the dashboard.
package sysinfo

import (
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// =============================================================================
// SAMPLER
// =============================================================================

const (
	// DefaultInterval matches the dashboard's 1Hz refresh.
	DefaultInterval = time.Second
	// MinInterval is the floor; per-process counters get expensive below it.
	MinInterval = 100 * time.Millisecond
	// DefaultHistoryPoints keeps one minute of history at the default interval.
	DefaultHistoryPoints = 60
	// DefaultTopProcesses sizes the process table.
	DefaultTopProcesses = 10
	// DefaultDiskPath is the monitored volume.
	DefaultDiskPath = `C:\`

	// significantPercent keeps idle processes out of the table.
	significantPercent = 1.0
)

// Sampler polls system counters on a fixed interval and fans snapshots out
// to subscribers. Construct with New, then Start/Stop; RefreshNow forces an
// off-schedule sample (rate limited).
type Sampler struct {
	collector     Collector
	interval      time.Duration
	historyPoints int
	topN          int
	diskPath      string
	log           *logging.Logger
	limiter       *rate.Limiter

	// sampleMu serializes sampling so ticker and RefreshNow cannot
	// interleave their delta bookkeeping.
	sampleMu      sync.Mutex
	prevIdle      uint64
	prevTotal     uint64
	prevProcTicks map[uint32]uint64

	mu       sync.RWMutex
	latest   *Snapshot
	cpuHist  *History
	ramHist  *History
	diskHist *History
	running  bool
	stopCh   chan struct{}

	listenerMu   sync.RWMutex
	listeners    map[int]func(*Snapshot)
	nextListener int

	wg sync.WaitGroup
}

// Option configures a Sampler at construction.
type Option func(*Sampler)

// WithCollector sets the counter source. Defaults to the winsys-backed one.
func WithCollector(c Collector) Option {
	return func(s *Sampler) { s.collector = c }
}

// WithInterval sets the sampling interval, clamped to MinInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) { s.interval = d }
}

// WithHistoryPoints sets how many points each metric history keeps.
func WithHistoryPoints(n int) Option {
	return func(s *Sampler) { s.historyPoints = n }
}

// WithTopProcesses sets the process table size.
func WithTopProcesses(n int) Option {
	return func(s *Sampler) { s.topN = n }
}

// WithDiskPath sets the monitored volume.
func WithDiskPath(path string) Option {
	return func(s *Sampler) { s.diskPath = path }
}

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Sampler) { s.log = l }
}

// New creates a Sampler. It does not start sampling; call Start.
func New(opts ...Option) *Sampler {
	s := &Sampler{
		collector:     SystemCollector(),
		interval:      DefaultInterval,
		historyPoints: DefaultHistoryPoints,
		topN:          DefaultTopProcesses,
		diskPath:      DefaultDiskPath,
		log:           logging.Default(),
		// Manual refreshes are capped at two per second; the UI sends one
		// after every finished task and bursts must not stack up.
		limiter:       rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		prevProcTicks: make(map[uint32]uint64),
		listeners:     make(map[int]func(*Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.collector == nil {
		s.collector = SystemCollector()
	}
	if s.interval < MinInterval {
		s.interval = MinInterval
	}
	if s.historyPoints < 1 {
		s.historyPoints = DefaultHistoryPoints
	}
	if s.topN < 1 {
		s.topN = DefaultTopProcesses
	}
	if s.diskPath == "" {
		s.diskPath = DefaultDiskPath
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	s.cpuHist = NewHistory(s.historyPoints)
	s.ramHist = NewHistory(s.historyPoints)
	s.diskHist = NewHistory(s.historyPoints)
	return s
}

// Interval returns the sampling interval after clamping.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start begins sampling. An immediate first sample runs before the ticker
// so the dashboard has data right away. Calling Start on a running sampler
// is a no-op.
func (s *Sampler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(stopCh)
	s.log.Info("sysinfo", "monitoring started (interval %v)", s.interval)
}

// Stop halts sampling and waits for the loop to exit. Subscribers stay
// registered; Start resumes delivery.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("sysinfo", "monitoring stopped")
}

// Running reports whether the sampler loop is active.
func (s *Sampler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Sampler) loop(stopCh chan struct{}) {
	defer s.wg.Done()

	s.refresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

// RefreshNow forces an immediate sample outside the ticker schedule.
// Returns false when the rate limiter suppressed it.
func (s *Sampler) RefreshNow() bool {
	if !s.limiter.Allow() {
		return false
	}
	s.refresh()
	return true
}

// =============================================================================
// SUBSCRIPTIONS AND READS
// =============================================================================

// Subscribe registers a callback invoked with every new snapshot. The
// returned function unsubscribes. Callbacks run on the sampling goroutine;
// keep them fast.
func (s *Sampler) Subscribe(fn func(*Snapshot)) func() {
	s.listenerMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

// Latest returns the most recent snapshot, or nil before the first sample.
func (s *Sampler) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Histories returns copies of the CPU, memory, and disk percent histories,
// oldest point first.
func (s *Sampler) Histories() (cpu, ram, disk []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cpuHist.Values(), s.ramHist.Values(), s.diskHist.Values()
}

// Specs gathers the static hardware summary through this sampler's collector.
func (s *Sampler) Specs() Specs {
	return CollectSpecs(s.collector, s.diskPath)
}

func (s *Sampler) listenersSnapshot() []func(*Snapshot) {
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	out := make([]func(*Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// =============================================================================
// SAMPLING
// =============================================================================

// refresh takes one sample, publishes it, and notifies subscribers.
func (s *Sampler) refresh() {
	snap := s.sample()

	s.mu.Lock()
	s.latest = snap
	if snap.Supported {
		s.cpuHist.Push(snap.CPU.Percent)
		s.ramHist.Push(snap.Memory.Percent)
		s.diskHist.Push(snap.Disk.Percent)
	}
	s.mu.Unlock()

	// Callbacks run outside the lock
	for _, fn := range s.listenersSnapshot() {
		fn(snap)
	}
}

// sample reads all counters and assembles a Snapshot. CPU and per-process
// load come from tick deltas against the previous sample.
func (s *Sampler) sample() *Snapshot {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	snap := &Snapshot{
		Timestamp: time.Now(),
		CPU:       CPUStats{Cores: runtime.NumCPU()},
		Disk:      DiskStats{Path: s.diskPath},
	}

	var cpuDelta uint64

	idle, total, err := s.collector.CPUTimes()
	switch {
	case err == nil:
		snap.Supported = true
		if s.prevTotal > 0 && total > s.prevTotal {
			cpuDelta = total - s.prevTotal
			var idleDelta uint64
			if idle > s.prevIdle {
				idleDelta = idle - s.prevIdle
			}
			if idleDelta > cpuDelta {
				idleDelta = cpuDelta
			}
			snap.CPU.Percent = float64(cpuDelta-idleDelta) / float64(cpuDelta) * 100
		}
		s.prevIdle, s.prevTotal = idle, total
	case errors.Is(err, winsys.ErrNotWindows):
		// Snapshot stays Supported=false with zero metrics
	default:
		snap.Supported = true
		s.log.Warn("sysinfo", "cpu sample failed: %v", err)
	}

	if memTotal, memAvail, err := s.collector.MemoryStatus(); err == nil {
		snap.Supported = true
		snap.Memory.Total = memTotal
		snap.Memory.Available = memAvail
		if memTotal >= memAvail {
			snap.Memory.Used = memTotal - memAvail
		}
		if memTotal > 0 {
			snap.Memory.Percent = float64(snap.Memory.Used) / float64(memTotal) * 100
		}
	} else if !errors.Is(err, winsys.ErrNotWindows) {
		s.log.Warn("sysinfo", "memory sample failed: %v", err)
	}

	if diskTotal, diskFree, err := s.collector.DiskUsage(s.diskPath); err == nil {
		snap.Disk.Total = diskTotal
		snap.Disk.Free = diskFree
		if diskTotal >= diskFree {
			snap.Disk.Used = diskTotal - diskFree
		}
		if diskTotal > 0 {
			snap.Disk.Percent = float64(snap.Disk.Used) / float64(diskTotal) * 100
		}
	} else if !errors.Is(err, winsys.ErrNotWindows) {
		s.log.Warn("sysinfo", "disk sample failed: %v", err)
	}

	if procs, err := s.collector.ProcessList(); err == nil {
		snap.ProcessCount = len(procs)
		snap.Processes = s.rankProcesses(procs, cpuDelta, snap.Memory.Total)
	} else if !errors.Is(err, winsys.ErrNotWindows) {
		s.log.Warn("sysinfo", "process sample failed: %v", err)
	}

	if up, err := s.collector.Uptime(); err == nil {
		snap.Uptime = up
	}

	return snap
}

// rankProcesses computes per-process load from tick deltas, drops
// insignificant rows, sorts by CPU, and caps the table.
func (s *Sampler) rankProcesses(procs []winsys.ProcessInfo, cpuDelta, memTotal uint64) []Process {
	newTicks := make(map[uint32]uint64, len(procs))
	var rows []Process

	for _, p := range procs {
		newTicks[p.PID] = p.CPUTicks

		row := Process{
			PID:    p.PID,
			Name:   p.Name,
			Memory: p.WorkingSet,
		}
		if prev, ok := s.prevProcTicks[p.PID]; ok && cpuDelta > 0 && p.CPUTicks >= prev {
			row.CPUPercent = float64(p.CPUTicks-prev) / float64(cpuDelta) * 100
		}
		if memTotal > 0 {
			row.MemoryPercent = float64(p.WorkingSet) / float64(memTotal) * 100
		}

		if row.CPUPercent > significantPercent || row.MemoryPercent > significantPercent {
			rows = append(rows, row)
		}
	}
	// Exited PIDs fall out of the delta map here
	s.prevProcTicks = newTicks

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CPUPercent != rows[j].CPUPercent {
			return rows[i].CPUPercent > rows[j].CPUPercent
		}
		return rows[i].Memory > rows[j].Memory
	})
	if len(rows) > s.topN {
		rows = rows[:s.topN]
	}
	return rows
}
