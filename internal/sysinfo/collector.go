// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysinfo samples live system statistics for the dashboard.
package sysinfo

import (
	"os"
	"runtime"
	"time"

	"github.com/jeranaias/rigtune/internal/winsys"
)

// Collector supplies the raw counters a Sampler turns into snapshots.
// The production implementation delegates to winsys; tests script their own.
type Collector interface {
	// CPUTimes returns cumulative idle and total processor ticks
	CPUTimes() (idle, total uint64, err error)
	// MemoryStatus returns total and available physical memory in bytes
	MemoryStatus() (total, avail uint64, err error)
	// DiskUsage returns total and free bytes for the volume holding path
	DiskUsage(path string) (total, free uint64, err error)
	// ProcessList snapshots running processes with their counters
	ProcessList() ([]winsys.ProcessInfo, error)
	// Uptime returns time since boot
	Uptime() (time.Duration, error)
}

// systemCollector reads real counters through winsys.
type systemCollector struct{}

// SystemCollector returns the production Collector backed by Windows APIs.
func SystemCollector() Collector {
	return systemCollector{}
}

func (systemCollector) CPUTimes() (uint64, uint64, error) {
	return winsys.CPUTimes()
}

func (systemCollector) MemoryStatus() (uint64, uint64, error) {
	return winsys.MemoryStatus()
}

func (systemCollector) DiskUsage(path string) (uint64, uint64, error) {
	return winsys.DiskUsage(path)
}

func (systemCollector) ProcessList() ([]winsys.ProcessInfo, error) {
	return winsys.ProcessList()
}

func (systemCollector) Uptime() (time.Duration, error) {
	return winsys.Uptime()
}

// CollectSpecs gathers the static hardware summary once. Collector failures
// leave the corresponding fields at zero.
func CollectSpecs(c Collector, diskPath string) Specs {
	specs := Specs{
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
	}
	if host, err := os.Hostname(); err == nil {
		specs.Hostname = host
	}
	if total, _, err := c.MemoryStatus(); err == nil {
		specs.TotalMemory = total
	}
	if total, _, err := c.DiskUsage(diskPath); err == nil {
		specs.DiskTotal = total
	}
	return specs
}
