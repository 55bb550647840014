// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysinfo samples live system statistics for the dashboard.
package sysinfo

import (
	"time"
)

// CPUStats is the machine-wide processor load at one sample point.
type CPUStats struct {
	// Percent is total load across all cores, 0-100
	Percent float64
	// Cores is the logical core count
	Cores int
}

// MemoryStats is physical memory usage at one sample point.
type MemoryStats struct {
	Total     uint64
	Available uint64
	Used      uint64
	Percent   float64
}

// DiskStats is usage of the monitored volume at one sample point.
type DiskStats struct {
	// Path identifies the volume (default C:\)
	Path    string
	Total   uint64
	Free    uint64
	Used    uint64
	Percent float64
}

// Process is one row of the top-processes table.
type Process struct {
	PID  uint32
	Name string
	// CPUPercent is this process's share of total machine capacity since
	// the previous sample, 0-100
	CPUPercent float64
	// Memory is the working set in bytes
	Memory uint64
	// MemoryPercent is Memory relative to total physical memory
	MemoryPercent float64
}

// Snapshot is one complete reading of system state. Subscribers must treat
// it as read-only; the Sampler hands the same instance to every listener.
type Snapshot struct {
	Timestamp time.Time
	// Supported is false when the platform collectors are unavailable
	// (running off Windows); all metrics are zero in that case.
	Supported bool

	CPU    CPUStats
	Memory MemoryStats
	Disk   DiskStats

	// Processes holds the top consumers sorted by CPU, capped at the
	// configured table size. Only processes above 1% CPU or memory appear.
	Processes []Process
	// ProcessCount is the total number of processes enumerated
	ProcessCount int

	Uptime time.Duration
}

// Specs is the static hardware summary shown on the overview tab and in
// exported reports.
type Specs struct {
	Hostname     string
	OS           string
	Arch         string
	LogicalCores int
	TotalMemory  uint64
	DiskTotal    uint64
}
