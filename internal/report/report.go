// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report builds and exports maintenance run reports.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/sysinfo"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// Host describes the machine a report was generated on.
type Host struct {
	Hostname    string `json:"hostname"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	Cores       int    `json:"cores"`
	TotalMemory uint64 `json:"total_memory_bytes"`
	DiskTotal   uint64 `json:"disk_total_bytes"`
}

// HostFromSpecs converts a hardware summary into report form.
func HostFromSpecs(sp sysinfo.Specs) Host {
	return Host{
		Hostname:    sp.Hostname,
		OS:          sp.OS,
		Arch:        sp.Arch,
		Cores:       sp.LogicalCores,
		TotalMemory: sp.TotalMemory,
		DiskTotal:   sp.DiskTotal,
	}
}

// Report is the assembled source data for one exportable document.
type Report struct {
	// ID names the report; exported files are report_<id>.md / .json.
	// A single-run report takes its run's id.
	ID string `json:"id"`
	// Title is the document heading
	Title string `json:"title"`
	// GeneratedAt is when the report was assembled
	GeneratedAt time.Time `json:"generated_at"`
	// Host is the hardware summary, zero when omitted
	Host Host `json:"host"`
	// Runs are the recorded runs the report covers, newest first
	Runs []history.Run `json:"runs"`
	// Totals are the lifetime aggregates at generation time
	Totals history.Totals `json:"totals"`
}

// New assembles a report over the given runs. An empty title falls back
// to "Maintenance Report".
func New(title string, runs []history.Run, totals history.Totals, host Host) *Report {
	if title == "" {
		title = "Maintenance Report"
	}
	id := uuid.NewString()
	if len(runs) == 1 && runs[0].ID != "" {
		id = runs[0].ID
	}
	return &Report{
		ID:          id,
		Title:       title,
		GeneratedAt: time.Now(),
		Host:        host,
		Runs:        runs,
		Totals:      totals,
	}
}
