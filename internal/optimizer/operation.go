// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// OPERATIONS
// =============================================================================

// Operation names one optimization the engine can run.
type Operation string

const (
	OpRAM      Operation = "ram"
	OpStartup  Operation = "startup"
	OpServices Operation = "services"
	OpNetwork  Operation = "network"
	OpPower    Operation = "power"
	OpBoost    Operation = "boost"
)

// Operations returns every operation in display order.
func Operations() []Operation {
	return []Operation{
		OpRAM,
		OpStartup,
		OpServices,
		OpNetwork,
		OpPower,
		OpBoost,
	}
}

// ParseOperation resolves a CLI argument to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ram", "memory":
		return OpRAM, nil
	case "startup":
		return OpStartup, nil
	case "services", "service":
		return OpServices, nil
	case "network", "net":
		return OpNetwork, nil
	case "power", "powerplan":
		return OpPower, nil
	case "boost", "quickboost":
		return OpBoost, nil
	}
	return "", fmt.Errorf("unknown optimization %q", s)
}

func (o Operation) String() string {
	return string(o)
}

// Title returns the human-readable name used in status lines and reports.
func (o Operation) Title() string {
	switch o {
	case OpRAM:
		return "RAM cleanup"
	case OpStartup:
		return "startup programs"
	case OpServices:
		return "service tuning"
	case OpNetwork:
		return "network tuning"
	case OpPower:
		return "power plan"
	case OpBoost:
		return "quick boost"
	}
	return string(o)
}

// =============================================================================
// RESULTS
// =============================================================================

// RAMStats carries the before/after memory readings around a working-set
// trim. Freed can go negative when other programs allocate during the trim.
type RAMStats struct {
	Total      uint64 `json:"total"`
	BeforeUsed uint64 `json:"before_used"`
	AfterUsed  uint64 `json:"after_used"`
	Freed      int64  `json:"freed"`
	Trimmed    int    `json:"trimmed"`
}

// Result describes the outcome of one optimization. Per-item failures land
// in Errors without failing the run; Success goes false only when the
// operation could not run at all, with Code carrying the machine-readable
// reason ("admin_required", "unsupported_platform"). The task facility and
// the history store treat Code as an opaque string; the UI and CLI interpret
// it.
type Result struct {
	Op       Operation `json:"op"`
	Success  bool      `json:"success"`
	Applied  int       `json:"applied"`
	Changes  []string  `json:"changes,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
	Code     string    `json:"code,omitempty"`
	Canceled bool      `json:"canceled,omitempty"`
	RAM      *RAMStats `json:"ram,omitempty"`
}

// merge folds a sub-operation's outcome into a composite result.
func (r *Result) merge(sub Result) {
	r.Applied += sub.Applied
	r.Changes = append(r.Changes, sub.Changes...)
	r.Errors = append(r.Errors, sub.Errors...)
	if sub.RAM != nil {
		r.RAM = sub.RAM
	}
}

// ProfileSummary aggregates one profile application.
type ProfileSummary struct {
	Profile      Profile  `json:"profile"`
	Results      []Result `json:"results"`
	Applied      int      `json:"applied"`
	RestorePoint bool     `json:"restore_point,omitempty"`
	Canceled     bool     `json:"canceled,omitempty"`
}

// Status is a point-in-time view of the optimizer for the dashboard.
type Status struct {
	Supported   bool      `json:"supported"`
	Elevated    bool      `json:"elevated"`
	TurboActive bool      `json:"turbo_active"`
	ActivePlan  string    `json:"active_plan,omitempty"`
	CPUCount    int       `json:"cpu_count"`
	MemoryTotal uint64    `json:"memory_total"`
	MemoryAvail uint64    `json:"memory_avail"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastAction  string    `json:"last_action,omitempty"`
}
