// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - `rigtune status`: one-shot system and optimizer
// snapshot without entering the dashboard.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/util"
)

// statusReport is the --json shape of the status command.
type statusReport struct {
	Timestamp time.Time        `json:"timestamp"`
	Specs     sysinfo.Specs    `json:"specs"`
	Snapshot  sysinfo.Snapshot `json:"snapshot"`
	Optimizer optimizer.Status `json:"optimizer"`
}

// HandleStatus samples the system once and prints the result.
func HandleStatus(cfg *config.Config, args Args) error {
	sampler := sysinfo.New(sysinfo.WithTopProcesses(5))
	sampler.RefreshNow()
	snap := sampler.Latest()
	if snap == nil {
		return fmt.Errorf("sampling system state: no snapshot produced")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opt := optimizer.New(cfg)
	optStatus := opt.Status(ctx)

	if args.JSON {
		printJSON(statusReport{
			Timestamp: snap.Timestamp,
			Specs:     sampler.Specs(),
			Snapshot:  *snap,
			Optimizer: optStatus,
		})
		return nil
	}

	specs := sampler.Specs()
	fmt.Printf("rigtune status — %s\n\n", specs.Hostname)
	printKV("OS", fmt.Sprintf("%s/%s", specs.OS, specs.Arch))
	printKV("Cores", specs.LogicalCores)
	printKV("CPU", util.FormatPercent(snap.CPU.Percent))
	printKV("Memory", fmt.Sprintf("%s / %s (%s)",
		util.FormatBytesUint(snap.Memory.Used),
		util.FormatBytesUint(snap.Memory.Total),
		util.FormatPercent(snap.Memory.Percent)))
	printKV("Disk "+snap.Disk.Path, fmt.Sprintf("%s free (%s used)",
		util.FormatBytesUint(snap.Disk.Free),
		util.FormatPercent(snap.Disk.Percent)))
	printKV("Processes", snap.ProcessCount)
	if snap.Uptime > 0 {
		printKV("Uptime", util.FormatDuration(snap.Uptime))
	}

	fmt.Println()
	printKV("Elevated", optStatus.Elevated)
	printKV("Turbo mode", optStatus.TurboActive)
	if optStatus.ActivePlan != "" {
		printKV("Power plan", optStatus.ActivePlan)
	}
	if !optStatus.LastRun.IsZero() {
		printKV("Last action", fmt.Sprintf("%s (%s)",
			optStatus.LastAction, optStatus.LastRun.Format("2006-01-02 15:04")))
	}
	if !snap.Supported {
		fmt.Println()
		printWarning("metrics are unavailable on this platform; values are zero")
	}

	if !args.Quiet && len(snap.Processes) > 0 {
		fmt.Println("\nTop processes:")
		for _, p := range snap.Processes {
			fmt.Printf("  %6d  %-28s %6s cpu  %10s\n",
				p.PID, util.TruncateRunes(p.Name, 28),
				util.FormatPercent(p.CPUPercent), util.FormatBytesUint(p.Memory))
		}
	}
	return nil
}
