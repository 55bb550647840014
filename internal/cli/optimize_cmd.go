// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// optimize_cmd.go - `rigtune optimize`: system tuning from the command
// line.
//
// Subcommands:
//
//	rigtune optimize <op>            one operation (ram, startup, services,
//	                                 network, power, boost)
//	rigtune optimize --profile NAME  apply a whole profile (conservative,
//	                                 balanced, maximum)
//	rigtune optimize turbo [on|off]  latch or release turbo mode
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/util"
)

// HandleOptimize runs one optimization, a profile, or turbo mode.
func HandleOptimize(cfg *config.Config, log *logging.Logger, args Args) error {
	engine := optimizer.New(cfg, optimizer.WithLogger(log))

	var (
		name string
		work tasks.Work
	)
	switch {
	case args.Profile != "":
		p, err := optimizer.ParseProfile(args.Profile)
		if err != nil {
			return UsageError("%v (profiles: %s)", err, profileNames())
		}
		name = "optimize: " + p.Title() + " profile"
		work = engine.ProfileWork(p)

	case strings.EqualFold(args.Subcommand, "turbo"):
		return handleTurbo(cfg, log, engine, args)

	case args.Subcommand == "":
		return UsageError("optimize needs an operation (%s), --profile NAME, or turbo", operationNames())

	default:
		op, err := optimizer.ParseOperation(args.Subcommand)
		if err != nil {
			return UsageError("%v (operations: %s)", err, operationNames())
		}
		name = "optimize: " + op.Title()
		work = engine.OperationWork(op)
	}

	if err := Confirm(args, "Apply system changes now?"); err != nil {
		return err
	}

	mgr := newManager(cfg, log)
	defer mgr.Shutdown(true, time.Duration(cfg.Tasks.ShutdownTimeoutSecs)*time.Second)

	snap, err := runTask(mgr, name, work, args)
	if err != nil {
		return err
	}
	recordCLIRun(cfg, log, snap)
	return printOptimizeOutcome(snap, args)
}

// handleTurbo toggles turbo mode. Turbo state is an in-process latch, so
// `off` only resets the power plan; tuned services and parked startup
// entries restore from their exported backups.
func handleTurbo(cfg *config.Config, log *logging.Logger, engine *optimizer.Engine, args Args) error {
	mode := strings.ToLower(NewArgParser(args.Raw).Positional(1))
	switch mode {
	case "", "on":
		if err := Confirm(args, "Activate turbo mode (maximum profile)?"); err != nil {
			return err
		}
		mgr := newManager(cfg, log)
		defer mgr.Shutdown(true, time.Duration(cfg.Tasks.ShutdownTimeoutSecs)*time.Second)

		snap, err := runTask(mgr, "optimize: turbo mode", engine.TurboWork(), args)
		if err != nil {
			return err
		}
		recordCLIRun(cfg, log, snap)
		return printOptimizeOutcome(snap, args)

	case "off":
		res := engine.DeactivateTurbo(nil)
		if args.JSON {
			printJSON(res)
			return nil
		}
		printSuccess("turbo mode off; power plan restored to balanced")
		return nil

	default:
		return UsageError("optimize turbo takes on or off, got %q", mode)
	}
}

// printOptimizeOutcome renders the finished task's engine result.
func printOptimizeOutcome(snap tasks.Snapshot, args Args) error {
	if snap.State == tasks.StateFailed {
		return fmt.Errorf("optimization failed: %s", snap.Error)
	}

	switch res := snap.Result.(type) {
	case optimizer.Result:
		return printOptimizeResult(res, args)
	case optimizer.ProfileSummary:
		if args.JSON {
			printJSON(res)
		} else {
			for _, r := range res.Results {
				reportOptimizeLine(r)
			}
			if res.RestorePoint {
				fmt.Println("  restore point created")
			}
			if res.Canceled {
				printWarning("profile canceled; changes above were applied before the stop")
			} else {
				printSuccess("%s profile applied: %d changes", res.Profile.Title(), res.Applied)
			}
		}
		return nil
	default:
		if snap.Error != "" {
			return fmt.Errorf("optimization failed: %s", snap.Error)
		}
		return nil
	}
}

func printOptimizeResult(res optimizer.Result, args Args) error {
	if args.JSON {
		printJSON(res)
	} else {
		reportOptimizeLine(res)
	}
	if !res.Success && !res.Canceled {
		return RefusalError(res.Code)
	}
	return nil
}

func reportOptimizeLine(res optimizer.Result) {
	if !res.Success {
		printWarning("%s: skipped (%s)", res.Op.Title(), refusalText(res.Code))
		return
	}
	detail := fmt.Sprintf("%d changes", res.Applied)
	if res.RAM != nil && res.RAM.Freed > 0 {
		detail = util.FormatBytes(res.RAM.Freed) + " freed"
	}
	printSuccess("%s: %s", res.Op.Title(), detail)
	for _, c := range res.Changes {
		fmt.Println("    " + c)
	}
	for _, e := range res.Errors {
		printWarning("%s", e)
	}
}

func operationNames() string {
	ops := optimizer.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return strings.Join(names, ", ")
}

func profileNames() string {
	ps := optimizer.Profiles()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
