// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// clean_cmd.go - `rigtune clean`: disk cleanup from the command line.
//
// Subcommands:
//
//	rigtune clean               full cleanup of every enabled category
//	rigtune clean <category>    one category (temp, cache, browser, logs,
//	                            recycle, update)
//	rigtune clean preview       estimate reclaimable space, delete nothing
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/util"
)

// HandleClean runs a cleanup (or preview) and prints the outcome.
func HandleClean(cfg *config.Config, log *logging.Logger, args Args) error {
	cleanCfg := cfg.Cleanup
	if args.DryRun {
		cleanCfg.DryRun = true
	}
	engine := cleaner.New(cleanCfg, cleaner.WithLogger(log))

	sub := strings.ToLower(args.Subcommand)
	if sub == "preview" {
		return cleanPreview(engine, args)
	}

	var (
		name string
		work tasks.Work
	)
	switch sub {
	case "", "all", "full":
		name = "clean: full cleanup"
		work = engine.FullCleanupWork()
	default:
		cat, err := cleaner.ParseCategory(sub)
		if err != nil {
			return UsageError("%v", err)
		}
		name = "clean: " + cat.Title()
		work = engine.CleanWork(cat)
	}

	if !cleanCfg.DryRun {
		if err := Confirm(args, "Delete files matched by this cleanup?"); err != nil {
			return err
		}
	}

	mgr := newManager(cfg, log)
	defer mgr.Shutdown(true, time.Duration(cfg.Tasks.ShutdownTimeoutSecs)*time.Second)

	snap, err := runTask(mgr, name, work, args)
	if err != nil {
		return err
	}
	recordCLIRun(cfg, log, snap)

	switch res := snap.Result.(type) {
	case cleaner.Summary:
		return printCleanSummary(res, args)
	case cleaner.Result:
		return printCleanResult(res, args)
	default:
		if snap.Error != "" {
			return fmt.Errorf("cleanup failed: %s", snap.Error)
		}
		return nil
	}
}

// cleanPreview estimates reclaimable space without touching anything.
func cleanPreview(engine *cleaner.Engine, args Args) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rep, err := engine.Preview(ctx)
	if err != nil {
		return fmt.Errorf("scanning cleanup targets: %w", err)
	}
	if args.JSON {
		printJSON(rep)
		return nil
	}

	fmt.Println("Cleanup preview (nothing deleted):")
	for _, cp := range rep.Categories {
		fmt.Printf("  %-22s %8d files  %10s\n",
			cp.Category.Title(), cp.FileCount, util.FormatBytes(cp.Bytes))
	}
	fmt.Printf("  %-22s %8d files  %10s\n", "total", rep.TotalFiles, util.FormatBytes(rep.TotalBytes))
	return nil
}

func printCleanResult(res cleaner.Result, args Args) error {
	if args.JSON {
		printJSON(res)
		return cleanResultErr(res)
	}
	label := "removed"
	if res.DryRun {
		label = "would remove"
	}
	if res.Success {
		printSuccess("%s: %s %d files, %s", res.Category.Title(), label,
			res.FilesRemoved, util.FormatBytes(res.BytesFreed))
	}
	for _, e := range res.Errors {
		printWarning("%s", e)
	}
	return cleanResultErr(res)
}

func printCleanSummary(sum cleaner.Summary, args Args) error {
	if args.JSON {
		printJSON(sum)
		return cleanSummaryErr(sum)
	}
	label := "removed"
	if sum.DryRun {
		label = "would remove"
	}
	for _, res := range sum.Results {
		if res.Success {
			fmt.Printf("  %-22s %8d files  %10s\n",
				res.Category.Title(), res.FilesRemoved, util.FormatBytes(res.BytesFreed))
			continue
		}
		printWarning("%s: skipped (%s)", res.Category.Title(), refusalText(res.Code))
	}
	if sum.Canceled {
		printWarning("cleanup canceled; partial results above")
	}
	printSuccess("%s %d files, %s total", strings.ToUpper(label[:1])+label[1:],
		sum.TotalFiles, util.FormatBytes(sum.TotalBytes))
	return cleanSummaryErr(sum)
}

// cleanResultErr maps an engine refusal to a CommandError so the process
// exits nonzero; per-file errors alone do not fail the command.
func cleanResultErr(res cleaner.Result) error {
	if res.Success || res.Canceled {
		return nil
	}
	return RefusalError(res.Code)
}

func cleanSummaryErr(sum cleaner.Summary) error {
	for _, res := range sum.Results {
		if !res.Success && !res.Canceled && res.Code != "" {
			return RefusalError(res.Code)
		}
	}
	return nil
}
