// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - `rigtune history`: inspect the recorded run log.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/report"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/util"
)

const historyTimeout = 10 * time.Second

// HandleHistory dispatches the history subcommands.
func HandleHistory(cfg *config.Config, log *logging.Logger, args Args) error {
	store := openHistory(cfg, log)
	if store == nil {
		return NotFoundError("run history is disabled or unavailable; enable it with 'rigtune config set history.enabled true'")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	parser := NewArgParser(args.Raw)
	switch strings.ToLower(args.Subcommand) {
	case "", "list":
		return historyList(ctx, store, parser, args)
	case "totals":
		return historyTotals(ctx, store, args)
	case "prune":
		return historyPrune(ctx, store, cfg, args)
	case "export":
		return historyExport(ctx, store, parser, args)
	default:
		return UsageError("unknown history subcommand %q (list, totals, prune, export)", args.Subcommand)
	}
}

func historyList(ctx context.Context, store *history.Store, parser *ArgParser, args Args) error {
	limit := parser.FlagIntOrDefault("limit", 20)
	runs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if args.JSON {
		printJSON(runs)
		return nil
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs yet.")
		return nil
	}
	fmt.Printf("%-20s %-30s %-10s %8s %10s\n", "FINISHED", "KIND", "STATE", "FILES", "BYTES")
	for _, run := range runs {
		fmt.Printf("%-20s %-30s %-10s %8d %10s\n",
			run.FinishedAt.Format("2006-01-02 15:04:05"),
			util.TruncateRunes(run.Kind, 30),
			run.State, run.Files, util.FormatBytes(run.Bytes))
	}
	return nil
}

func historyTotals(ctx context.Context, store *history.Store, args Args) error {
	totals, err := store.Totals(ctx)
	if err != nil {
		return err
	}
	if args.JSON {
		printJSON(totals)
		return nil
	}
	printKV("Runs recorded", totals.Runs)
	printKV("Files removed", totals.Files)
	printKV("Space reclaimed", util.FormatBytes(totals.Bytes))
	return nil
}

func historyPrune(ctx context.Context, store *history.Store, cfg *config.Config, args Args) error {
	days := cfg.History.RetentionDays
	if days <= 0 {
		days = 90
	}
	if err := Confirm(args, fmt.Sprintf("Delete runs older than %d days?", days)); err != nil {
		return err
	}
	n, err := store.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	if args.JSON {
		printJSON(map[string]int64{"pruned": n})
		return nil
	}
	printSuccess("pruned %d runs older than %d days", n, days)
	return nil
}

// historyExport writes the maintenance report next to the history
// database and prints its path.
func historyExport(ctx context.Context, store *history.Store, parser *ArgParser, args Args) error {
	runs, err := store.List(ctx, parser.FlagIntOrDefault("limit", 100))
	if err != nil {
		return err
	}
	totals, err := store.Totals(ctx)
	if err != nil {
		return err
	}

	host := report.HostFromSpecs(sysinfo.New().Specs())
	r := report.New("rigtune maintenance report", runs, totals, host)

	opts := report.DefaultOptions()
	var path string
	switch format := strings.ToLower(parser.FlagOrDefault("format", "md")); format {
	case "md", "markdown":
		path, err = report.ExportMarkdown(r, opts)
	case "json":
		path, err = report.ExportJSON(r, opts)
	default:
		return UsageError("history export supports md and json, got %q", format)
	}
	if err != nil {
		return err
	}
	if args.JSON {
		printJSON(map[string]string{"path": path})
		return nil
	}
	printSuccess("report written to %s", path)
	return nil
}
