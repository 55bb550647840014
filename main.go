// rigtune - Windows PC tuning and cleanup from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/cli"
	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/ui/dashboard"
	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := config.Load()
	if err != nil {
		// A broken settings file must not lock the user out of the tool
		// that fixes it.
		fmt.Fprintf(os.Stderr, "rigtune: using defaults, settings unreadable: %v\n", err)
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	log := setupLogging(cfg, args)
	defer log.Close()

	switch cmd {
	case cli.CmdTUI:
		runTUI(cfg, log)

	case cli.CmdStatus:
		exit(log, cli.HandleStatus(cfg, args))

	case cli.CmdClean:
		exit(log, cli.HandleClean(cfg, log, args))

	case cli.CmdOptimize:
		exit(log, cli.HandleOptimize(cfg, log, args))

	case cli.CmdConfig:
		exit(log, cli.HandleConfig(cfg, log, args))

	case cli.CmdHistory:
		exit(log, cli.HandleHistory(cfg, log, args))

	case cli.CmdVersion:
		cli.PrintVersion(args.JSON)

	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// exit reports a handler error and terminates with its exit code.
func exit(log *logging.Logger, err error) {
	if err != nil {
		log.Error("main", "command failed: %v", err)
		fmt.Fprintf(os.Stderr, "rigtune: %v\n", err)
	}
	log.Close()
	os.Exit(cli.ExitCode(err))
}

// setupLogging opens the file logger per config. --verbose lowers the
// level to debug for this invocation only. Logging failures fall back
// to a no-op logger; the tool still works without a log file.
func setupLogging(cfg *config.Config, args cli.Args) *logging.Logger {
	log, err := logging.New(cfg.Logging.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rigtune: logging disabled: %v\n", err)
		return logging.NewNop()
	}
	level := logging.ParseLevel(cfg.Logging.Level)
	if args.Verbose {
		level = logging.LevelDebug
		log.SetEcho(os.Stderr, logging.LevelDebug)
	}
	log.SetLevel(level)
	logging.SetDefault(log)
	return log
}

// =============================================================================
// DASHBOARD
// =============================================================================

// runTUI assembles the engines, wires their events into the Bubble Tea
// program, and blocks until the dashboard quits.
func runTUI(cfg *config.Config, log *logging.Logger) {
	mgr := tasks.New(
		tasks.WithWorkers(cfg.Tasks.WorkerCount),
		tasks.WithReapInterval(time.Duration(cfg.Tasks.ReapIntervalSecs)*time.Second),
		tasks.WithRetention(time.Duration(cfg.Tasks.RetentionSecs)*time.Second),
		tasks.WithLogger(log),
	)

	sampler := sysinfo.New(
		sysinfo.WithInterval(time.Duration(cfg.Monitoring.UpdateIntervalMS)*time.Millisecond),
		sysinfo.WithHistoryPoints(cfg.Monitoring.HistoryPoints),
		sysinfo.WithTopProcesses(cfg.Monitoring.TopProcesses),
		sysinfo.WithLogger(log),
	)
	sampler.Start()
	defer sampler.Stop()

	dryCfg := cfg.Cleanup
	dryCfg.DryRun = true

	deps := dashboard.Deps{
		Config:     cfg,
		Manager:    mgr,
		Sampler:    sampler,
		Cleaner:    cleaner.New(cfg.Cleanup, cleaner.WithLogger(log)),
		CleanerDry: cleaner.New(dryCfg, cleaner.WithLogger(log)),
		Optimizer:  optimizer.New(cfg, optimizer.WithLogger(log)),
		History:    openHistory(cfg, log),
	}
	if deps.History != nil {
		defer deps.History.Close()
	}

	m := dashboard.New(styles.NewTheme(), deps)
	p := tea.NewProgram(m, tea.WithAltScreen())

	fw := dashboard.NewForwarder(p.Send)
	unsubscribe := mgr.Subscribe(fw)
	defer unsubscribe()
	stopMonitor := sampler.Subscribe(fw.Snapshot)
	defer stopMonitor()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rigtune: dashboard error: %v\n", err)
	}

	// Quit drains in-flight tasks so a half-finished cleanup cannot be
	// abandoned mid-delete without a recorded outcome.
	timeout := time.Duration(cfg.Tasks.ShutdownTimeoutSecs) * time.Second
	if err := mgr.Shutdown(true, timeout); err != nil {
		log.Warn("main", "task shutdown: %v", err)
	}
}

// openHistory opens the run log when history is enabled. The dashboard
// tolerates a nil store; the report tab shows an explanatory message.
func openHistory(cfg *config.Config, log *logging.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path := cfg.History.Path
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			log.Warn("main", "resolving history path: %v", err)
			return nil
		}
		path = p
	}
	store, err := history.New(path, history.WithLogger(log))
	if err != nil {
		log.Warn("main", "history disabled: %v", err)
		return nil
	}
	return store
}
