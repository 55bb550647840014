// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command-line parsing for rigtune.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdStatus
	CmdClean
	CmdOptimize
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Yes     bool // skip interactive confirmation
	DryRun  bool

	// Command-specific
	Subcommand string
	Profile    string

	// Raw args remaining after the command word and global flags
	Raw []string
}

const usageText = `rigtune - Windows PC tuning and cleanup from the terminal

Rigtune shows live system metrics and runs one-shot maintenance actions:
temp and cache cleanup, startup trimming, service tuning, network tweaks,
and power plans. Destructive operations run as cancellable background
tasks and are recorded to a local run history.

Usage:
  rigtune                       Start the dashboard TUI (default)
  rigtune status                One-shot system snapshot
  rigtune clean [CATEGORY|all]  Run cleanup headless
  rigtune optimize [OPERATION]  Run an optimization headless
  rigtune config [subcommand]   Show and edit settings
  rigtune history [subcommand]  Inspect recorded runs
  rigtune version               Print version
  rigtune help                  This text

Clean:
  rigtune clean                 Every category enabled in the config
  rigtune clean temp            Categories: temp, cache, browser, logs,
                                recycle, update
    --dry-run                   Report what would be removed, delete nothing
    --yes, -y                   Skip the confirmation prompt

Optimize:
  rigtune optimize ram          Operations: ram, startup, services,
                                network, power, boost
  rigtune optimize --profile gamer
                                Apply a whole profile (gamer, balanced,
                                maximum); turbo on/off toggles turbo mode
    --yes, -y                   Skip the confirmation prompt

Config:
  rigtune config show           Print the effective configuration
  rigtune config get KEY        Read one dotted key (e.g. tasks.worker_count)
  rigtune config set KEY VALUE  Write one dotted key and save
  rigtune config reset          Restore defaults (requires --yes)
  rigtune config export FILE    Write the config to FILE (.toml or .json)
  rigtune config import FILE    Load, validate, and adopt FILE
  rigtune config backup         Snapshot the settings with a digest
  rigtune config restore [NAME] Restore the newest (or named) snapshot
  rigtune config path           Print the config file location

History:
  rigtune history list          Recent runs (--limit N, default 20)
  rigtune history totals        Lifetime files and bytes reclaimed
  rigtune history prune         Drop runs older than the retention window
  rigtune history export        Write the maintenance report
    --format md|json            Report format (default: md)

Global flags:
  --json                        Machine-readable output where supported
  --quiet, -q                   Progress lines off
  --verbose, -v                 Debug logging to stderr
  --dry-run                     Simulate destructive operations
  --yes, -y                     Assume yes on confirmations

Examples:
  rigtune clean all --dry-run
  rigtune clean temp --yes
  rigtune optimize ram
  rigtune optimize --profile maximum --yes
  rigtune config set monitoring.update_interval_ms 500
  rigtune history list --limit 50 --json

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(jsonOut bool) {
	if jsonOut {
		printJSON(map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		})
		return
	}
	fmt.Printf("rigtune version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is Parse over an explicit slice, for tests.
func parseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	// No command word: the TUI is the product.
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsed.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui", "dashboard":
		return CmdTUI, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "clean", "cleanup":
		return CmdClean, parsed

	case "optimize", "opt", "boost":
		if cmd == "boost" {
			// "rigtune boost" is shorthand for the quick-boost operation.
			parsed.Subcommand = "boost"
			parsed.Raw = append([]string{"boost"}, remaining...)
		}
		return CmdOptimize, parsed

	case "config", "cfg", "settings":
		return CmdConfig, parsed

	case "history", "runs":
		return CmdHistory, parsed

	case "version", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown command: print usage with a suggestion rather than
		// guessing.
		fmt.Fprintf(os.Stderr, "rigtune: unknown command %q\n", cmd)
		if s := suggestCommand(cmd); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean %q?\n", s)
		}
		fmt.Fprintln(os.Stderr, "Run 'rigtune help' for usage.")
		os.Exit(ExitUsageError)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "-y", "--yes":
			parsed.Yes = true
		case "--dry-run":
			parsed.DryRun = true
		case "--profile":
			if i+1 < len(args) {
				parsed.Profile = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--profile=") {
				parsed.Profile = strings.TrimPrefix(arg, "--profile=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsed
}

// commandWords are the accepted first arguments, for typo suggestions.
var commandWords = []string{
	"status", "clean", "optimize", "config", "history", "version", "help",
}

// suggestCommand returns the closest command word within an edit distance
// of 2, or "".
func suggestCommand(input string) string {
	input = strings.ToLower(input)
	best := ""
	bestDist := 3
	for _, w := range commandWords {
		if d := editDistance(input, w); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between two short words.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minOf(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func minOf(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
