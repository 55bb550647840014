// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the headless command surface of rigtune.
//
// The package parses os.Args into a Command plus an Args struct, and
// provides one Handle* function per command. Every handler returns an
// error; main.go decides the exit code. The default command (no
// arguments) starts the TUI dashboard, which lives in internal/ui and is
// dispatched from main, not from this package.
//
// Commands:
//
//	rigtune                 dashboard TUI (default)
//	rigtune status          one-shot system snapshot
//	rigtune clean           run cleanup categories headless
//	rigtune optimize        run optimizations headless
//	rigtune config          show and edit settings
//	rigtune history         inspect recorded runs
//	rigtune version, help
//
// Flag parsing is deliberately hand-rolled (ArgParser in args.go): the
// command set is small and the unified parser keeps --flag value,
// --flag=value, bool flags, and positionals consistent across commands
// without a dependency.
package cli
