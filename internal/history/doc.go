// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists finished maintenance runs.
//
// Every completed cleanup or optimization task becomes one row in a SQLite
// database: what ran, when, how it ended, and what it saved. The dashboard
// and the CLI read it back for the history view, lifetime totals, and
// report export.
//
// # Key Types
//
//   - Store: SQLite-backed run log
//   - Run: one recorded maintenance run
//   - Totals: lifetime files/bytes aggregates
//
// # Usage
//
// Open a store and record a run:
//
//	st, err := history.New(path)
//	id, err := st.Record(ctx, history.Run{
//	    Kind:  "clean: temp files",
//	    State: "succeeded",
//	    Files: 120,
//	    Bytes: 52428800,
//	})
//
// Read it back:
//
//	runs, err := st.List(ctx, 20)
//	totals, err := st.Totals(ctx)
//
// The store knows nothing about the task manager or the engines; callers
// convert their results into Run values.
package history
