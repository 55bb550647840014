// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report builds and exports maintenance run reports.
//
// A report collects one or more recorded runs, lifetime totals, and a
// hardware summary into a document. The Markdown form is what the TUI
// renders (through glamour) and what most users share; the JSON form is
// the machine-readable twin.
//
// # Key Types
//
//   - Report: assembled source data for one document
//   - Exporter: format-specific renderer (Markdown, JSON)
//   - Options: export configuration
//
// # Usage
//
// Build and export a report:
//
//	rep := report.New("Quick boost", runs, totals, host)
//	path, err := report.ExportMarkdown(rep, nil)
//
// Render for the terminal instead of a file:
//
//	content, err := report.NewMarkdownExporter(nil).Export(rep)
//
// Exported files land under ~/.rigtune/reports/, named by the report id
// (the run id when the report covers a single run).
package report
