// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report builds and exports maintenance run reports.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders reports as Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export renders a report as Markdown.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report is nil")
	}
	if len(r.Runs) == 0 {
		return nil, fmt.Errorf("report has no runs")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(r.Title)))
		sb.WriteString(fmt.Sprintf("id: %s\n", r.ID))
		sb.WriteString(fmt.Sprintf("date: %s\n", r.GeneratedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("runs: %d\n", len(r.Runs)))
		sb.WriteString("generator: rigtune\n")
		sb.WriteString("---\n\n")
	}

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(r.Title)))

	// System section
	if e.options.IncludeMetadata && r.Host != (Host{}) {
		sb.WriteString("## System\n\n")
		sb.WriteString(fmt.Sprintf("- **Host**: %s (%s/%s)\n", r.Host.Hostname, r.Host.OS, r.Host.Arch))
		if r.Host.Cores > 0 {
			sb.WriteString(fmt.Sprintf("- **CPU**: %d logical cores\n", r.Host.Cores))
		}
		if r.Host.TotalMemory > 0 {
			sb.WriteString(fmt.Sprintf("- **Memory**: %s\n", util.FormatBytes(int64(r.Host.TotalMemory))))
		}
		if r.Host.DiskTotal > 0 {
			sb.WriteString(fmt.Sprintf("- **Disk**: %s\n", util.FormatBytes(int64(r.Host.DiskTotal))))
		}
		sb.WriteString("\n")
	}

	// Runs
	sb.WriteString("## Runs\n\n")

	// Summary table when the report spans several runs
	if len(r.Runs) > 1 {
		sb.WriteString("| Run | State | Files | Space |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, run := range r.Runs {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
				escapeMarkdown(run.Kind), run.State, run.Files, util.FormatBytes(run.Bytes)))
		}
		sb.WriteString("\n")
	}

	for i, run := range r.Runs {
		e.writeRun(&sb, run)
		if i < len(r.Runs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Lifetime totals
	if e.options.IncludeMetadata && r.Totals != (history.Totals{}) {
		sb.WriteString("## Lifetime Totals\n\n")
		sb.WriteString(fmt.Sprintf("- **Runs recorded**: %d\n", r.Totals.Runs))
		sb.WriteString(fmt.Sprintf("- **Files removed**: %d\n", r.Totals.Files))
		sb.WriteString(fmt.Sprintf("- **Space reclaimed**: %s\n", util.FormatBytes(r.Totals.Bytes)))
		sb.WriteString("\n")
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("*Generated by rigtune on %s*\n",
		r.GeneratedAt.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// writeRun renders one run as a Markdown section.
func (e *MarkdownExporter) writeRun(sb *strings.Builder, run history.Run) {
	if !run.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("### %s %s <sub>%s</sub>\n\n",
			stateBadge(run.State),
			escapeMarkdown(run.Kind),
			formatShortTimestamp(run.FinishedAt)))
	} else {
		sb.WriteString(fmt.Sprintf("### %s %s\n\n", stateBadge(run.State), escapeMarkdown(run.Kind)))
	}

	sb.WriteString(fmt.Sprintf("- **State**: %s\n", run.State))
	if !run.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Started**: %s\n", formatTimestamp(run.StartedAt)))
	}
	if !run.FinishedAt.IsZero() {
		line := fmt.Sprintf("- **Finished**: %s", formatTimestamp(run.FinishedAt))
		if !run.StartedAt.IsZero() {
			line += fmt.Sprintf(" (took %s)", formatDuration(run.FinishedAt.Sub(run.StartedAt)))
		}
		sb.WriteString(line + "\n")
	}
	if run.Files > 0 {
		sb.WriteString(fmt.Sprintf("- **Files removed**: %d\n", run.Files))
	}
	if run.Bytes > 0 {
		sb.WriteString(fmt.Sprintf("- **Space reclaimed**: %s\n", util.FormatBytes(run.Bytes)))
	}
	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("- **Error**: %s\n", escapeMarkdown(run.Error)))
	}
	sb.WriteString("\n")

	if e.options.IncludeDetail && len(run.Detail) > 0 {
		sb.WriteString("```json\n")
		sb.WriteString(indentJSON(run.Detail))
		sb.WriteString("\n```\n\n")
	}
}

// indentJSON re-indents a raw detail payload, falling back to the raw
// bytes if they are not valid JSON.
func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
