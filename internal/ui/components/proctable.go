// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/rigtune/internal/sysinfo"
	"github.com/jeranaias/rigtune/internal/ui/styles"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// PROCESS TABLE COMPONENT
// =============================================================================

// ProcTable renders the top-consumers table on the overview pane.
type ProcTable struct {
	theme *styles.Theme
	width int

	procs []sysinfo.Process
	total int
}

// NewProcTable creates a new process table component.
func NewProcTable(theme *styles.Theme) *ProcTable {
	return &ProcTable{
		theme: theme,
		width: 80,
	}
}

// SetWidth sets the rendered width.
func (pt *ProcTable) SetWidth(width int) {
	pt.width = width
}

// SetProcesses replaces the table rows. total is the machine-wide process
// count, shown in the footer.
func (pt *ProcTable) SetProcesses(procs []sysinfo.Process, total int) {
	pt.procs = procs
	pt.total = total
}

// View renders the process table.
func (pt *ProcTable) View() string {
	if len(pt.procs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Padding(1)
		return emptyStyle.Render("No process data")
	}

	nameWidth := pt.nameColumnWidth()

	var b strings.Builder

	// Header row
	header := fmt.Sprintf("%6s  %s  %6s  %10s  %6s",
		"PID",
		padRight("NAME", nameWidth),
		"CPU%",
		"MEM",
		"MEM%",
	)
	b.WriteString(pt.theme.TableHeader.Render(header))
	b.WriteString("\n")

	// Process rows
	for i, proc := range pt.procs {
		b.WriteString(pt.renderRow(proc, nameWidth))
		if i < len(pt.procs)-1 {
			b.WriteString("\n")
		}
	}

	// Footer with machine-wide count
	if pt.total > 0 {
		b.WriteString("\n")
		footer := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(fmt.Sprintf("%d processes total", pt.total))
		b.WriteString(footer)
	}

	return b.String()
}

// renderRow renders a single process row.
func (pt *ProcTable) renderRow(proc sysinfo.Process, nameWidth int) string {
	name := padRight(truncateWidth(proc.Name, nameWidth), nameWidth)

	cpuStr := fmt.Sprintf("%5.1f%%", proc.CPUPercent)
	cpuPart := lipgloss.NewStyle().
		Foreground(styles.MeterColor(proc.CPUPercent)).
		Render(cpuStr)

	memStr := fmt.Sprintf("%10s", util.FormatBytes(int64(proc.Memory)))
	memPctStr := fmt.Sprintf("%5.1f%%", proc.MemoryPercent)
	memPctPart := lipgloss.NewStyle().
		Foreground(styles.MeterColor(proc.MemoryPercent)).
		Render(memPctStr)

	row := fmt.Sprintf("%6d  %s  %s  %s  %s",
		proc.PID,
		name,
		cpuPart,
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(memStr),
		memPctPart,
	)

	return pt.theme.TableRow.Render(row)
}

// nameColumnWidth derives the name column from the total width. The fixed
// columns take 38 cells; names get the rest, floored so SearchIndexer.exe
// style names stay recognizable.
func (pt *ProcTable) nameColumnWidth() int {
	w := pt.width - 38
	if w < 12 {
		w = 12
	}
	if w > 40 {
		w = 40
	}
	return w
}
