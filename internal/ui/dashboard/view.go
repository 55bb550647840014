// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
//
// This file contains all rendering logic: the main View composition
// (header + tab bar + tab content + status bar), the per-tab renderers,
// and the help and toast overlays. Nothing here mutates the model.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigtune/internal/ui/components"
	"github.com/jeranaias/rigtune/internal/ui/styles"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete dashboard.
// Layout: header (boxed, 4 lines) + tab bar (1 line) + tab content + status
// bar (1 line). The content region absorbs whatever height remains so the
// status bar always sits on the last row.
func (m Model) View() string {
	if m.quitting {
		return "Stopping background tasks...\n"
	}
	if !m.ready {
		return "Loading..."
	}

	// The confirmation dialog replaces the whole screen while visible; it
	// centers itself with lipgloss.Place.
	if m.confirm.IsVisible() {
		return m.confirm.View()
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.header.View()
	tabBar := m.renderTabBar()
	status := m.statusBar.View()

	contentHeight := m.height -
		lipgloss.Height(header) -
		lipgloss.Height(tabBar) -
		lipgloss.Height(status)
	if contentHeight < 1 {
		contentHeight = 1
	}

	content := m.renderContent(contentHeight)

	// Force the content region to the computed height so the stack fills
	// the terminal exactly.
	content = lipgloss.NewStyle().
		Height(contentHeight).
		MaxHeight(contentHeight).
		Width(m.width).
		Render(content)

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		tabBar,
		content,
		status,
	)

	// Non-blocking result toasts overlay the bottom-right corner.
	if m.toasts.HasToasts() {
		stack := componentsToastStack(m.toasts.GetToasts(), m.width)
		return overlayBottomRight(baseView, stack, m.width, m.height)
	}

	return baseView
}

// componentsToastStack renders the toast pile without the full-screen
// placement RenderToastStack does; the overlay positions it itself.
func componentsToastStack(toasts []components.Toast, width int) string {
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, components.RenderToast(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// =============================================================================
// TAB BAR
// =============================================================================

// renderTabBar renders the tab strip with the active tab highlighted and
// number hints for direct jumps.
func (m Model) renderTabBar() string {
	var cells []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d:%s", int(t)+1, t.Title())
		if t == m.tab {
			cells = append(cells, m.theme.TabActive.Render(label))
		} else {
			cells = append(cells, m.theme.Tab.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, cells...)

	// Spinner on the right while background work runs.
	if m.spinner.IsActive() {
		spin := m.spinner.View()
		gap := m.width - lipgloss.Width(bar) - lipgloss.Width(spin) - 1
		if gap > 0 {
			bar += strings.Repeat(" ", gap) + spin
		}
	}
	return bar
}

// =============================================================================
// TAB CONTENT
// =============================================================================

func (m Model) renderContent(height int) string {
	switch m.tab {
	case TabTasks:
		return m.taskPanel.View()
	case TabCleanup:
		return m.renderCleanup()
	case TabOptimize:
		return m.renderOptimize()
	case TabReport:
		return m.renderReport(height)
	default:
		return m.renderOverview()
	}
}

// -----------------------------------------------------------------------------
// Overview
// -----------------------------------------------------------------------------

// sparkWidth is the history strip width under each meter.
const sparkWidth = 40

// renderOverview renders the live meters, their history strips, the
// hardware summary, and the top-process table.
func (m Model) renderOverview() string {
	var b strings.Builder

	if m.snapshot == nil {
		b.WriteString(m.theme.PanelHint.Render("Waiting for the first sample..."))
		b.WriteString("\n")
	} else if !m.snapshot.Supported {
		b.WriteString(m.theme.PanelHint.Render(
			"Live metrics are only available on Windows."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.cpuMeter.View())
		b.WriteString("\n")
		b.WriteString(m.renderSparkRow(m.cpuHist))
		b.WriteString("\n")

		b.WriteString(m.ramMeter.View())
		b.WriteString("\n")
		b.WriteString(m.renderSparkRow(m.ramHist))
		b.WriteString("\n")

		b.WriteString(m.diskMeter.View())
		b.WriteString("\n")
		b.WriteString(m.renderSparkRow(m.diskHist))
		b.WriteString("\n\n")

		if m.snapshot.Uptime > 0 {
			b.WriteString(m.theme.StatsLabel.Render("Uptime "))
			b.WriteString(m.theme.StatsValue.Render(util.FormatDuration(m.snapshot.Uptime)))
			b.WriteString("\n")
		}
	}

	if specs := m.renderSpecsLine(); specs != "" {
		b.WriteString(specs)
		b.WriteString("\n")
	}

	if m.snapshot != nil && m.snapshot.Supported {
		b.WriteString("\n")
		b.WriteString(m.procTable.View())
	}

	return b.String()
}

// renderSparkRow renders one indented history strip, blank when no samples
// have accumulated yet.
func (m Model) renderSparkRow(hist []float64) string {
	if len(hist) == 0 {
		return ""
	}
	spark := components.RenderSparkline(hist, sparkWidth)
	return "  " + m.theme.MeterBar.Render(spark)
}

// renderSpecsLine renders the static hardware summary.
func (m Model) renderSpecsLine() string {
	s := m.specs
	if s.OS == "" && s.LogicalCores == 0 {
		return ""
	}
	parts := []string{}
	if s.OS != "" {
		parts = append(parts, s.OS+"/"+s.Arch)
	}
	if s.LogicalCores > 0 {
		parts = append(parts, fmt.Sprintf("%d cores", s.LogicalCores))
	}
	if s.TotalMemory > 0 {
		parts = append(parts, util.FormatBytesUint(s.TotalMemory)+" RAM")
	}
	if s.DiskTotal > 0 {
		parts = append(parts, util.FormatBytesUint(s.DiskTotal)+" disk")
	}
	return m.theme.TableCellMuted.Render(strings.Join(parts, "  |  "))
}

// -----------------------------------------------------------------------------
// Cleanup
// -----------------------------------------------------------------------------

// renderCleanup renders the category menu with the dry-run preview figures
// beside each row.
func (m Model) renderCleanup() string {
	var b strings.Builder

	title := "Cleanup"
	if m.dryRun {
		title += "  (dry-run: nothing will be deleted)"
	}
	b.WriteString(m.theme.PanelTitle.Render(title))
	b.WriteString("\n\n")

	for i, entry := range m.cleanRows {
		cursor := "  "
		rowStyle := m.theme.TableRow
		if i == m.cleanCursor {
			cursor = "> "
			rowStyle = m.theme.TableRowSelected
		}

		line := cursor + padLabel(entry.title(), 42) + m.previewFigure(entry)
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.previewErr != "" {
		b.WriteString(styles.RenderWarning("Preview unavailable: " + m.previewErr))
		b.WriteString("\n")
	} else if m.preview != nil {
		total := fmt.Sprintf("Estimated total: %d files, %s",
			m.preview.TotalFiles, util.FormatBytes(m.preview.TotalBytes))
		b.WriteString(m.theme.StatsValue.Render(total))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.PanelHint.Render("Enter run  d dry-run  r refresh estimate"))
	return b.String()
}

// previewFigure formats the estimate column for one menu row.
func (m Model) previewFigure(entry cleanupEntry) string {
	if m.preview == nil {
		return ""
	}
	if entry.all {
		return fmt.Sprintf("~%d files, %s",
			m.preview.TotalFiles, util.FormatBytes(m.preview.TotalBytes))
	}
	for _, cp := range m.preview.Categories {
		if cp.Category == entry.cat {
			if cp.FileCount == 0 && cp.Bytes == 0 {
				return "clean"
			}
			return fmt.Sprintf("~%d files, %s",
				cp.FileCount, util.FormatBytes(cp.Bytes))
		}
	}
	return ""
}

// -----------------------------------------------------------------------------
// Optimize
// -----------------------------------------------------------------------------

// renderOptimize renders the operation menu and the engine status block.
func (m Model) renderOptimize() string {
	var b strings.Builder

	b.WriteString(m.theme.PanelTitle.Render("Optimize"))
	b.WriteString("\n\n")

	for i, entry := range m.optimRows {
		cursor := "  "
		rowStyle := m.theme.TableRow
		if i == m.optimCursor {
			cursor = "> "
			rowStyle = m.theme.TableRowSelected
		}

		label := entry.title()
		if entry.kind == entryTurbo && m.optimStatus != nil && m.optimStatus.TurboActive {
			label += "  [ACTIVE]"
		}
		b.WriteString(rowStyle.Render(cursor + label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderOptimizerStatus())
	b.WriteString("\n")
	b.WriteString(m.theme.PanelHint.Render("Enter run selected  r refresh status"))
	return b.String()
}

// renderOptimizerStatus renders the status block under the menu.
func (m Model) renderOptimizerStatus() string {
	s := m.optimStatus
	if s == nil {
		return m.theme.PanelHint.Render("Reading optimizer status...")
	}

	var b strings.Builder
	if !s.Supported {
		b.WriteString(styles.RenderWarning("Optimizations are only supported on Windows."))
		b.WriteString("\n")
	} else if !s.Elevated {
		b.WriteString(styles.RenderWarning("Not elevated: most tweaks will ask for administrator rights."))
		b.WriteString("\n")
	}

	if s.ActivePlan != "" {
		b.WriteString(m.theme.StatsLabel.Render("Power plan  "))
		b.WriteString(m.theme.StatsValue.Render(s.ActivePlan))
		b.WriteString("\n")
	}
	if s.MemoryTotal > 0 {
		b.WriteString(m.theme.StatsLabel.Render("Memory      "))
		b.WriteString(m.theme.StatsValue.Render(fmt.Sprintf("%s free of %s",
			util.FormatBytesUint(s.MemoryAvail), util.FormatBytesUint(s.MemoryTotal))))
		b.WriteString("\n")
	}
	if !s.LastRun.IsZero() {
		b.WriteString(m.theme.StatsLabel.Render("Last run    "))
		last := s.LastRun.Format("15:04:05")
		if s.LastAction != "" {
			last = s.LastAction + " at " + last
		}
		b.WriteString(m.theme.StatsValue.Render(last))
		b.WriteString("\n")
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Report
// -----------------------------------------------------------------------------

// renderReport renders the glamour viewport, or the build error.
func (m Model) renderReport(height int) string {
	if m.reportErr != "" {
		box := m.theme.ErrorBox.Render(
			m.theme.ErrorTitle.Render("Report unavailable") + "\n" +
				m.theme.ErrorMessage.Render(m.reportErr))
		return box
	}
	if !m.reportReady {
		return m.theme.PanelHint.Render("Building report...")
	}

	m.reportView.Height = height - 1
	view := m.reportView.View()

	scroll := fmt.Sprintf("%3.0f%%  e export", m.reportView.ScrollPercent()*100)
	return view + "\n" + m.theme.PanelHint.Render(scroll)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders the context-filtered key bindings, centered.
// Only the bindings active on the tab the user came from are shown.
func (m Model) renderHelpOverlay() string {
	ctx := contextForTab(m.tab)
	grouped := GetHelpItemsByCategory(ctx)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keys available now (%s)\n", string(ctx)))
	sb.WriteString(strings.Repeat("-", 35) + "\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	categoryStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	for _, category := range GetCategoryOrder() {
		items, ok := grouped[category]
		if !ok || len(items) == 0 {
			continue
		}
		sb.WriteString(categoryStyle.Render(string(category)) + "\n")
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-14s", item.Key)),
				descStyle.Render(item.Desc)))
		}
		sb.WriteString("\n")
	}

	closeStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	sb.WriteString(closeStyle.Render("Press ? or Esc to close"))

	box := m.theme.Panel.
		Width(minInt(55, maxInt(m.width-4, 40))).
		Render(sb.String())

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

// =============================================================================
// OVERLAY HELPERS
// =============================================================================

// overlayBottomRight lays the overlay block over the base view's
// bottom-right corner, leaving the last row (the status bar) clear.
func overlayBottomRight(baseView, overlay string, width, height int) string {
	if overlay == "" {
		return baseView
	}

	baseLines := strings.Split(baseView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	startRow := height - len(overlayLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		idx := i - startRow
		if idx < 0 || idx >= len(overlayLines) || lipgloss.Width(overlayLines[idx]) == 0 {
			result[i] = baseLine
			continue
		}

		over := overlayLines[idx]
		overWidth := lipgloss.Width(over)
		cut := width - overWidth - 1
		if cut < 0 {
			cut = 0
		}

		if lipgloss.Width(baseLine) > cut {
			baseLine = truncateVisible(baseLine, cut)
		}
		if pad := cut - lipgloss.Width(baseLine); pad > 0 {
			baseLine += strings.Repeat(" ", pad)
		}
		result[i] = baseLine + over
	}

	return strings.Join(result, "\n")
}

// truncateVisible cuts a string at a visible-cell budget. Styled sequences
// count as zero width through lipgloss.Width, so colored lines survive.
func truncateVisible(s string, width int) string {
	if width <= 0 {
		return ""
	}
	current := 0
	var b strings.Builder
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if current+w > width {
			break
		}
		b.WriteRune(r)
		current += w
	}
	return b.String()
}

// padLabel pads a menu label to a fixed column, truncating when the
// terminal is too narrow for the estimate column.
func padLabel(s string, width int) string {
	if lipgloss.Width(s) > width-2 {
		s = truncateVisible(s, width-2)
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
