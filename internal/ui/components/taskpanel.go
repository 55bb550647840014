// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// TASK PANEL COMPONENT
// =============================================================================

// TaskPanel renders the background task registry for the Tasks tab.
// It works purely on snapshots; the panel never touches the manager.
type TaskPanel struct {
	theme  *styles.Theme
	width  int
	height int

	snapshots []tasks.Snapshot
	selected  int

	// Filter options
	showSucceeded bool
	showFailed    bool
	showCanceled  bool
}

// NewTaskPanel creates a new task panel component.
func NewTaskPanel(theme *styles.Theme) *TaskPanel {
	return &TaskPanel{
		theme:         theme,
		showSucceeded: true,
		showFailed:    true,
		showCanceled:  false,
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetSize sets the component dimensions.
func (tp *TaskPanel) SetSize(width, height int) {
	tp.width = width
	tp.height = height
}

// SetTasks replaces the snapshot list and clamps the selection.
func (tp *TaskPanel) SetTasks(snaps []tasks.Snapshot) {
	tp.snapshots = snaps
	if n := len(tp.visible()); tp.selected >= n {
		tp.selected = n - 1
	}
	if tp.selected < 0 {
		tp.selected = 0
	}
}

// SetShowSucceeded sets whether to show succeeded tasks.
func (tp *TaskPanel) SetShowSucceeded(show bool) {
	tp.showSucceeded = show
}

// SetShowFailed sets whether to show failed tasks.
func (tp *TaskPanel) SetShowFailed(show bool) {
	tp.showFailed = show
}

// SetShowCanceled sets whether to show canceled tasks.
func (tp *TaskPanel) SetShowCanceled(show bool) {
	tp.showCanceled = show
}

// =============================================================================
// SELECTION
// =============================================================================

// MoveUp moves the selection one row up.
func (tp *TaskPanel) MoveUp() {
	if tp.selected > 0 {
		tp.selected--
	}
}

// MoveDown moves the selection one row down.
func (tp *TaskPanel) MoveDown() {
	if tp.selected < len(tp.visible())-1 {
		tp.selected++
	}
}

// Selected returns the snapshot under the cursor.
func (tp *TaskPanel) Selected() (tasks.Snapshot, bool) {
	vis := tp.visible()
	if tp.selected < 0 || tp.selected >= len(vis) {
		return tasks.Snapshot{}, false
	}
	return vis[tp.selected], true
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the task panel.
func (tp *TaskPanel) View() string {
	if len(tp.snapshots) == 0 {
		return tp.renderEmpty("No background tasks")
	}

	vis := tp.visible()
	if len(vis) == 0 {
		return tp.renderEmpty("No tasks match current filter")
	}

	var b strings.Builder

	// Header
	b.WriteString(tp.renderHeader())
	b.WriteString("\n\n")

	// Task rows
	for i, snap := range vis {
		b.WriteString(tp.renderTask(snap, i == tp.selected))
		if i < len(vis)-1 {
			b.WriteString("\n")
		}
	}

	// Footer with summary
	b.WriteString("\n\n")
	b.WriteString(tp.renderFooter())

	return b.String()
}

// visible returns the snapshots that pass the current filter.
func (tp *TaskPanel) visible() []tasks.Snapshot {
	var out []tasks.Snapshot
	for _, snap := range tp.snapshots {
		if tp.shouldShow(snap) {
			out = append(out, snap)
		}
	}
	return out
}

// shouldShow returns true if the snapshot should be displayed based on filters.
func (tp *TaskPanel) shouldShow(snap tasks.Snapshot) bool {
	switch snap.State {
	case tasks.StateSucceeded:
		return tp.showSucceeded
	case tasks.StateFailed:
		return tp.showFailed
	case tasks.StateCanceled:
		return tp.showCanceled
	default:
		return true // Always show running and pending
	}
}

// renderEmpty renders the empty state.
func (tp *TaskPanel) renderEmpty(message string) string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Padding(2).
		Width(tp.width).
		Align(lipgloss.Center)

	return emptyStyle.Render(message)
}

// renderHeader renders the task panel header.
func (tp *TaskPanel) renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Overlay).
		Width(tp.width).
		Padding(0, 1)

	return headerStyle.Render("Background Tasks")
}

// renderTask renders a single task row.
func (tp *TaskPanel) renderTask(snap tasks.Snapshot, selected bool) string {
	// Task ID (short)
	id := snap.ID
	if len(id) > 8 {
		id = id[:8]
	}

	// Status icon and color
	icon, color := statusIcon(snap.State)

	// Duration
	duration := formatTaskDuration(snap.Duration())

	// Progress and phase (for running tasks)
	progress := ""
	if snap.State == tasks.StateRunning {
		progress = fmt.Sprintf("[%d%%]", snap.Progress)
		if snap.StatusText != "" {
			progress += " " + truncateWidth(snap.StatusText, 30)
		}
	}

	// Name budget keeps long cleanup names from pushing the duration off screen
	name := truncateWidth(snap.Name, 32)

	// Build row
	row := fmt.Sprintf("%s %s  %s  %s %s",
		lipgloss.NewStyle().Foreground(color).Render(icon),
		lipgloss.NewStyle().Foreground(styles.TextMuted).Render(padRight(id, 8)),
		name,
		progress,
		lipgloss.NewStyle().Foreground(styles.TextMuted).Render(duration),
	)

	// Wrap in styled container
	rowStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Width(tp.width)
	if selected {
		rowStyle = rowStyle.Background(styles.SelectionBg).Bold(true)
	}

	return rowStyle.Render(row)
}

// statusIcon returns the icon and color for a task state (ASCII-compatible).
func statusIcon(state tasks.State) (string, lipgloss.Color) {
	switch state {
	case tasks.StatePending:
		return "[ ]", lipgloss.Color("11") // Yellow
	case tasks.StateRunning:
		return "[>]", lipgloss.Color("14") // Cyan
	case tasks.StateSucceeded:
		return "[OK]", lipgloss.Color("10") // Green
	case tasks.StateFailed:
		return "[X]", lipgloss.Color("9") // Red
	case tasks.StateCanceled:
		return "[--]", lipgloss.Color("240") // Gray
	default:
		return "[?]", lipgloss.Color("240")
	}
}

// renderFooter renders the footer with registry summary.
func (tp *TaskPanel) renderFooter() string {
	var pending, running, succeeded, failed, canceled int
	for _, snap := range tp.snapshots {
		switch snap.State {
		case tasks.StatePending:
			pending++
		case tasks.StateRunning:
			running++
		case tasks.StateSucceeded:
			succeeded++
		case tasks.StateFailed:
			failed++
		case tasks.StateCanceled:
			canceled++
		}
	}

	parts := []string{
		fmt.Sprintf("%d running", running),
		fmt.Sprintf("%d pending", pending),
		fmt.Sprintf("%d done", succeeded),
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	if canceled > 0 {
		parts = append(parts, fmt.Sprintf("%d canceled", canceled))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Width(tp.width).
		Padding(0, 1)

	return footerStyle.Render(strings.Join(parts, " * "))
}

// =============================================================================
// TASK DETAIL VIEW
// =============================================================================

// ViewDetail renders detailed information about a specific task.
func (tp *TaskPanel) ViewDetail(taskID string) string {
	var found *tasks.Snapshot
	for i := range tp.snapshots {
		if tp.snapshots[i].ID == taskID {
			found = &tp.snapshots[i]
			break
		}
	}
	if found == nil {
		return tp.renderTaskNotFound(taskID)
	}

	var b strings.Builder

	// Header
	b.WriteString(tp.renderDetailHeader(*found))
	b.WriteString("\n\n")

	// Task info
	b.WriteString(tp.renderTaskInfo(*found))

	// Error
	if found.Error != "" {
		b.WriteString("\n")
		b.WriteString(tp.renderTaskError(*found))
	}

	return b.String()
}

// renderTaskNotFound renders when a task is not found.
func (tp *TaskPanel) renderTaskNotFound(taskID string) string {
	errorStyle := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Padding(2).
		Width(tp.width).
		Align(lipgloss.Center)

	return errorStyle.Render(fmt.Sprintf("Task not found: %s", taskID))
}

// renderDetailHeader renders the detail view header.
func (tp *TaskPanel) renderDetailHeader(snap tasks.Snapshot) string {
	icon, color := statusIcon(snap.State)

	header := fmt.Sprintf("%s  %s",
		lipgloss.NewStyle().Foreground(color).Render(icon),
		snap.Name,
	)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Overlay).
		Width(tp.width).
		Padding(0, 1)

	return headerStyle.Render(header)
}

// renderTaskInfo renders task metadata.
func (tp *TaskPanel) renderTaskInfo(snap tasks.Snapshot) string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	// ID
	b.WriteString(labelStyle.Render("ID: "))
	b.WriteString(valueStyle.Render(snap.ID))
	b.WriteString("\n")

	// State
	b.WriteString(labelStyle.Render("State: "))
	b.WriteString(valueStyle.Render(snap.State.String()))
	b.WriteString("\n")

	// Lane
	b.WriteString(labelStyle.Render("Lane: "))
	b.WriteString(valueStyle.Render(snap.Affinity.String()))
	b.WriteString("\n")

	// Duration
	if snap.Duration() > 0 {
		b.WriteString(labelStyle.Render("Duration: "))
		b.WriteString(valueStyle.Render(formatTaskDuration(snap.Duration())))
		b.WriteString("\n")
	}

	// Progress and phase
	if snap.State == tasks.StateRunning {
		b.WriteString(labelStyle.Render("Progress: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d%%", snap.Progress)))
		b.WriteString("\n")
	}
	if snap.StatusText != "" {
		b.WriteString(labelStyle.Render("Phase: "))
		b.WriteString(valueStyle.Render(snap.StatusText))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTaskError renders the task error box.
func (tp *TaskPanel) renderTaskError(snap tasks.Snapshot) string {
	errorStyle := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Rose).
		Padding(1).
		Width(tp.width - 4)

	return errorStyle.Render("Error: " + snap.Error)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// formatTaskDuration formats a duration for display in the task panel.
func formatTaskDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}

	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}
