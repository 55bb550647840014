// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/rigtune/internal/ui/styles"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusScanning
	StatusApplying
	StatusWorking
	StatusError
	StatusIdle
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusScanning:
		return "Scanning..."
	case StatusApplying:
		return "Applying..."
	case StatusWorking:
		return "Working..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusScanning:
		return styles.StatusIndicators.Pending
	case StatusApplying, StatusWorking:
		return styles.StatusIndicators.Active
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar represents the bottom status bar
type StatusBar struct {
	Admin         bool   // Whether the process holds administrator rights
	Plan          string // Active power plan name
	DryRun        bool   // Whether destructive operations are simulated
	MemUsed       uint64 // Physical memory in use, bytes
	MemTotal      uint64 // Total physical memory, bytes
	RunningTasks  int    // Background tasks currently running
	Status        Status // Current status
	Width         int    // Available width
	ShowShortcuts bool   // Show keyboard shortcuts
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Admin:         false,
		Plan:          "",
		DryRun:        false,
		MemUsed:       0,
		MemTotal:      0,
		RunningTasks:  0,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetAdmin updates the administrator rights indicator
func (s *StatusBar) SetAdmin(admin bool) {
	s.Admin = admin
}

// SetPlan updates the active power plan display
func (s *StatusBar) SetPlan(plan string) {
	s.Plan = plan
}

// SetDryRun updates the dry-run indicator
func (s *StatusBar) SetDryRun(dryRun bool) {
	s.DryRun = dryRun
}

// SetMemory updates the memory usage display
func (s *StatusBar) SetMemory(used, total uint64) {
	s.MemUsed = used
	s.MemTotal = total
}

// SetRunningTasks updates the background task counter
func (s *StatusBar) SetRunningTasks(n int) {
	s.RunningTasks = n
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Choose layout based on width
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: [A|DRY] MemBar Status
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	// Rights indicator (compact)
	// ACCESSIBILITY: shape plus color, admin state matters for every apply
	if s.Admin {
		adminStyle := lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
		parts = append(parts, adminStyle.Render("A"))
	} else {
		userStyle := lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
		parts = append(parts, userStyle.Render("U"))
	}

	// Dry-run indicator
	if s.DryRun {
		dryStyle := lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
		parts = append(parts, dryStyle.Render("DRY"))
	}

	// Combine rights section
	rightsSection := "[" + strings.Join(parts, "|") + "]"

	// Memory bar (smaller)
	memBar := s.renderMemoryBarSmall()

	// Status
	statusStyle := s.getStatusStyle()
	statusText := statusStyle.Render(s.Status.Icon())

	// Join with spaces
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" ")

	result := rightsSection + separator + memBar + separator + statusText

	// Apply background
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar
// Format: ADMIN | plan | DRY RUN | RAM: MemBar | Status
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	// Rights badge
	parts = append(parts, s.renderAdminBadge())

	// Power plan (truncated if needed)
	if s.Plan != "" {
		plan := s.Plan
		// Use rune-based truncation to handle Unicode correctly
		planRunes := []rune(plan)
		if len(planRunes) > 15 {
			plan = string(planRunes[:12]) + "..."
		}
		parts = append(parts, s.getPlanStyle().Render(plan))
	}

	// Dry-run badge
	if s.DryRun {
		dryBadge := lipgloss.NewStyle().
			Foreground(styles.WarningHighContrast).
			Bold(true).
			Render("DRY RUN")
		parts = append(parts, dryBadge)
	}

	// Memory bar with label
	memLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("RAM:")
	memBar := s.renderMemoryBar()
	parts = append(parts, memLabel+" "+memBar)

	// Status
	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.String()))

	result := strings.Join(parts, separator)

	// Apply background
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals
// Format: ADMIN | Ultimate Performance | DRY RUN | 2 tasks ... RAM: [####------] 12.3 GB/32.0 GB (38.4%) ... Ready shortcuts
func (s *StatusBar) viewWide() string {
	// Left section: rights, plan, dry-run, tasks
	leftParts := []string{}

	// Rights badge (shown first, prominent)
	leftParts = append(leftParts, s.renderAdminBadge())

	// Power plan
	if s.Plan != "" {
		leftParts = append(leftParts, s.getPlanStyle().Render(s.Plan))
	}

	// Dry-run badge
	if s.DryRun {
		dryBadge := lipgloss.NewStyle().
			Background(styles.Amber).
			Foreground(styles.TextInverse).
			Bold(true).
			Padding(0, 1).
			Render("DRY RUN")
		leftParts = append(leftParts, dryBadge)
	}

	// Background task count
	if s.RunningTasks > 0 {
		taskStr := lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true).
			Render(fmt.Sprintf("%d task%s", s.RunningTasks, plural(s.RunningTasks)))
		leftParts = append(leftParts, taskStr)
	}

	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	leftSection := strings.Join(leftParts, leftSep)

	// Center section: memory bar with usage figures
	memLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("RAM: ")
	memBar := s.renderMemoryBar()
	memPercent := s.renderMemoryPercent()
	centerSection := memLabel + memBar + " " + memPercent

	// Right section: status and shortcuts
	rightParts := []string{}

	// Status
	statusStyle := s.getStatusStyle()
	rightParts = append(rightParts, statusStyle.Render(s.Status.String()))

	// Keyboard shortcuts (if enabled)
	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}

	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	// Add spacing between sections
	spacing := s.Width - totalContent - 4 // Account for padding
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	// Apply styled border for wide view
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderAdminBadge renders the administrator rights badge
// ACCESSIBILITY: the missing-rights state gets the louder color because most
// tuning operations refuse without elevation
func (s *StatusBar) renderAdminBadge() string {
	if s.Admin {
		return lipgloss.NewStyle().
			Foreground(styles.SuccessHighContrast).
			Bold(true).
			Render("ADMIN")
	}
	return lipgloss.NewStyle().
		Foreground(styles.WarningHighContrast).
		Bold(true).
		Render("USER")
}

// memoryPercent returns physical memory usage as a percentage
func (s *StatusBar) memoryPercent() float64 {
	if s.MemTotal == 0 {
		return 0
	}
	return float64(s.MemUsed) / float64(s.MemTotal) * 100
}

// renderMemoryBar renders the memory usage bar
// Format: [##########] (10 blocks)
func (s *StatusBar) renderMemoryBar() string {
	percent := s.memoryPercent()

	filled := int(percent / 10)
	if filled > 10 {
		filled = 10
	}
	empty := 10 - filled

	filledStyle := lipgloss.NewStyle().Foreground(styles.MeterColor(percent))
	emptyStyle := lipgloss.NewStyle().Foreground(styles.MeterTrack)

	filledPart := filledStyle.Render(strings.Repeat("#", filled))
	emptyPart := emptyStyle.Render(strings.Repeat("-", empty))

	return "[" + filledPart + emptyPart + "]"
}

// renderMemoryBarSmall renders a smaller memory bar for narrow view
// Format: [####--] (6 blocks)
func (s *StatusBar) renderMemoryBarSmall() string {
	percent := s.memoryPercent()

	filled := int(percent / 100 * 6)
	if filled > 6 {
		filled = 6
	}
	empty := 6 - filled

	filledStyle := lipgloss.NewStyle().Foreground(styles.MeterColor(percent))
	emptyStyle := lipgloss.NewStyle().Foreground(styles.MeterTrack)

	return filledStyle.Render(strings.Repeat("#", filled)) +
		emptyStyle.Render(strings.Repeat("-", empty))
}

// renderMemoryPercent renders the memory figures with percentage
func (s *StatusBar) renderMemoryPercent() string {
	percent := s.memoryPercent()

	// Choose color based on percentage
	color := styles.TextMuted
	if percent >= 90 {
		color = styles.Rose
	} else if percent >= 75 {
		color = styles.Amber
	}

	percentStyle := lipgloss.NewStyle().Foreground(color)

	// Format: 12.3 GB/32.0 GB (38.4%)
	return percentStyle.Render(
		util.FormatBytes(int64(s.MemUsed)) + "/" + util.FormatBytes(int64(s.MemTotal)) +
			" (" + fmtPercent(percent) + ")",
	)
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("Tab") + descStyle.Render("panes"),
		keyStyle.Render("?") + descStyle.Render("help"),
		keyStyle.Render("q") + descStyle.Render("quit"),
	}

	return strings.Join(shortcuts, " ")
}

// getPlanStyle returns the style for the active power plan
func (s *StatusBar) getPlanStyle() lipgloss.Style {
	switch strings.ToLower(s.Plan) {
	case "maximum performance", "ultimate performance":
		return lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)
	case "high performance":
		return lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
	case "balanced":
		return lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted)
	}
}

// getStatusStyle returns the style for the current status
// ACCESSIBILITY: Uses high contrast colors with bold for colorblind users
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusScanning, StatusWorking:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusApplying:
		return lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	case StatusIdle:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}

// plural returns "s" when n is not one.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
