// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rigtune TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	HeaderBrand    lipgloss.Style

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	Tab       lipgloss.Style
	TabActive lipgloss.Style
	TabBadge  lipgloss.Style

	// ==========================================================================
	// PANEL STYLES
	// ==========================================================================

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelHint    lipgloss.Style

	// ==========================================================================
	// RESOURCE METER STYLES
	// ==========================================================================

	MeterLabel lipgloss.Style
	MeterValue lipgloss.Style
	MeterBar   lipgloss.Style

	// ==========================================================================
	// TABLE STYLES (process list, history runs)
	// ==========================================================================

	TableHeader      lipgloss.Style
	TableRow         lipgloss.Style
	TableRowSelected lipgloss.Style
	TableCellMuted   lipgloss.Style

	// ==========================================================================
	// TASK PANEL STYLES
	// ==========================================================================

	TaskRow         lipgloss.Style
	TaskRowSelected lipgloss.Style
	TaskID          lipgloss.Style
	TaskName        lipgloss.Style
	TaskMeta        lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusBarWide lipgloss.Style
	AdminBadge    lipgloss.Style
	NoAdminBadge  lipgloss.Style
	DryRunBadge   lipgloss.Style
	PlanBadge     lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// CONFIRM PROMPT STYLES
	// ==========================================================================

	ConfirmBox          lipgloss.Style
	ConfirmTitle        lipgloss.Style
	ConfirmDetail       lipgloss.Style
	ConfirmButton       lipgloss.Style
	ConfirmButtonActive lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner       lipgloss.Style
	WorkingText   lipgloss.Style
	WorkingDetail lipgloss.Style

	// ==========================================================================
	// CODE PREVIEW STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style

	// ==========================================================================
	// REPORT VIEW STYLES
	// ==========================================================================

	ReportView  lipgloss.Style
	ReportTitle lipgloss.Style

	// ==========================================================================
	// ERROR BOX STYLES
	// ==========================================================================

	ErrorBox        lipgloss.Style
	ErrorTitle      lipgloss.Style
	ErrorMessage    lipgloss.Style
	ErrorSuggestion lipgloss.Style
	ErrorTip        lipgloss.Style

	// ==========================================================================
	// STATISTICS STYLES
	// ==========================================================================

	StatsBar   lipgloss.Style
	StatsLabel lipgloss.Style
	StatsValue lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	// SuccessStyle - Used for success states with checkmark indicator
	SuccessStyle lipgloss.Style
	// ErrorStyle - Used for error states with X mark indicator
	ErrorStyle lipgloss.Style
	// WarningStyle - Used for warning states with warning triangle indicator
	WarningStyle lipgloss.Style
	// InfoStyle - Used for info states with info circle indicator
	InfoStyle lipgloss.Style
	// LinkStyle - Used for links with underline for visual distinction
	LinkStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	// Tab bar
	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 2)

	t.TabBadge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Panels
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(FocusRing).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.PanelHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Resource meters
	t.MeterLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(6)

	t.MeterValue = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		Align(lipgloss.Right)

	t.MeterBar = lipgloss.NewStyle().
		Foreground(MeterTrack)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableRowSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true)

	t.TableCellMuted = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Task panel
	t.TaskRow = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.TaskRowSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.TaskID = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(10)

	t.TaskName = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.TaskMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusBarWide = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.AdminBadge = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.NoAdminBadge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.DryRunBadge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.PlanBadge = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Confirm prompts
	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Background(Surface).
		Padding(1, 2)

	t.ConfirmTitle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ConfirmDetail = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ConfirmButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.ConfirmButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.WorkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.WorkingDetail = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	// Code previews
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1).
		Bold(true)

	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	// Report view
	t.ReportView = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ReportTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	// Error boxes
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Background(RoseDeep).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ErrorSuggestion = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.ErrorTip = lipgloss.NewStyle().
		Foreground(Cyan).
		Italic(true)

	// Statistics
	t.StatsBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.StatsLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatsValue = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	// SuccessStyle - High contrast green with bold for colorblind accessibility
	// ACCESSIBILITY: Use with StatusIndicators.Success symbol
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	// ErrorStyle - High contrast red with bold for colorblind accessibility
	// ACCESSIBILITY: Use with StatusIndicators.Error symbol
	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	// WarningStyle - High contrast amber with bold for colorblind accessibility
	// ACCESSIBILITY: Use with StatusIndicators.Warning symbol
	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	// InfoStyle - High contrast blue with bold for colorblind accessibility
	// ACCESSIBILITY: Use with StatusIndicators.Info symbol
	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)

	// LinkStyle - Blue with underline for visual distinction beyond color
	// ACCESSIBILITY: Underline provides non-color visual cue for links
	t.LinkStyle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
