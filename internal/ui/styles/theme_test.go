// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rigtune TUI.
package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Check basic properties are set
	if theme.ColorProfile == 0 {
		t.Error("NewTheme() should set ColorProfile")
	}

	// Verify styles are initialized by rendering a test string
	renderedApp := theme.App.Render("test")
	if renderedApp == "" {
		t.Error("NewTheme() should initialize App style")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	// Test that various style categories are initialized
	// We test by rendering and checking for non-empty output
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"TabActive", theme.TabActive},
		{"Panel", theme.Panel},
		{"MeterBar", theme.MeterBar},
		{"TaskRow", theme.TaskRow},
		{"StatusBar", theme.StatusBar},
		{"ErrorBox", theme.ErrorBox},
		{"CodeBlock", theme.CodeBlock},
	}

	for _, s := range styles {
		// Verify each style is initialized by rendering a test string
		// An uninitialized style would just return the input unchanged
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{80, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{150, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.GetLayoutMode()
		if got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

// =============================================================================
// LAYOUT MODE TESTS
// =============================================================================

func TestLayoutModeConstants(t *testing.T) {
	// Verify layout mode constants have expected values
	if LayoutNarrow != 0 {
		t.Errorf("LayoutNarrow = %d, want 0", LayoutNarrow)
	}
	if LayoutMedium != 1 {
		t.Errorf("LayoutMedium = %d, want 1", LayoutMedium)
	}
	if LayoutWide != 2 {
		t.Errorf("LayoutWide = %d, want 2", LayoutWide)
	}
}

// =============================================================================
// TAB BAR STYLE TESTS
// =============================================================================

func TestThemeTabStyles(t *testing.T) {
	theme := NewTheme()

	tabStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Tab", theme.Tab},
		{"TabActive", theme.TabActive},
		{"TabBadge", theme.TabBadge},
	}

	for _, s := range tabStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// PANEL STYLE TESTS
// =============================================================================

func TestThemePanelStyles(t *testing.T) {
	theme := NewTheme()

	panelStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Panel", theme.Panel},
		{"PanelFocused", theme.PanelFocused},
		{"PanelTitle", theme.PanelTitle},
		{"PanelHint", theme.PanelHint},
	}

	for _, s := range panelStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// METER STYLE TESTS
// =============================================================================

func TestThemeMeterStyles(t *testing.T) {
	theme := NewTheme()

	meterStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"MeterLabel", theme.MeterLabel},
		{"MeterValue", theme.MeterValue},
		{"MeterBar", theme.MeterBar},
	}

	for _, s := range meterStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// TABLE STYLE TESTS
// =============================================================================

func TestThemeTableStyles(t *testing.T) {
	theme := NewTheme()

	tableStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"TableHeader", theme.TableHeader},
		{"TableRow", theme.TableRow},
		{"TableRowSelected", theme.TableRowSelected},
		{"TableCellMuted", theme.TableCellMuted},
	}

	for _, s := range tableStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// TASK PANEL STYLE TESTS
// =============================================================================

func TestThemeTaskStyles(t *testing.T) {
	theme := NewTheme()

	taskStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"TaskRow", theme.TaskRow},
		{"TaskRowSelected", theme.TaskRowSelected},
		{"TaskID", theme.TaskID},
		{"TaskName", theme.TaskName},
		{"TaskMeta", theme.TaskMeta},
	}

	for _, s := range taskStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// STATUS BAR STYLE TESTS
// =============================================================================

func TestThemeStatusBarStyles(t *testing.T) {
	theme := NewTheme()

	statusStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"StatusBar", theme.StatusBar},
		{"StatusBarWide", theme.StatusBarWide},
		{"AdminBadge", theme.AdminBadge},
		{"NoAdminBadge", theme.NoAdminBadge},
		{"DryRunBadge", theme.DryRunBadge},
		{"PlanBadge", theme.PlanBadge},
		{"ShortcutKey", theme.ShortcutKey},
		{"ShortcutDesc", theme.ShortcutDesc},
	}

	for _, s := range statusStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// CONFIRM PROMPT STYLE TESTS
// =============================================================================

func TestThemeConfirmStyles(t *testing.T) {
	theme := NewTheme()

	confirmStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"ConfirmBox", theme.ConfirmBox},
		{"ConfirmTitle", theme.ConfirmTitle},
		{"ConfirmDetail", theme.ConfirmDetail},
		{"ConfirmButton", theme.ConfirmButton},
		{"ConfirmButtonActive", theme.ConfirmButtonActive},
	}

	for _, s := range confirmStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// SPINNER STYLE TESTS
// =============================================================================

func TestThemeSpinnerStyles(t *testing.T) {
	theme := NewTheme()

	spinnerStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Spinner", theme.Spinner},
		{"WorkingText", theme.WorkingText},
		{"WorkingDetail", theme.WorkingDetail},
	}

	for _, s := range spinnerStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// CODE PREVIEW STYLE TESTS
// =============================================================================

func TestThemeCodeBlockStyles(t *testing.T) {
	theme := NewTheme()

	codeStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"CodeBlock", theme.CodeBlock},
		{"CodeLangBadge", theme.CodeLangBadge},
		{"CodeLineNum", theme.CodeLineNum},
	}

	for _, s := range codeStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// REPORT VIEW STYLE TESTS
// =============================================================================

func TestThemeReportStyles(t *testing.T) {
	theme := NewTheme()

	reportStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"ReportView", theme.ReportView},
		{"ReportTitle", theme.ReportTitle},
	}

	for _, s := range reportStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// ERROR BOX STYLE TESTS
// =============================================================================

func TestThemeErrorBoxStyles(t *testing.T) {
	theme := NewTheme()

	errorStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"ErrorBox", theme.ErrorBox},
		{"ErrorTitle", theme.ErrorTitle},
		{"ErrorMessage", theme.ErrorMessage},
		{"ErrorSuggestion", theme.ErrorSuggestion},
		{"ErrorTip", theme.ErrorTip},
	}

	for _, s := range errorStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// STATISTICS STYLE TESTS
// =============================================================================

func TestThemeStatisticsStyles(t *testing.T) {
	theme := NewTheme()

	statsStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"StatsBar", theme.StatsBar},
		{"StatsLabel", theme.StatsLabel},
		{"StatsValue", theme.StatsValue},
	}

	for _, s := range statsStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// ACCESSIBILITY STYLE TESTS
// =============================================================================

func TestThemeAccessibilityStyles(t *testing.T) {
	theme := NewTheme()

	// Test that accessibility styles are initialized
	accessibilityStyles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"SuccessStyle", theme.SuccessStyle},
		{"ErrorStyle", theme.ErrorStyle},
		{"WarningStyle", theme.WarningStyle},
		{"InfoStyle", theme.InfoStyle},
		{"LinkStyle", theme.LinkStyle},
	}

	for _, s := range accessibilityStyles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s should be initialized", s.name)
		}
	}
}

// =============================================================================
// EDGE CASE TESTS
// =============================================================================

func TestThemeZeroSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(0, 0)

	if theme.Width != 0 || theme.Height != 0 {
		t.Error("SetSize(0, 0) should set both dimensions to 0")
	}

	// GetLayoutMode should still work
	mode := theme.GetLayoutMode()
	if mode != LayoutNarrow {
		t.Errorf("GetLayoutMode() with width 0 = %v, want %v", mode, LayoutNarrow)
	}
}

func TestThemeNegativeSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(-100, -50)

	// Should accept negative values (terminal can't be negative, but no validation)
	if theme.Width != -100 || theme.Height != -50 {
		t.Error("SetSize() should accept values as-is")
	}
}

func TestThemeMultipleInitialization(t *testing.T) {
	// Create multiple themes to ensure no global state issues
	theme1 := NewTheme()
	theme2 := NewTheme()

	if theme1 == theme2 {
		t.Error("NewTheme() should create distinct theme instances")
	}

	// Modify one theme
	theme1.SetSize(100, 50)
	theme2.SetSize(200, 80)

	if theme1.Width == theme2.Width {
		t.Error("Themes should have independent state")
	}
}
