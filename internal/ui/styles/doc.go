// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the rigtune TUI.

This package defines the complete color palette, theme, and animation
system used throughout the dashboard. All colors use Lip Gloss AdaptiveColor
for automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for selected tabs and focused panels
  - Cyan - Brand color for info, key hints, and healthy meters
  - Emerald - Success states, completed tasks, applied tweaks
  - Amber - Warnings, dry-run notices, elevated resource pressure
  - Rose - Errors, failed tasks, critical resource pressure

## Resource Meter Colors

Meter fills shift with utilization so gauges read at a glance:

	MeterLow      - below 50%
	MeterOK       - 50% to 75%
	MeterHot      - 75% to 90%
	MeterCritical - 90% and above

MeterColor(percent) picks the right one; the status bar and the overview
gauges share these thresholds.

## Surface Colors

Layered surface system for depth:

	Surface    - Main background
	SurfaceDim - Subtle backgrounds (headers, status bars)
	Overlay    - Borders and separators

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	if theme.HasTrueColor {
		// Terminal supports 16M colors
	}

Theme styles are grouped by dashboard region: tab bar, panels, meters,
tables, task rows, status bar, confirm prompts, and the report view.

# Animation System (animations.go)

## Spinner Configurations

Pre-defined spinner styles:

	BrailleSpinner  - Smooth 10-frame spinner for running tasks
	DotsSpinner     - Classic three-dot animation
	LineSpinner     - Simple line rotation
	ProgressSpinner - Progress dots for long sweeps

## Status Indicators

ASCII indicators for various states:

	StatusIndicators.Success - [OK]
	StatusIndicators.Error   - [X]
	StatusIndicators.Warning - [!]
	StatusIndicators.Info    - [i]

# Usage Example

	import "github.com/jeranaias/rigtune/internal/ui/styles"

	// Use adaptive colors
	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	// Use theme for runtime detection
	theme := styles.NewTheme()
	bar := theme.StatusBar.Render("ready")

	// Use spinner configuration
	spinner := styles.BrailleSpinner
	frame := spinner.Frame(tick)
*/
package styles
