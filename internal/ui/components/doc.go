// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the rigtune TUI.

This package contains a collection of styled, interactive components built on
top of the Bubble Tea and Lip Gloss libraries. Each component is designed to
be visually consistent with the rigtune design language.

# Core Components

## Display Components

Header (header.go) - Application banner with hostname, power plan, admin and
dry-run badges.
StatusBar (statusbar.go) - Bottom status bar with rights badge, memory bar,
task counter, and shortcuts; three layouts by terminal width.
Meter (meter.go) - Labeled resource gauges for the overview pane, plus
RenderSparkline for history strips.
ProcTable (proctable.go) - Top-consumers process table.
CodePreview (preview.go) - Syntax-highlighted payload previews using Chroma.

## Tasks and Feedback

TaskPanel (taskpanel.go) - Background task registry view with filtering,
selection, and a per-task detail view.
Spinner (spinner.go) - Animated spinner with customizable styles; TaskSpinner
binds one to a running background task.
Toast / ToastManager (toast.go) - Non-blocking corner notifications for task
results.
ConfirmDialog (confirm.go) - Modal consent prompt shown before destructive
operations.

# Key Types

## Theme Integration

All components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	header := components.NewHeader(theme)
	header.SetWidth(80)
	header.SetPlan("Ultimate Performance")
	view := header.View()

## Bubble Tea Integration

Interactive components implement the Bubble Tea update contract:

	type Component interface {
		Init() tea.Cmd
		Update(tea.Msg) (Component, tea.Cmd)
		View() string
	}

ConfirmDialog and TaskPanel additionally report whether they consumed a key
so the dashboard can layer them over the active tab.

# Helper Functions

The package includes shared helper functions in helpers.go:
  - toStr() - Integer to string conversion without fmt
  - fmtNumber() / fmtPercent() - Display formatting for counters and gauges
  - truncateWidth() / padRight() - Width-aware cell shaping for tables
*/
package components
