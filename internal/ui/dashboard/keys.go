// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
//
// This file defines keyboard bindings for the dashboard. It provides a
// KeyMap with tab navigation and per-tab actions, along with context-aware
// help text generation for the help overlay.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the dashboard.
// Each binding supports multiple keys and includes help text.
type KeyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Select     key.Binding
	Cancel     key.Binding
	Dismiss    key.Binding
	ToggleDone key.Binding
	DryRun     key.Binding
	Refresh    key.Binding
	Export     key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the dashboard.
// Navigation supports both arrow keys and vim-like shortcuts.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-Tab", "previous tab"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("Enter", "run selected"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel task"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss finished task"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "show/hide finished"),
		),
		DryRun: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle dry-run"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export report"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close overlay"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the key bindings shown in the status bar hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Select, k.Help, k.Quit}
}

// FullHelp returns the key bindings for the full help view, grouped for
// readability.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		// Paging
		{k.PageUp, k.PageDown},
		// Actions
		{k.Select, k.Cancel, k.Dismiss, k.Refresh},
		// Modes
		{k.DryRun, k.ToggleDone, k.Help, k.Quit},
	}
}

// =============================================================================
// HELP TEXT DATA
// =============================================================================

// HelpContext identifies which tab (or overlay) is active, for filtering
// help items. Follows lazygit's pattern of context-aware keybinding display.
type HelpContext string

const (
	// ContextOverview is the live meters tab
	ContextOverview HelpContext = "overview"
	// ContextTasks is the background task panel
	ContextTasks HelpContext = "tasks"
	// ContextCleanup is the cleanup category menu
	ContextCleanup HelpContext = "cleanup"
	// ContextOptimize is the optimization menu
	ContextOptimize HelpContext = "optimize"
	// ContextReport is the rendered report viewer
	ContextReport HelpContext = "report"
	// ContextConfirm is the confirmation dialog overlay
	ContextConfirm HelpContext = "confirm"
)

// contextForTab maps a tab to its help context.
func contextForTab(t Tab) HelpContext {
	switch t {
	case TabTasks:
		return ContextTasks
	case TabCleanup:
		return ContextCleanup
	case TabOptimize:
		return ContextOptimize
	case TabReport:
		return ContextReport
	default:
		return ContextOverview
	}
}

// HelpCategory groups help items for display.
type HelpCategory string

const (
	CategoryNavigation HelpCategory = "Navigation"
	CategoryActions    HelpCategory = "Actions"
	CategoryModes      HelpCategory = "Modes"
)

// HelpItem is a single help entry with key, description, and the contexts
// where the binding is active.
type HelpItem struct {
	Key      string
	Desc     string
	Contexts []HelpContext
	Category HelpCategory
}

// GetHelpItems returns all help items for the help overlay.
func GetHelpItems() []HelpItem {
	all := []HelpContext{ContextOverview, ContextTasks, ContextCleanup, ContextOptimize, ContextReport}
	menus := []HelpContext{ContextTasks, ContextCleanup, ContextOptimize}
	tasksOnly := []HelpContext{ContextTasks}
	cleanupOnly := []HelpContext{ContextCleanup}
	actionTabs := []HelpContext{ContextCleanup, ContextOptimize}
	reportOnly := []HelpContext{ContextReport}
	confirmOnly := []HelpContext{ContextConfirm}

	return []HelpItem{
		// Navigation - available everywhere
		{"Tab / S-Tab", "Switch tab", all, CategoryNavigation},
		{"1-5", "Jump to tab", all, CategoryNavigation},
		{"up/k, down/j", "Move selection", menus, CategoryNavigation},
		{"PgUp/PgDn", "Scroll report", reportOnly, CategoryNavigation},

		// Actions
		{"Enter", "Run selected operation", actionTabs, CategoryActions},
		{"c", "Cancel selected task", tasksOnly, CategoryActions},
		{"x", "Dismiss finished task", tasksOnly, CategoryActions},
		{"r", "Refresh meters and previews", all, CategoryActions},
		{"e", "Export report to disk", reportOnly, CategoryActions},
		{"Enter/y", "Confirm", confirmOnly, CategoryActions},
		{"Esc/n", "Abort", confirmOnly, CategoryActions},

		// Modes
		{"d", "Toggle dry-run", cleanupOnly, CategoryModes},
		{"f", "Show or hide finished tasks", tasksOnly, CategoryModes},
		{"?", "Toggle this help", all, CategoryModes},
		{"q", "Quit", all, CategoryModes},
	}
}

// GetHelpItemsForContext returns help items filtered for the given context.
// Only currently-active keybindings are shown, lazygit-style.
func GetHelpItemsForContext(ctx HelpContext) []HelpItem {
	var filtered []HelpItem
	for _, item := range GetHelpItems() {
		for _, itemCtx := range item.Contexts {
			if itemCtx == ctx {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// GetHelpItemsByCategory returns help items for a context grouped by
// category, for organized display in the overlay.
func GetHelpItemsByCategory(ctx HelpContext) map[HelpCategory][]HelpItem {
	grouped := make(map[HelpCategory][]HelpItem)
	for _, item := range GetHelpItemsForContext(ctx) {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// GetCategoryOrder returns the display order for help categories.
func GetCategoryOrder() []HelpCategory {
	return []HelpCategory{
		CategoryNavigation,
		CategoryActions,
		CategoryModes,
	}
}
