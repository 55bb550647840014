// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
//
// The dashboard is organized into five tabs:
//
//   - Overview: live CPU, memory, and disk meters with sparkline history,
//     machine specs, and the top processes by CPU.
//   - Tasks: the background task panel with per-task progress, phase text,
//     cancellation, and dismissal of finished work.
//   - Cleanup: the cleanup category menu with dry-run previews; Enter
//     submits the selected category to the task manager after confirmation.
//   - Optimize: optimization operations, profiles, and the turbo toggle,
//     with the optimizer's current status block.
//   - Report: a glamour-rendered markdown report over recorded run history,
//     exportable to ~/.rigtune/reports.
//
// Events flow in one direction: the task manager and the system sampler
// push into the program through a Forwarder (p.Send from their own
// goroutines), arrive as typed tea.Msg values, and the Update loop folds
// them into the model. The model never blocks; everything slow runs as a
// tea.Cmd or a background task.
//
// Usage:
//
//	theme := styles.NewTheme()
//	m := dashboard.New(theme, dashboard.Deps{
//	    Config:    cfg,
//	    Manager:   mgr,
//	    Sampler:   sampler,
//	    Cleaner:   cleanEngine,
//	    Optimizer: optimEngine,
//	    History:   store,
//	})
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	defer mgr.Subscribe(dashboard.NewForwarder(p.Send))()
package dashboard
