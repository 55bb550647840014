// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the root Bubble Tea model for the rigtune
// terminal dashboard.
//
// This file contains the tea.Cmd constructors: everything that leaves the
// Update loop (task submissions, store queries, report builds) runs here,
// with the touched services captured into locals before the closure so the
// command never reads the model after Update returns.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/history"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/report"
	"github.com/jeranaias/rigtune/internal/tasks"
)

// reportRunLimit caps how many runs the report tab folds in.
const reportRunLimit = 50

// queryTimeout bounds the store and engine queries commands make.
const queryTimeout = 10 * time.Second

var errNoManager = errors.New("dashboard: task manager unavailable")

// =============================================================================
// HEARTBEAT
// =============================================================================

// tickCmd arms the next heartbeat.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval(), func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// refreshNowCmd asks the sampler for an immediate refresh. The result
// arrives through the Forwarder like any scheduled sample; the command
// itself produces nothing.
func (m Model) refreshNowCmd() tea.Cmd {
	sampler := m.sampler
	if sampler == nil {
		return nil
	}
	return func() tea.Msg {
		sampler.RefreshNow()
		return nil
	}
}

// =============================================================================
// TASK SUBMISSION
// =============================================================================

// submitCmd hands work to the manager and reports the outcome.
func submitCmd(mgr *tasks.Manager, name string, work tasks.Work, opts ...tasks.SubmitOption) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return TaskSubmittedMsg{Name: name, Err: errNoManager}
		}
		id, err := mgr.Submit(work, opts...)
		return TaskSubmittedMsg{ID: id, Name: name, Err: err}
	}
}

// submitCleanCmd runs one cleanup category as a pool task.
func (m Model) submitCleanCmd(cat cleaner.Category) tea.Cmd {
	eng := m.activeCleaner()
	if eng == nil {
		return nil
	}
	name := "clean " + cat.String()
	return submitCmd(m.manager, name, eng.CleanWork(cat), tasks.WithName(name))
}

// submitFullCleanupCmd runs every enabled category as one pool task.
func (m Model) submitFullCleanupCmd() tea.Cmd {
	eng := m.activeCleaner()
	if eng == nil {
		return nil
	}
	name := "full cleanup"
	return submitCmd(m.manager, name, eng.FullCleanupWork(), tasks.WithName(name))
}

// submitOperationCmd runs one optimization as a pool task.
func (m Model) submitOperationCmd(op optimizer.Operation) tea.Cmd {
	eng := m.optimEng
	if eng == nil {
		return nil
	}
	name := "optimize " + op.String()
	return submitCmd(m.manager, name, eng.OperationWork(op), tasks.WithName(name))
}

// submitProfileCmd applies a whole profile as one pool task.
func (m Model) submitProfileCmd(p optimizer.Profile) tea.Cmd {
	eng := m.optimEng
	if eng == nil {
		return nil
	}
	name := "profile " + p.String()
	return submitCmd(m.manager, name, eng.ProfileWork(p), tasks.WithName(name))
}

// submitTurboCmd toggles turbo mode. Activation runs on the dedicated lane:
// the user is usually about to launch a game and the toggle must not queue
// behind a full cleanup.
func (m Model) submitTurboCmd(activate bool) tea.Cmd {
	eng := m.optimEng
	if eng == nil {
		return nil
	}
	if activate {
		return submitCmd(m.manager, "turbo on", eng.TurboWork(),
			tasks.WithName("turbo on"), tasks.Dedicated())
	}
	work := func(rc *tasks.RunContext) (any, error) {
		res := eng.DeactivateTurbo(rc)
		return res, nil
	}
	return submitCmd(m.manager, "turbo off", work,
		tasks.WithName("turbo off"), tasks.Dedicated())
}

// cancelTaskCmd signals cancellation on a task.
func (m Model) cancelTaskCmd(id string) tea.Cmd {
	mgr := m.manager
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		return TaskCancelRequestedMsg{ID: id, Delivered: mgr.Cancel(id)}
	}
}

// =============================================================================
// ENGINE QUERIES
// =============================================================================

// previewCmd estimates what each cleanup category would reclaim.
func (m Model) previewCmd() tea.Cmd {
	eng := m.activeCleaner()
	if eng == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		rep, err := eng.Preview(ctx, cleaner.Categories()...)
		return PreviewMsg{Report: rep, Err: err}
	}
}

// optimizerStatusCmd reads the optimizer's status block.
func (m Model) optimizerStatusCmd() tea.Cmd {
	eng := m.optimEng
	if eng == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		return OptimizerStatusMsg{Status: eng.Status(ctx)}
	}
}

// =============================================================================
// REPORT
// =============================================================================

// buildReport assembles the report from the history store.
func buildReport(store *history.Store, host report.Host) (*report.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	runs, err := store.List(ctx, reportRunLimit)
	if err != nil {
		return nil, err
	}
	totals, err := store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return report.New("System Report", runs, totals, host), nil
}

// renderMarkdown renders markdown for the terminal. Falls back to the raw
// text when glamour cannot build a renderer for this environment.
func renderMarkdown(md string, wrap int) string {
	if wrap < 40 {
		wrap = 40
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// buildReportCmd builds the report markdown and its rendered form for the
// report tab.
func (m Model) buildReportCmd() tea.Cmd {
	store := m.histStore
	host := report.HostFromSpecs(m.specs)
	wrap := m.reportWrapWidth()

	return func() tea.Msg {
		if store == nil {
			return ReportMsg{Err: errors.New("history store unavailable")}
		}
		r, err := buildReport(store, host)
		if err != nil {
			return ReportMsg{Err: err}
		}
		md, err := report.NewMarkdownExporter(report.DefaultOptions()).Export(r)
		if err != nil {
			return ReportMsg{Err: err}
		}
		return ReportMsg{
			Markdown: string(md),
			Rendered: renderMarkdown(string(md), wrap),
		}
	}
}

// exportReportCmd rebuilds the report from the store and writes it to the
// reports directory.
func (m Model) exportReportCmd() tea.Cmd {
	store := m.histStore
	host := report.HostFromSpecs(m.specs)

	return func() tea.Msg {
		if store == nil {
			return ReportExportedMsg{Format: "markdown", Err: errors.New("history store unavailable")}
		}
		r, err := buildReport(store, host)
		if err != nil {
			return ReportExportedMsg{Format: "markdown", Err: err}
		}
		path, err := report.ExportMarkdown(r, report.DefaultOptions())
		return ReportExportedMsg{Path: path, Format: "markdown", Err: err}
	}
}

// =============================================================================
// HISTORY RECORDING
// =============================================================================

// recordRunCmd writes a finished task to the history store. The run's
// file and byte figures come from the task result when it is one of the
// engine outcome types; anything else records zeros with the raw result
// as the detail payload.
func (m Model) recordRunCmd(msg TaskFinishedMsg) tea.Cmd {
	store := m.histStore
	mgr := m.manager
	if store == nil || mgr == nil {
		return nil
	}
	if m.cfg != nil && !m.cfg.History.Enabled {
		return nil
	}

	return func() tea.Msg {
		snap, err := mgr.Query(msg.ID)
		if err != nil {
			// Reaped between completion and recording; nothing to write.
			return nil
		}

		run := history.Run{
			Kind:       snap.Name,
			State:      string(msg.State),
			StartedAt:  snap.StartedAt,
			FinishedAt: snap.FinishedAt,
			Error:      msg.Err,
		}
		run.Files, run.Bytes = outcomeFigures(msg.Result)
		if msg.Result != nil {
			if detail, err := json.Marshal(msg.Result); err == nil {
				run.Detail = detail
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		id, err := store.Record(ctx, run)
		return RunRecordedMsg{RunID: id, Kind: run.Kind, Err: err}
	}
}

// outcomeFigures extracts the files/bytes pair from an engine result.
func outcomeFigures(result any) (files int64, bytes int64) {
	switch res := result.(type) {
	case cleaner.Result:
		return int64(res.FilesRemoved), res.BytesFreed
	case cleaner.Summary:
		return int64(res.TotalFiles), res.TotalBytes
	case optimizer.Result:
		if res.RAM != nil && res.RAM.Freed > 0 {
			return int64(res.Applied), res.RAM.Freed
		}
		return int64(res.Applied), 0
	case optimizer.ProfileSummary:
		return int64(res.Applied), 0
	default:
		return 0, 0
	}
}
