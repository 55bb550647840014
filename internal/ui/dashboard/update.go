// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigtune/internal/cleaner"
	"github.com/jeranaias/rigtune/internal/optimizer"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/ui/components"
	"github.com/jeranaias/rigtune/internal/util"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m.handleTick()

	case MonitorSnapshotMsg:
		return m.handleSnapshot(msg)

	case TaskSubmittedMsg:
		return m.handleTaskSubmitted(msg)

	case TaskProgressMsg, TaskStatusMsg:
		m.refreshTasks()
		return m, nil

	case TaskFinishedMsg:
		return m.handleTaskFinished(msg)

	case TaskCancelRequestedMsg:
		if msg.Delivered {
			m.toasts.AddStatus("Cancel requested")
		} else {
			m.toasts.AddWarning("Task already finished")
		}
		return m, components.ToastTickCmd()

	case components.ConfirmResultMsg:
		return m.handleConfirmResult(msg)

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case PreviewMsg:
		return m.handlePreview(msg)

	case OptimizerStatusMsg:
		m.optimStatus = &msg.Status
		if msg.Status.ActivePlan != "" {
			m.header.SetPlan(msg.Status.ActivePlan)
			m.statusBar.SetPlan(msg.Status.ActivePlan)
		}
		return m, nil

	case ReportMsg:
		return m.handleReport(msg)

	case ReportExportedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Export failed: " + msg.Err.Error())
		} else {
			m.toasts.AddSuccess("Report exported: " + msg.Path)
		}
		return m, components.ToastTickCmd()

	case RunRecordedMsg:
		if msg.Err != nil {
			m.toasts.AddWarning("History not recorded: " + msg.Err.Error())
			return m, components.ToastTickCmd()
		}
		// A new run invalidates the rendered report.
		return m, m.buildReportCmd()

	case spinner.TickMsg:
		if m.spinner.IsActive() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

// chromeHeight is the vertical space the header, tab bar, and status bar
// occupy around the tab content. The report viewport is sized against it;
// renderContent measures the real chrome and pads the difference.
const chromeHeight = 8

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = m.width > 0 && m.height > 0

	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.confirm.SetSize(m.width, m.height)

	contentHeight := m.height - chromeHeight
	if contentHeight < 4 {
		contentHeight = 4
	}
	m.taskPanel.SetSize(m.width, contentHeight)
	m.procTable.SetWidth(m.width - 2)

	meterWidth := m.width - 4
	if meterWidth > 70 {
		meterWidth = 70
	}
	m.cpuMeter.SetWidth(meterWidth)
	m.ramMeter.SetWidth(meterWidth)
	m.diskMeter.SetWidth(meterWidth)

	m.reportView.Width = m.width
	m.reportView.Height = contentHeight

	// Re-render the report to the new wrap width.
	if m.reportReady {
		return m, m.buildReportCmd()
	}
	return m, nil
}

// reportWrapWidth is the word-wrap width handed to glamour.
func (m Model) reportWrapWidth() int {
	w := m.width - 6
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	if m.width == 0 {
		w = 80
	}
	return w
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The confirmation dialog swallows everything while visible.
	if m.confirm.IsVisible() {
		cmd, consumed := m.confirm.Update(msg)
		if consumed {
			return m, cmd
		}
		return m, nil
	}

	// The help overlay closes on help/esc/quit keys and ignores the rest.
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keyMap.Help), key.Matches(msg, m.keyMap.Back):
			m.showHelp = false
			return m, nil
		case key.Matches(msg, m.keyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Global keys.
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.NextTab):
		return m.switchTab(m.tab.next())

	case key.Matches(msg, m.keyMap.PrevTab):
		return m.switchTab(m.tab.prev())

	case key.Matches(msg, m.keyMap.Refresh):
		return m, tea.Batch(
			m.refreshNowCmd(),
			m.previewCmd(),
			m.optimizerStatusCmd(),
		)
	}

	// Number keys jump straight to a tab.
	switch msg.String() {
	case "1":
		return m.switchTab(TabOverview)
	case "2":
		return m.switchTab(TabTasks)
	case "3":
		return m.switchTab(TabCleanup)
	case "4":
		return m.switchTab(TabOptimize)
	case "5":
		return m.switchTab(TabReport)
	}

	switch m.tab {
	case TabTasks:
		return m.handleTasksKey(msg)
	case TabCleanup:
		return m.handleCleanupKey(msg)
	case TabOptimize:
		return m.handleOptimizeKey(msg)
	case TabReport:
		return m.handleReportKey(msg)
	}
	return m, nil
}

// switchTab changes the active tab and triggers the loads the new tab
// depends on.
func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.tab = t
	switch t {
	case TabCleanup:
		if m.preview == nil && m.previewErr == "" {
			return m, m.previewCmd()
		}
	case TabOptimize:
		return m, m.optimizerStatusCmd()
	case TabReport:
		if !m.reportReady && m.reportErr == "" {
			return m, m.buildReportCmd()
		}
	}
	return m, nil
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.taskPanel.MoveUp()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.taskPanel.MoveDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		sel, ok := m.taskPanel.Selected()
		if !ok {
			return m, nil
		}
		if sel.Terminal() {
			m.toasts.AddWarning("Task already finished")
			return m, components.ToastTickCmd()
		}
		return m, m.cancelTaskCmd(sel.ID)

	case key.Matches(msg, m.keyMap.Dismiss):
		sel, ok := m.taskPanel.Selected()
		if !ok || !sel.Terminal() || m.manager == nil {
			return m, nil
		}
		m.manager.Acknowledge(sel.ID)
		m.refreshTasks()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleDone):
		m.showFinished = !m.showFinished
		m.taskPanel.SetShowSucceeded(m.showFinished)
		m.taskPanel.SetShowFailed(m.showFinished)
		m.taskPanel.SetShowCanceled(m.showFinished)
		return m, nil
	}
	return m, nil
}

func (m Model) handleCleanupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cleanCursor > 0 {
			m.cleanCursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.cleanCursor < len(m.cleanRows)-1 {
			m.cleanCursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.DryRun):
		m.setDryRun(!m.dryRun)
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		return m.confirmCleanup(m.cleanRows[m.cleanCursor])
	}
	return m, nil
}

func (m Model) handleOptimizeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.optimCursor > 0 {
			m.optimCursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.optimCursor < len(m.optimRows)-1 {
			m.optimCursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		return m.confirmOptimize(m.optimRows[m.optimCursor])
	}
	return m, nil
}

func (m Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Export) {
		if !m.reportReady {
			m.toasts.AddWarning("No report to export yet")
			return m, components.ToastTickCmd()
		}
		return m, m.exportReportCmd()
	}

	// The viewport handles scrolling keys itself.
	var cmd tea.Cmd
	m.reportView, cmd = m.reportView.Update(msg)
	return m, cmd
}

// =============================================================================
// CONFIRMATION FLOW
// =============================================================================

// confirmCleanup gates a cleanup submission behind the dialog. Dry runs
// delete nothing and skip straight to submission.
func (m Model) confirmCleanup(entry cleanupEntry) (tea.Model, tea.Cmd) {
	var submit tea.Cmd
	var id, title string

	if entry.all {
		id = "clean:all"
		title = "Run full cleanup?"
		submit = m.submitFullCleanupCmd()
	} else {
		id = "clean:" + entry.cat.String()
		title = fmt.Sprintf("Clean %s?", entry.cat.Title())
		submit = m.submitCleanCmd(entry.cat)
	}
	if submit == nil {
		m.toasts.AddError("Cleanup engine unavailable")
		return m, components.ToastTickCmd()
	}

	if m.dryRun {
		return m, submit
	}

	detail := "Files will be permanently removed."
	req := components.ConfirmRequest{
		ID:     id,
		Title:  title,
		Detail: detail,
		Items:  m.previewItems(entry),
		Danger: true,
	}
	m.pending = &pendingAction{id: id, submit: submit}
	m.confirm.Show(req)
	return m, nil
}

// previewItems renders the dry-run estimate lines for the dialog.
func (m Model) previewItems(entry cleanupEntry) []string {
	if m.preview == nil {
		return nil
	}
	if entry.all {
		items := make([]string, 0, len(m.preview.Categories)+1)
		for _, cp := range m.preview.Categories {
			if cp.FileCount == 0 && cp.Bytes == 0 {
				continue
			}
			items = append(items, fmt.Sprintf("%s: ~%d files, %s",
				cp.Category.Title(), cp.FileCount, util.FormatBytes(cp.Bytes)))
		}
		items = append(items, fmt.Sprintf("Total: ~%d files, %s",
			m.preview.TotalFiles, util.FormatBytes(m.preview.TotalBytes)))
		return items
	}
	for _, cp := range m.preview.Categories {
		if cp.Category == entry.cat {
			return []string{fmt.Sprintf("~%d files, %s",
				cp.FileCount, util.FormatBytes(cp.Bytes))}
		}
	}
	return nil
}

// confirmOptimize gates an optimization submission behind the dialog.
// Deactivating turbo restores saved settings and submits directly.
func (m Model) confirmOptimize(entry optimizeEntry) (tea.Model, tea.Cmd) {
	var submit tea.Cmd
	var id, title string
	var items []string
	danger := true

	switch entry.kind {
	case entryTurbo:
		active := m.optimStatus != nil && m.optimStatus.TurboActive
		if active {
			return m, m.submitTurboCmd(false)
		}
		id = "turbo:on"
		title = "Activate turbo mode?"
		items = []string{
			"Applies the gamer profile",
			"Saves current settings for restore",
		}
		danger = false
		submit = m.submitTurboCmd(true)

	case entryProfile:
		id = "profile:" + entry.profile.String()
		title = fmt.Sprintf("Apply the %s profile?", entry.profile.Title())
		for _, op := range entry.profile.Operations() {
			items = append(items, op.Title())
		}
		if plan := entry.profile.PowerPlan(); plan != "" {
			items = append(items, "Power plan: "+plan)
		}
		submit = m.submitProfileCmd(entry.profile)

	default:
		id = "optimize:" + entry.op.String()
		title = fmt.Sprintf("Run %s?", entry.op.Title())
		danger = operationIsDangerous(entry.op)
		submit = m.submitOperationCmd(entry.op)
	}

	if submit == nil {
		m.toasts.AddError("Optimizer unavailable")
		return m, components.ToastTickCmd()
	}

	req := components.ConfirmRequest{
		ID:     id,
		Title:  title,
		Detail: "System settings will be changed.",
		Items:  items,
		Danger: danger,
	}
	m.pending = &pendingAction{id: id, submit: submit}
	m.confirm.Show(req)
	return m, nil
}

// operationIsDangerous marks the operations that change persistent system
// configuration, as opposed to one-shot memory work.
func operationIsDangerous(op optimizer.Operation) bool {
	switch op {
	case optimizer.OpRAM, optimizer.OpBoost:
		return false
	default:
		return true
	}
}

func (m Model) handleConfirmResult(msg components.ConfirmResultMsg) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.pending = nil
	if pending == nil || pending.id != msg.ID {
		return m, nil
	}
	if !msg.Confirmed {
		return m, nil
	}
	return m, pending.submit
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.refreshTasks()

	cmds := []tea.Cmd{m.tickCmd()}

	// The spinner runs while anything is active.
	if m.manager != nil {
		counts := m.manager.Counts()
		active := counts.Running + counts.Pending
		if active > 0 && !m.spinner.IsActive() {
			cmds = append(cmds, m.spinner.Start())
		} else if active == 0 && m.spinner.IsActive() {
			m.spinner.Stop()
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSnapshot(msg MonitorSnapshotMsg) (tea.Model, tea.Cmd) {
	snap := msg.Snapshot
	if snap == nil {
		return m, nil
	}
	m.snapshot = snap

	m.cpuMeter.SetPercent(snap.CPU.Percent)
	m.cpuMeter.SetDetail(fmt.Sprintf("%d cores", snap.CPU.Cores))

	m.ramMeter.SetPercent(snap.Memory.Percent)
	m.ramMeter.SetDetail(fmt.Sprintf("%s / %s",
		util.FormatBytes(int64(snap.Memory.Used)),
		util.FormatBytes(int64(snap.Memory.Total))))

	m.diskMeter.SetPercent(snap.Disk.Percent)
	m.diskMeter.SetDetail(util.FormatBytes(int64(snap.Disk.Free)) + " free")

	m.procTable.SetProcesses(snap.Processes, snap.ProcessCount)
	m.statusBar.SetMemory(snap.Memory.Used, snap.Memory.Total)

	if m.sampler != nil {
		m.cpuHist, m.ramHist, m.diskHist = m.sampler.Histories()
	}
	return m, nil
}

func (m Model) handleTaskSubmitted(msg TaskSubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError(fmt.Sprintf("Could not start %s: %v", msg.Name, msg.Err))
		return m, components.ToastTickCmd()
	}
	m.refreshTasks()
	m.toasts.AddStatus(msg.Name + " started")

	cmds := []tea.Cmd{components.ToastTickCmd()}
	if !m.spinner.IsActive() {
		cmds = append(cmds, m.spinner.Start())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleTaskFinished(msg TaskFinishedMsg) (tea.Model, tea.Cmd) {
	m.refreshTasks()

	name := msg.ID
	if m.manager != nil {
		if snap, err := m.manager.Query(msg.ID); err == nil {
			name = snap.Name
		}
	}

	switch msg.State {
	case tasks.StateSucceeded:
		if refusal := refusalText(msg.Result); refusal != "" {
			m.toasts.AddWarning(name + ": " + refusal)
		} else {
			m.toasts.AddSuccess(name + ": " + outcomeSummary(msg.Result))
		}
	case tasks.StateCanceled:
		m.toasts.AddWarning(name + " canceled")
	default:
		text := msg.Err
		if text == "" {
			text = "failed"
		}
		m.toasts.AddError(name + ": " + text)
	}

	return m, tea.Batch(
		components.ToastTickCmd(),
		m.recordRunCmd(msg),
		m.previewCmd(),
		m.optimizerStatusCmd(),
	)
}

func (m Model) handlePreview(msg PreviewMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.previewErr = msg.Err.Error()
		m.toasts.AddWarning("Preview failed: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}
	rep := msg.Report
	m.preview = &rep
	m.previewErr = ""
	return m, nil
}

func (m Model) handleReport(msg ReportMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.reportErr = msg.Err.Error()
		m.reportReady = false
		return m, nil
	}
	m.reportMarkdown = msg.Markdown
	m.reportErr = ""
	m.reportReady = true
	m.reportView.SetContent(msg.Rendered)
	return m, nil
}

// =============================================================================
// OUTCOME TEXT
// =============================================================================

// refusalText extracts the domain refusal from a succeeded task's result,
// or "" when the work actually ran. Refusals (admin rights, wrong platform)
// ride inside the result, so the task itself reports Succeeded.
func refusalText(result any) string {
	code := ""
	switch res := result.(type) {
	case cleaner.Result:
		if !res.Success {
			code = res.Code
		}
	case optimizer.Result:
		if !res.Success {
			code = res.Code
		}
	}
	switch code {
	case "":
		return ""
	case winsys.CodeAdminRequired:
		return "administrator rights required"
	case winsys.CodeUnsupportedPlatform:
		return "only supported on Windows"
	default:
		return code
	}
}

// outcomeSummary builds the toast line for a succeeded task.
func outcomeSummary(result any) string {
	switch res := result.(type) {
	case cleaner.Result:
		if res.DryRun {
			return fmt.Sprintf("would remove %d files (%s)",
				res.FilesRemoved, util.FormatBytes(res.BytesFreed))
		}
		return fmt.Sprintf("%d files removed, %s freed",
			res.FilesRemoved, util.FormatBytes(res.BytesFreed))

	case cleaner.Summary:
		if res.DryRun {
			return fmt.Sprintf("would remove %d files (%s)",
				res.TotalFiles, util.FormatBytes(res.TotalBytes))
		}
		return fmt.Sprintf("%d files removed, %s freed",
			res.TotalFiles, util.FormatBytes(res.TotalBytes))

	case optimizer.Result:
		if res.RAM != nil && res.RAM.Freed > 0 {
			return fmt.Sprintf("%d changes, %s freed",
				res.Applied, util.FormatBytes(res.RAM.Freed))
		}
		return fmt.Sprintf("%d changes applied", res.Applied)

	case optimizer.ProfileSummary:
		return fmt.Sprintf("%d changes applied", res.Applied)

	default:
		return "done"
	}
}
