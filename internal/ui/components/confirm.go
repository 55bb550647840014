// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION DIALOG
// =============================================================================

// ConfirmRequest describes an operation awaiting user consent.
type ConfirmRequest struct {
	// ID is echoed back in the ConfirmResultMsg so the caller can match
	// the decision to the pending operation.
	ID     string
	Title  string   // e.g. "Apply power plan"
	Detail string   // e.g. "Switch the active plan to Ultimate Performance"
	Items  []string // affected objects: service names, cache paths
	Danger bool     // true for operations that delete or overwrite
}

// ConfirmResultMsg reports the user's decision on a confirmation dialog.
type ConfirmResultMsg struct {
	ID        string
	Confirmed bool
}

// ConfirmDialog displays a modal dialog before destructive operations run.
type ConfirmDialog struct {
	req ConfirmRequest

	// UI state
	visible  bool
	selected int // 0=Confirm, 1=Cancel
	width    int
	height   int

	theme *styles.Theme
}

// Button options
const (
	ButtonConfirm = 0
	ButtonCancel  = 1
	buttonCount   = 2
)

// maxConfirmItems caps how many affected objects the dialog lists.
const maxConfirmItems = 8

// NewConfirmDialog creates a new confirmation dialog.
func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{
		theme:    theme,
		selected: ButtonCancel,
	}
}

// =============================================================================
// DIALOG METHODS
// =============================================================================

// Show displays the dialog for a pending operation. The cursor starts on
// Cancel so a stray Enter never runs a destructive operation.
func (c *ConfirmDialog) Show(req ConfirmRequest) {
	c.req = req
	c.visible = true
	c.selected = ButtonCancel
}

// Hide hides the dialog.
func (c *ConfirmDialog) Hide() {
	c.visible = false
	c.req = ConfirmRequest{}
}

// IsVisible returns whether the dialog is visible.
func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

// SetSize updates the dialog dimensions.
func (c *ConfirmDialog) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// =============================================================================
// BUBBLE TEA METHODS
// =============================================================================

// Update handles key events. The second return reports whether the dialog
// consumed the message.
func (c *ConfirmDialog) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !c.visible {
		return nil, false
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			c.selected = (c.selected - 1 + buttonCount) % buttonCount
			return nil, true

		case "right", "l":
			c.selected = (c.selected + 1) % buttonCount
			return nil, true

		case "tab":
			c.selected = (c.selected + 1) % buttonCount
			return nil, true

		case "shift+tab":
			c.selected = (c.selected - 1 + buttonCount) % buttonCount
			return nil, true

		case "enter", " ":
			return c.handleSelect(), true

		case "esc", "n":
			// Cancel and close
			id := c.req.ID // Capture before Hide clears it
			c.Hide()
			return func() tea.Msg {
				return ConfirmResultMsg{ID: id, Confirmed: false}
			}, true

		case "y":
			// Quick confirm
			c.selected = ButtonConfirm
			return c.handleSelect(), true
		}
	}

	return nil, false
}

// handleSelect processes the current selection.
func (c *ConfirmDialog) handleSelect() tea.Cmd {
	id := c.req.ID
	confirmed := c.selected == ButtonConfirm

	c.Hide()

	return func() tea.Msg {
		return ConfirmResultMsg{ID: id, Confirmed: confirmed}
	}
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the dialog.
func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	// Calculate dimensions
	boxWidth := 60
	if c.width > 0 && c.width < 80 {
		boxWidth = c.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	// Build content
	var content strings.Builder

	// Title colored by severity
	titleStyle := c.theme.ConfirmTitle
	if c.req.Danger {
		titleStyle = titleStyle.Foreground(styles.Rose)
	}
	content.WriteString(titleStyle.Render(c.req.Title))
	content.WriteString("\n\n")

	// Detail
	if c.req.Detail != "" {
		content.WriteString(c.theme.ConfirmDetail.Render(c.req.Detail))
		content.WriteString("\n\n")
	}

	// Affected objects box
	if len(c.req.Items) > 0 {
		itemsBox := lipgloss.NewStyle().
			Background(styles.SurfaceDim).
			Foreground(styles.TextPrimary).
			Padding(0, 1).
			Width(boxWidth - 6).
			Render(c.renderItems())

		content.WriteString(itemsBox)
		content.WriteString("\n\n")
	}

	// Buttons
	content.WriteString(c.renderButtons())

	// Keyboard hints
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("y=Confirm  n=Cancel  Tab=Navigate"))

	// Main box
	boxStyle := c.theme.ConfirmBox.Width(boxWidth)
	if c.req.Danger {
		boxStyle = boxStyle.BorderForeground(styles.Rose)
	}

	box := boxStyle.Render(content.String())

	// Center in terminal
	if c.width > 0 && c.height > 0 {
		return lipgloss.Place(
			c.width, c.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return box
}

// renderItems renders the affected-object list, capped with an overflow line.
func (c *ConfirmDialog) renderItems() string {
	var builder strings.Builder

	itemStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	count := len(c.req.Items)
	shown := count
	if shown > maxConfirmItems {
		shown = maxConfirmItems
	}

	for i := 0; i < shown; i++ {
		builder.WriteString(itemStyle.Render("- " + truncateWidth(c.req.Items[i], 50)))
		builder.WriteString("\n")
	}

	if count > shown {
		moreStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
		builder.WriteString(moreStyle.Render(fmt.Sprintf("... and %d more", count-shown)))
		builder.WriteString("\n")
	}

	return strings.TrimSuffix(builder.String(), "\n")
}

// renderButtons renders the button row.
func (c *ConfirmDialog) renderButtons() string {
	confirmActive := c.theme.ConfirmButtonActive
	if c.req.Danger {
		confirmActive = confirmActive.Background(styles.Rose)
	}

	var buttons []string

	// Confirm button
	if c.selected == ButtonConfirm {
		buttons = append(buttons, confirmActive.Render("Confirm"))
	} else {
		buttons = append(buttons, c.theme.ConfirmButton.Render("Confirm"))
	}

	// Cancel button
	if c.selected == ButtonCancel {
		buttons = append(buttons, c.theme.ConfirmButtonActive.Render("Cancel"))
	} else {
		buttons = append(buttons, c.theme.ConfirmButton.Render("Cancel"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}
