// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigtune/internal/ui/styles"
)

func testConfirmRequest() ConfirmRequest {
	return ConfirmRequest{
		ID:     "svc_tune",
		Title:  "Tune services",
		Detail: "Stop and disable 4 background services",
		Items:  []string{"DiagTrack", "SysMain", "WSearch", "Fax"},
		Danger: true,
	}
}

// =============================================================================
// VISIBILITY TESTS
// =============================================================================

func TestNewConfirmDialog(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)

	if c == nil {
		t.Fatal("NewConfirmDialog returned nil")
	}

	if c.IsVisible() {
		t.Error("dialog should start hidden")
	}

	if c.View() != "" {
		t.Error("hidden dialog should render nothing")
	}
}

func TestConfirmDialogShowHide(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)

	c.Show(testConfirmRequest())
	if !c.IsVisible() {
		t.Error("dialog should be visible after Show")
	}

	// Cursor must start on Cancel so Enter alone never destroys anything
	if c.selected != ButtonCancel {
		t.Error("cursor should start on Cancel")
	}

	c.Hide()
	if c.IsVisible() {
		t.Error("dialog should be hidden after Hide")
	}
}

// =============================================================================
// KEY HANDLING TESTS
// =============================================================================

func TestConfirmDialogIgnoresKeysWhenHidden(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)

	cmd, handled := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if handled {
		t.Error("hidden dialog should not consume keys")
	}
	if cmd != nil {
		t.Error("hidden dialog should not emit commands")
	}
}

func TestConfirmDialogQuickConfirm(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	cmd, handled := c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if !handled {
		t.Fatal("y should be consumed")
	}
	if cmd == nil {
		t.Fatal("y should emit a decision")
	}

	msg := cmd()
	result, ok := msg.(ConfirmResultMsg)
	if !ok {
		t.Fatalf("expected ConfirmResultMsg, got %T", msg)
	}
	if !result.Confirmed {
		t.Error("y should confirm")
	}
	if result.ID != "svc_tune" {
		t.Errorf("result ID = %q, want svc_tune", result.ID)
	}

	if c.IsVisible() {
		t.Error("dialog should close after a decision")
	}
}

func TestConfirmDialogEscapeCancels(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	cmd, handled := c.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if !handled {
		t.Fatal("escape should be consumed")
	}

	msg := cmd()
	result, ok := msg.(ConfirmResultMsg)
	if !ok {
		t.Fatalf("expected ConfirmResultMsg, got %T", msg)
	}
	if result.Confirmed {
		t.Error("escape should cancel")
	}
	if result.ID != "svc_tune" {
		t.Error("cancel result should still carry the request ID")
	}
}

func TestConfirmDialogEnterOnDefaultCancels(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	// Enter without navigation lands on Cancel
	cmd, _ := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := cmd().(ConfirmResultMsg)
	if result.Confirmed {
		t.Error("enter on the default selection must not confirm")
	}
}

func TestConfirmDialogNavigateThenConfirm(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	// Tab wraps from Cancel to Confirm
	if _, handled := c.Update(tea.KeyMsg{Type: tea.KeyTab}); !handled {
		t.Fatal("tab should be consumed")
	}
	if c.selected != ButtonConfirm {
		t.Fatal("tab should move the cursor to Confirm")
	}

	cmd, _ := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := cmd().(ConfirmResultMsg)
	if !result.Confirmed {
		t.Error("enter on Confirm should confirm")
	}
}

func TestConfirmDialogArrowNavigation(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	c.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if c.selected != ButtonConfirm {
		t.Error("left from Cancel should wrap to Confirm")
	}

	c.Update(tea.KeyMsg{Type: tea.KeyRight})
	if c.selected != ButtonCancel {
		t.Error("right from Confirm should move to Cancel")
	}
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestConfirmDialogView(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(testConfirmRequest())

	view := c.View()

	if !strings.Contains(view, "Tune services") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(view, "Stop and disable 4 background services") {
		t.Error("view should contain the detail")
	}
	for _, svc := range []string{"DiagTrack", "SysMain", "WSearch"} {
		if !strings.Contains(view, svc) {
			t.Errorf("view should list affected service %q", svc)
		}
	}
	if !strings.Contains(view, "Confirm") {
		t.Error("view should contain the Confirm button")
	}
	if !strings.Contains(view, "Cancel") {
		t.Error("view should contain the Cancel button")
	}
	if !strings.Contains(view, "y=Confirm") {
		t.Error("view should contain keyboard hints")
	}
}

func TestConfirmDialogViewCapsItems(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)

	req := testConfirmRequest()
	req.Items = []string{
		"one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine", "ten",
	}
	c.Show(req)

	view := c.View()
	if !strings.Contains(view, "and 2 more") {
		t.Error("view should fold items beyond the cap into an overflow line")
	}
	if strings.Contains(view, "ten") {
		t.Error("items beyond the cap should not be listed")
	}
}

func TestConfirmDialogViewNoItems(t *testing.T) {
	theme := styles.NewTheme()
	c := NewConfirmDialog(theme)
	c.Show(ConfirmRequest{ID: "plan", Title: "Apply power plan"})

	view := c.View()
	if !strings.Contains(view, "Apply power plan") {
		t.Error("view should render without detail or items")
	}
}
