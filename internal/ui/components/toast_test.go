// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// TOAST CONSTRUCTION TESTS
// =============================================================================

func TestNewErrorToast(t *testing.T) {
	toast := NewErrorToast("Administrator rights required")

	if toast.Kind != ToastKindError {
		t.Errorf("kind = %v, want ToastKindError", toast.Kind)
	}
	if toast.Duration != ErrorToastDuration {
		t.Errorf("duration = %v, want %v", toast.Duration, ErrorToastDuration)
	}
	if !toast.Dismissible {
		t.Error("error toasts should be dismissible")
	}
	if toast.ID == 0 {
		t.Error("toast should receive a non-zero ID")
	}
}

func TestToastConstructors(t *testing.T) {
	tests := []struct {
		name     string
		toast    Toast
		kind     ToastKind
		duration time.Duration
	}{
		{"error", NewErrorToast("failed"), ToastKindError, ErrorToastDuration},
		{"warning", NewWarningToast("running without admin"), ToastKindWarning, WarningToastDuration},
		{"status", NewStatusToast("scan queued"), ToastKindStatus, DefaultToastDuration},
		{"success", NewSuccessToast("Freed 2.1 GB"), ToastKindSuccess, DefaultToastDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.toast.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.toast.Kind, tt.kind)
			}
			if tt.toast.Duration != tt.duration {
				t.Errorf("duration = %v, want %v", tt.toast.Duration, tt.duration)
			}
		})
	}
}

func TestNewRetryableErrorToast(t *testing.T) {
	toast := NewRetryableErrorToast("Set DNS servers failed")

	if !toast.ShowRetry {
		t.Error("retryable toast should carry the retry flag")
	}
	if toast.Kind != ToastKindError {
		t.Error("retryable toast should be an error toast")
	}
}

func TestToastIDsUnique(t *testing.T) {
	a := NewErrorToast("one")
	b := NewErrorToast("two")

	if a.ID == b.ID {
		t.Error("consecutive toasts should receive distinct IDs")
	}
}

// =============================================================================
// EXPIRY TESTS
// =============================================================================

func TestToastExpiry(t *testing.T) {
	toast := NewStatusToast("short lived")
	toast.CreatedAt = time.Now().Add(-10 * time.Second)

	if !toast.IsExpired() {
		t.Error("toast past its duration should be expired")
	}
	if toast.TimeRemaining() != 0 {
		t.Error("expired toast should report zero time remaining")
	}
}

func TestToastNotExpired(t *testing.T) {
	toast := NewErrorToast("fresh")

	if toast.IsExpired() {
		t.Error("fresh toast should not be expired")
	}
	if toast.TimeRemaining() == 0 {
		t.Error("fresh toast should have time remaining")
	}
}

// =============================================================================
// TOAST MANAGER TESTS
// =============================================================================

func TestNewToastManager(t *testing.T) {
	m := NewToastManager()

	if m == nil {
		t.Fatal("NewToastManager returned nil")
	}
	if m.HasToasts() {
		t.Error("new manager should have no toasts")
	}
}

func TestToastManagerAdd(t *testing.T) {
	m := NewToastManager()

	id := m.AddSuccess("Freed 2.1 GB")
	if id == 0 {
		t.Error("AddSuccess should return a non-zero ID")
	}
	if !m.HasToasts() {
		t.Error("manager should have toasts after add")
	}

	toasts := m.GetToasts()
	if len(toasts) != 1 {
		t.Fatalf("toast count = %d, want 1", len(toasts))
	}
	if toasts[0].Message != "Freed 2.1 GB" {
		t.Errorf("message = %q", toasts[0].Message)
	}
}

func TestToastManagerNewestFirst(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("first")
	m.AddStatus("second")

	toasts := m.GetToasts()
	if toasts[0].Message != "second" {
		t.Error("newest toast should be first")
	}
}

func TestToastManagerCapsCount(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddStatus("toast")
	}

	if len(m.GetToasts()) != 5 {
		t.Errorf("toast count = %d, want cap of 5", len(m.GetToasts()))
	}
}

func TestToastManagerRemove(t *testing.T) {
	m := NewToastManager()
	id := m.AddError("oops")
	m.AddError("other")

	m.RemoveToast(id)

	toasts := m.GetToasts()
	if len(toasts) != 1 {
		t.Fatalf("toast count after remove = %d, want 1", len(toasts))
	}
	if toasts[0].ID == id {
		t.Error("removed toast should be gone")
	}
}

func TestToastManagerTickDropsExpired(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("keeper")

	expired := NewStatusToast("goner")
	expired.CreatedAt = time.Now().Add(-time.Minute)
	m.AddToast(expired)

	remaining := m.TickToasts()
	if len(remaining) != 1 {
		t.Fatalf("toast count after tick = %d, want 1", len(remaining))
	}
	if remaining[0].Message != "keeper" {
		t.Error("tick should keep unexpired toasts")
	}
}

func TestToastManagerClear(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("a")
	m.AddStatus("b")

	m.Clear()
	if m.HasToasts() {
		t.Error("manager should be empty after Clear")
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderToast(t *testing.T) {
	toast := NewSuccessToast("Freed 2.1 GB from temp files")
	out := RenderToast(toast, 100)

	if !strings.Contains(out, "Freed 2.1 GB") {
		t.Error("rendered toast should contain the message")
	}
	if !strings.Contains(out, "[x] Dismiss") {
		t.Error("dismissible toast should show the dismiss hint")
	}
}

func TestRenderToastRetryHint(t *testing.T) {
	toast := NewRetryableErrorToast("Apply power plan failed")
	out := RenderToast(toast, 100)

	if !strings.Contains(out, "[r] Retry") {
		t.Error("retryable toast should show the retry hint")
	}
}

func TestRenderToastStack(t *testing.T) {
	toasts := []Toast{
		NewErrorToast("one"),
		NewSuccessToast("two"),
	}

	out := RenderToastStack(toasts, 120, 40)
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Error("stack should contain every toast")
	}
}

func TestRenderToastStackEmpty(t *testing.T) {
	if out := RenderToastStack(nil, 120, 40); out != "" {
		t.Error("empty stack should render nothing")
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestWrapToastText(t *testing.T) {
	wrapped := wrapToastText("the quick brown fox jumps over the lazy dog", 15)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 15 {
			t.Errorf("wrapped line %q exceeds width", line)
		}
	}

	// Degenerate widths pass text through
	if got := wrapToastText("unchanged", 0); got != "unchanged" {
		t.Errorf("zero width wrap = %q", got)
	}
}
