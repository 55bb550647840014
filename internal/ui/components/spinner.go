// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a customizable loading spinner component.
type Spinner struct {
	// Core spinner from bubbles
	spinner spinner.Model

	// Configuration
	style     SpinnerStyle
	message   string
	detail    string
	startTime time.Time

	// State
	isActive  bool
	showTimer bool
}

// SpinnerStyle defines the visual style for the spinner.
type SpinnerStyle int

const (
	SpinnerLine  SpinnerStyle = iota // Line rotation (default)
	SpinnerDots                      // Classic dots
	SpinnerPulse                     // Pulsing circle
	SpinnerBlock                     // Block animation
)

// NewSpinner creates a new spinner with default ASCII-compatible settings.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Spinner{
		spinner:   s,
		style:     SpinnerLine,
		message:   "Working",
		showTimer: true,
	}
}

// NewSpinnerWithStyle creates a spinner with a specific style.
func NewSpinnerWithStyle(style SpinnerStyle) Spinner {
	s := NewSpinner()
	s.SetStyle(style)
	return s
}

// NewScanSpinner creates a spinner for scan operations.
func NewScanSpinner() Spinner {
	s := NewSpinner()
	s.message = "Scanning"
	s.showTimer = true
	return s
}

// NewApplySpinner creates a spinner for apply operations.
func NewApplySpinner() Spinner {
	s := NewSpinnerWithStyle(SpinnerBlock)
	s.message = "Applying changes"
	s.showTimer = true
	return s
}

// =============================================================================
// STYLE CONFIGURATION
// =============================================================================

// SetStyle changes the spinner animation style (ASCII-compatible styles).
func (s *Spinner) SetStyle(style SpinnerStyle) {
	s.style = style

	switch style {
	case SpinnerLine:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"|", "/", "-", "\\"},
			FPS:    time.Second / 10,
		}
	case SpinnerDots:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
			FPS:    time.Second / 6,
		}
	case SpinnerPulse:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"( )", "(o)", "(O)", "(o)"},
			FPS:    time.Second / 8,
		}
	case SpinnerBlock:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]", "[ ===]", "[  ==]", "[   =]"},
			FPS:    time.Second / 15,
		}
	}
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// GetElapsed returns the duration since the spinner started.
func (s *Spinner) GetElapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the spinner.
func (s Spinner) Init() tea.Cmd {
	return nil
}

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	// Spinner character
	spinnerView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render(s.spinner.View())

	// Message text
	messageView := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(s.message)

	// Animated dots
	dotsView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("...")

	result := spinnerView + " " + messageView + dotsView

	// Add timer if enabled
	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(elapsed) + ")")
		result += timerView
	}

	// Add detail if present
	if s.detail != "" {
		detailView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2).
			Render(s.detail)
		result += "\n" + detailView
	}

	return result
}

// =============================================================================
// TASK SPINNER
// =============================================================================

// TaskSpinner tracks a running background task and renders its live
// progress. The dashboard routes status text updates into the detail line.
type TaskSpinner struct {
	spinner Spinner
	taskID  string
}

// NewTaskSpinner creates a spinner bound to a background task.
func NewTaskSpinner(taskID, taskName string) TaskSpinner {
	s := NewSpinner()
	s.SetMessage(taskName)
	s.SetShowTimer(true)

	return TaskSpinner{
		spinner: s,
		taskID:  taskID,
	}
}

// TaskID returns the bound task identifier.
func (t TaskSpinner) TaskID() string {
	return t.taskID
}

// Start begins the animation.
func (t *TaskSpinner) Start() tea.Cmd {
	return t.spinner.Start()
}

// Stop ends the animation.
func (t *TaskSpinner) Stop() {
	t.spinner.Stop()
}

// SetPhase sets the phase detail (e.g. "scanning shader cache").
func (t *TaskSpinner) SetPhase(phase string) {
	t.spinner.SetDetail(phase)
}

// IsActive returns whether the task spinner is running.
func (t *TaskSpinner) IsActive() bool {
	return t.spinner.IsActive()
}

// GetElapsed returns time since the task started spinning.
func (t *TaskSpinner) GetElapsed() time.Duration {
	return t.spinner.GetElapsed()
}

// Update handles messages.
func (t TaskSpinner) Update(msg tea.Msg) (TaskSpinner, tea.Cmd) {
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the task spinner.
func (t TaskSpinner) View() string {
	return t.spinner.View()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return toStr(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	return toStr(minutes) + "m " + toStr(secs) + "s"
}
