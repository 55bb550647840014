// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rigtune TUI.
package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// BrailleSpinner - Smooth ASCII spinner for running tasks
var BrailleSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\", "|", "/", "-", "\\", "|", "/"},
	FPS:    12,
}

// DotsSpinner - Classic three-dot animation
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// LineSpinner - Simple line rotation
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// ProgressSpinner - Progress dots for long-running sweeps
var ProgressSpinner = SpinnerConfig{
	Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]", "[ ===]", "[  ==]", "[   =]"},
	FPS:    4,
}

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// Frame returns the frame for an arbitrary tick counter.
// Callers advance the counter on every tick and never worry about bounds.
func (s SpinnerConfig) Frame(tick int) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if tick < 0 {
		tick = -tick
	}
	return s.Frames[tick%len(s.Frames)]
}

// =============================================================================
// PROGRESS INDICATORS
// =============================================================================

// ProgressBar characters for resource meters and task progress displays.
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+", "#", "#", "#", "#"}
)

// RenderProgressBar creates a progress bar string.
// width: total width of the bar in characters
// percent: 0-100 percentage complete
func RenderProgressBar(width int, percent float64) string {
	// Handle invalid width
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filledWidth := float64(width) * percent / 100
	fullBlocks := int(filledWidth)
	partialIndex := int((filledWidth - float64(fullBlocks)) * float64(len(ProgressPartial)))

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	var sb strings.Builder
	sb.Grow(width * 3) // Pre-allocate for Unicode characters (up to 3 bytes each)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}

	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}

	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}

	return sb.String()
}

// =============================================================================
// TREE CONNECTORS
// =============================================================================

// TreeChars for rendering tree structures (like cleanup category breakdowns)
var TreeChars = struct {
	Pipe   string
	Tee    string
	Corner string
	Dash   string
}{
	Pipe:   "|",
	Tee:    "+",
	Corner: "`",
	Dash:   "-",
}

// RenderTreeLine creates a tree line prefix.
// isLast: true if this is the last item in the list
func RenderTreeLine(isLast bool) string {
	if isLast {
		return TreeChars.Corner + TreeChars.Dash + " "
	}
	return TreeChars.Tee + TreeChars.Dash + " "
}
