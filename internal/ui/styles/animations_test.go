// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rigtune TUI.
package styles

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SPINNER CONFIG TESTS
// =============================================================================

func TestSpinnerConfigs(t *testing.T) {
	spinners := []struct {
		name   string
		config SpinnerConfig
	}{
		{"BrailleSpinner", BrailleSpinner},
		{"DotsSpinner", DotsSpinner},
		{"LineSpinner", LineSpinner},
		{"ProgressSpinner", ProgressSpinner},
	}

	for _, s := range spinners {
		t.Run(s.name, func(t *testing.T) {
			if len(s.config.Frames) == 0 {
				t.Errorf("%s should have frames", s.name)
			}
			if s.config.FPS <= 0 {
				t.Errorf("%s FPS should be positive", s.name)
			}
		})
	}
}

func TestSpinnerConfigDuration(t *testing.T) {
	tests := []struct {
		name string
		fps  int
		want time.Duration
	}{
		{"12 FPS", 12, time.Second / 12},
		{"6 FPS", 6, time.Second / 6},
		{"10 FPS", 10, time.Second / 10},
		{"4 FPS", 4, time.Second / 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := SpinnerConfig{FPS: tc.fps}
			got := config.Duration()
			if got != tc.want {
				t.Errorf("Duration() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpinnerFrameWraps(t *testing.T) {
	s := LineSpinner

	// Frame should cycle through the frame list and wrap around
	for tick := 0; tick < len(s.Frames)*3; tick++ {
		want := s.Frames[tick%len(s.Frames)]
		if got := s.Frame(tick); got != want {
			t.Errorf("Frame(%d) = %q, want %q", tick, got, want)
		}
	}
}

func TestSpinnerFrameEdgeCases(t *testing.T) {
	// Negative ticks should not panic or index out of range
	s := BrailleSpinner
	if got := s.Frame(-7); got == "" {
		t.Error("Frame(-7) should return a frame, not empty")
	}

	// Empty frame list should return empty string, not panic
	empty := SpinnerConfig{FPS: 10}
	if got := empty.Frame(3); got != "" {
		t.Errorf("Frame() on empty config = %q, want empty", got)
	}
}

func TestBrailleSpinnerFrames(t *testing.T) {
	if len(BrailleSpinner.Frames) != 10 {
		t.Errorf("BrailleSpinner should have 10 frames, got %d", len(BrailleSpinner.Frames))
	}

	// Verify all frames are non-empty
	for i, frame := range BrailleSpinner.Frames {
		if frame == "" {
			t.Errorf("BrailleSpinner frame %d should not be empty", i)
		}
	}
}

func TestLineSpinnerFrames(t *testing.T) {
	if len(LineSpinner.Frames) != 4 {
		t.Errorf("LineSpinner should have 4 frames, got %d", len(LineSpinner.Frames))
	}

	// Verify expected frames
	expected := []string{"|", "/", "-", "\\"}
	for i, want := range expected {
		if LineSpinner.Frames[i] != want {
			t.Errorf("LineSpinner frame %d = %q, want %q", i, LineSpinner.Frames[i], want)
		}
	}
}

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestProgressBarCharacters(t *testing.T) {
	if ProgressFull == "" {
		t.Error("ProgressFull should be defined")
	}
	if ProgressEmpty == "" {
		t.Error("ProgressEmpty should be defined")
	}
	if len(ProgressPartial) == 0 {
		t.Error("ProgressPartial should have characters")
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		width   int
		percent float64
	}{
		{10, 0.0},
		{10, 25.0},
		{10, 50.0},
		{10, 75.0},
		{10, 100.0},
		{20, 33.333},
		{30, 66.666},
	}

	for _, tc := range tests {
		result := RenderProgressBar(tc.width, tc.percent)
		// Result should be close to the requested width
		// (may vary slightly due to partial blocks)
		runeCount := len([]rune(result))
		if runeCount < tc.width-1 || runeCount > tc.width+1 {
			t.Errorf("RenderProgressBar(%d, %.1f) length = %d, expected ~%d",
				tc.width, tc.percent, runeCount, tc.width)
		}
	}
}

func TestRenderProgressBarEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
	}{
		{"Zero width", 0, 50.0},
		{"Negative percent", 10, -10.0},
		{"Over 100 percent", 10, 150.0},
		{"Small width", 1, 50.0},
		{"Large width", 100, 50.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Should not panic
			result := RenderProgressBar(tc.width, tc.percent)
			_ = result
		})
	}
}

func TestRenderProgressBarBounds(t *testing.T) {
	// Test that negative percents are clamped to 0
	result := RenderProgressBar(10, -50.0)
	if !strings.Contains(result, ProgressEmpty) {
		t.Error("RenderProgressBar with negative percent should show empty bar")
	}

	// Test that >100% is clamped to 100
	result = RenderProgressBar(10, 200.0)
	if !strings.Contains(result, ProgressFull) {
		t.Error("RenderProgressBar with >100% should show full bar")
	}
}

func TestRenderProgressBarFullAndEmpty(t *testing.T) {
	// A full bar contains no empty characters
	full := RenderProgressBar(10, 100)
	if strings.Contains(full, ProgressEmpty) {
		t.Errorf("full bar %q should not contain %q", full, ProgressEmpty)
	}

	// An empty bar contains no full characters
	empty := RenderProgressBar(10, 0)
	if strings.Contains(empty, ProgressFull) {
		t.Errorf("empty bar %q should not contain %q", empty, ProgressFull)
	}
}

// =============================================================================
// TREE CONNECTOR TESTS
// =============================================================================

func TestTreeChars(t *testing.T) {
	if TreeChars.Pipe == "" || TreeChars.Tee == "" || TreeChars.Corner == "" || TreeChars.Dash == "" {
		t.Error("All tree characters should be defined")
	}
}

func TestRenderTreeLine(t *testing.T) {
	middle := RenderTreeLine(false)
	last := RenderTreeLine(true)

	if middle == last {
		t.Error("Middle and last tree lines should differ")
	}

	if !strings.HasPrefix(middle, TreeChars.Tee) {
		t.Errorf("Middle tree line %q should start with tee %q", middle, TreeChars.Tee)
	}
	if !strings.HasPrefix(last, TreeChars.Corner) {
		t.Errorf("Last tree line %q should start with corner %q", last, TreeChars.Corner)
	}
}
