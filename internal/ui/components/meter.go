// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// RESOURCE METER COMPONENT
// =============================================================================

// Meter renders a labeled resource gauge for the overview pane.
// The bar color follows the shared meter thresholds so CPU, memory and
// disk readings at the same level always look the same.
type Meter struct {
	theme   *styles.Theme
	label   string
	percent float64
	detail  string
	width   int
}

// NewMeter creates a meter with the given label (e.g. "CPU", "RAM").
func NewMeter(theme *styles.Theme, label string) *Meter {
	return &Meter{
		theme: theme,
		label: label,
		width: 60,
	}
}

// SetPercent updates the gauge value. Values are clamped to 0-100.
func (m *Meter) SetPercent(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	m.percent = percent
}

// SetDetail sets the trailing detail text (e.g. "12.3 GB/32.0 GB").
func (m *Meter) SetDetail(detail string) {
	m.detail = detail
}

// SetWidth sets the total rendered width.
func (m *Meter) SetWidth(width int) {
	m.width = width
}

// Percent returns the current gauge value.
func (m *Meter) Percent() float64 {
	return m.percent
}

// View renders the meter as a single line:
//
//	CPU    [##########----------]  43.2%  8 cores
func (m *Meter) View() string {
	label := m.theme.MeterLabel.Render(m.label)

	percentStr := fmt.Sprintf("%6s", fmtPercent(m.percent))
	percentPart := lipgloss.NewStyle().
		Foreground(styles.MeterColor(m.percent)).
		Bold(true).
		Render(percentStr)

	detailPart := ""
	if m.detail != "" {
		detailPart = "  " + lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(m.detail)
	}

	// Everything that is not bar: label column, percent column, detail, spacing
	reserved := lipgloss.Width(label) + 1 + len(percentStr) + 1
	if m.detail != "" {
		reserved += lipgloss.Width(m.detail) + 2
	}

	barWidth := m.width - reserved
	if barWidth < 10 {
		barWidth = 10
	}

	bar := lipgloss.NewStyle().
		Foreground(styles.MeterColor(m.percent)).
		Render(styles.RenderProgressBar(barWidth, m.percent))

	return label + " " + bar + " " + percentPart + detailPart
}

// =============================================================================
// SPARKLINE
// =============================================================================

// sparkLevels are the fill characters from empty to full (ASCII-compatible).
var sparkLevels = []string{" ", ".", ":", "-", "=", "+", "*", "#"}

// RenderSparkline renders a fixed-width history strip from percentage
// samples. Only the most recent samples that fit the width are drawn;
// missing history on the left is padded with spaces.
func RenderSparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}

	// Keep the newest samples
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for i := 0; i < width-len(values); i++ {
		b.WriteString(" ")
	}
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(sparkLevels)-1))
		b.WriteString(sparkLevels[idx])
	}

	return b.String()
}
