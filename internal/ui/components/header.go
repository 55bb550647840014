// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with rigtune branding
// =============================================================================

// Header represents the title bar component.
type Header struct {
	Title    string // Main title (default: "rigtune")
	Hostname string // Machine name shown in the subtitle
	Plan     string // Active power plan name
	Admin    bool   // True when the process runs elevated
	DryRun   bool   // True when destructive operations are simulated
	Width    int    // Available width
	theme    *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "rigtune",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetHost updates the machine name shown in the subtitle.
func (h *Header) SetHost(hostname string) {
	h.Hostname = hostname
}

// SetPlan updates the active power plan name.
func (h *Header) SetPlan(plan string) {
	h.Plan = plan
}

// SetAdmin updates the elevation state.
func (h *Header) SetAdmin(admin bool) {
	h.Admin = admin
}

// SetDryRun updates the dry-run state.
func (h *Header) SetDryRun(on bool) {
	h.DryRun = on
}

// View renders the boxed two-line header.
func (h *Header) View() string {
	// Ensure minimum width
	width := h.Width
	if width < 40 {
		width = 40
	}

	// Calculate inner width (accounting for borders and padding)
	innerWidth := width - 6

	// Brand title, gradient when the terminal can show it
	accentStyle := lipgloss.NewStyle().
		Foreground(styles.Purple)

	var title string
	if h.theme != nil && h.theme.HasTrueColor {
		title = GradientTitle(h.Title,
			lipgloss.Color(styles.GradientStart.Dark),
			lipgloss.Color(styles.GradientEnd.Dark))
	} else {
		title = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan).
			Render(h.Title)
	}

	brand := accentStyle.Render("< ") + title + accentStyle.Render(" >")

	// Subtitle line with host, plan, and elevation state
	subtitleParts := []string{}

	if h.Hostname != "" {
		hostStyle := lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
		subtitleParts = append(subtitleParts, hostStyle.Render(h.Hostname))
	}

	if h.Plan != "" {
		planStyle := h.getPlanStyle()
		subtitleParts = append(subtitleParts, planStyle.Render("["+strings.ToUpper(h.Plan)+"]"))
	}

	subtitleParts = append(subtitleParts, h.adminBadge())

	if h.DryRun {
		dryBadge := lipgloss.NewStyle().
			Background(styles.Amber).
			Foreground(styles.TextInverse).
			Bold(true).
			Padding(0, 1).
			Render("DRY RUN")
		subtitleParts = append(subtitleParts, dryBadge)
	}

	subtitle := strings.Join(subtitleParts, " ")

	// Center the content
	brandLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Render(brand)

	subtitleLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Foreground(styles.TextMuted).
		Render(subtitle)

	// Combine lines
	content := lipgloss.JoinVertical(lipgloss.Center, brandLine, subtitleLine)

	// Apply the border and styling
	headerBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.SurfaceDim).
		Padding(0, 2).
		Width(width)

	return headerBox.Render(content)
}

// ViewCompact renders a compact single-line header for narrow terminals.
func (h *Header) ViewCompact() string {
	// Compact format: <rigtune> | host | [PLAN] | [ADMIN]
	brandStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan)

	accentStyle := lipgloss.NewStyle().
		Foreground(styles.Purple)

	brand := accentStyle.Render("<") +
		brandStyle.Render(h.Title) +
		accentStyle.Render(">")

	parts := []string{brand}

	if h.Hostname != "" {
		hostStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted)
		parts = append(parts, hostStyle.Render(h.Hostname))
	}

	if h.Plan != "" {
		planStyle := h.getPlanStyle()
		parts = append(parts, planStyle.Render("["+strings.ToUpper(h.Plan)+"]"))
	}

	parts = append(parts, h.adminBadge())

	if h.DryRun {
		dryBadge := lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true).
			Render("[DRY RUN]")
		parts = append(parts, dryBadge)
	}

	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	return strings.Join(parts, separator)
}

// adminBadge renders the elevation indicator. Most tuning operations need
// administrator rights, so the missing-rights state gets the louder color.
func (h *Header) adminBadge() string {
	if h.Admin {
		return lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true).
			Render("[ADMIN]")
	}
	return lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Render("[USER]")
}

// getPlanStyle returns the appropriate style for the active power plan.
func (h *Header) getPlanStyle() lipgloss.Style {
	switch strings.ToLower(h.Plan) {
	case "maximum", "ultimate":
		return lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)
	case "high":
		return lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
	case "balanced":
		return lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted)
	}
}

// =============================================================================
// GRADIENT TITLE (for terminals with true color support)
// =============================================================================

// GradientTitle creates a gradient text effect.
// Note: This works best in terminals with true color support.
func GradientTitle(text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}

	// For short text, just use the start color
	if len(text) < 3 {
		return lipgloss.NewStyle().Foreground(startColor).Render(text)
	}

	// Build gradient character by character
	var result strings.Builder
	chars := []rune(text)
	n := len(chars)

	for i, char := range chars {
		// Calculate interpolation factor
		t := float64(i) / float64(n-1)

		// Interpolate colors (simplified - works for hex colors)
		color := interpolateColor(startColor, endColor, t)

		style := lipgloss.NewStyle().Foreground(color)
		result.WriteString(style.Render(string(char)))
	}

	return result.String()
}

// interpolateColor interpolates between two colors
// This is a simplified version that works for the gradient effect
func interpolateColor(start, end lipgloss.Color, t float64) lipgloss.Color {
	// Extract RGB values from hex colors
	startHex := string(start)
	endHex := string(end)

	// Handle # prefix
	if len(startHex) > 0 && startHex[0] == '#' {
		startHex = startHex[1:]
	}
	if len(endHex) > 0 && endHex[0] == '#' {
		endHex = endHex[1:]
	}

	// Parse hex colors (default to white if parsing fails)
	sr, sg, sb := parseHexColor(startHex)
	er, eg, eb := parseHexColor(endHex)

	// Interpolate each channel
	r := uint8(float64(sr) + t*(float64(er)-float64(sr)))
	g := uint8(float64(sg) + t*(float64(eg)-float64(sg)))
	b := uint8(float64(sb) + t*(float64(eb)-float64(sb)))

	// Format as hex color
	return lipgloss.Color(formatHexColor(r, g, b))
}

// parseHexColor parses a hex color string into RGB components
func parseHexColor(hex string) (r, g, b uint8) {
	if len(hex) < 6 {
		return 255, 255, 255 // Default to white
	}

	// Parse each component
	r = parseHexByte(hex[0:2])
	g = parseHexByte(hex[2:4])
	b = parseHexByte(hex[4:6])
	return
}

// parseHexByte parses a two-character hex string into a byte
func parseHexByte(s string) uint8 {
	if len(s) != 2 {
		return 255
	}

	var result uint8
	for _, c := range s {
		result *= 16
		switch {
		case c >= '0' && c <= '9':
			result += uint8(c - '0')
		case c >= 'a' && c <= 'f':
			result += uint8(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			result += uint8(c - 'A' + 10)
		default:
			return 255
		}
	}
	return result
}

// formatHexColor formats RGB values as a hex color string
func formatHexColor(r, g, b uint8) string {
	const hexChars = "0123456789ABCDEF"
	return "#" +
		string(hexChars[r>>4]) + string(hexChars[r&0xF]) +
		string(hexChars[g>>4]) + string(hexChars[g&0xF]) +
		string(hexChars[b>>4]) + string(hexChars[b&0xF])
}
