// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the rigtune TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// =============================================================================
// CODE PREVIEW RENDERER
// =============================================================================

// CodePreview renders a highlighted payload preview: exported report JSON,
// config TOML, or the PowerShell equivalents shown next to apply operations.
type CodePreview struct {
	Language string
	Content  string
	MaxWidth int

	theme *styles.Theme
}

// NewCodePreview creates a new payload preview.
func NewCodePreview(theme *styles.Theme, language, content string) CodePreview {
	return CodePreview{
		Language: language,
		Content:  content,
		MaxWidth: 80,
		theme:    theme,
	}
}

// SetMaxWidth sets the maximum width for the preview.
func (p *CodePreview) SetMaxWidth(width int) {
	p.MaxWidth = width
}

// Render renders the preview with line numbers and syntax highlighting.
func (p CodePreview) Render() string {
	content := strings.TrimSpace(p.Content)

	// Apply syntax highlighting if language is specified or can be detected
	language := p.Language
	if language == "" {
		language = detectLanguage(content)
	}

	// Get highlighted content (returns original if highlighting fails)
	highlighted := highlightCode(content, language)
	lines := strings.Split(highlighted, "\n")

	// Build the rendered lines with line numbers
	var renderedLines []string
	for i, line := range lines {
		lineNum := p.theme.CodeLineNum.Render(toStr(i + 1))
		// Line already carries chroma's ANSI styling
		renderedLines = append(renderedLines, lineNum+line)
	}

	body := strings.Join(renderedLines, "\n")

	// Create the header with language badge
	var header string
	if p.Language != "" {
		header = p.theme.CodeLangBadge.Render(p.Language) + "\n"
	}

	// Create the preview container
	maxWidth := p.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return p.theme.CodeBlock.MaxWidth(maxWidth).Render(header + body)
}

// =============================================================================
// INLINE CODE RENDERER
// =============================================================================

// RenderInlineCode renders inline code with a subtle background. Used for
// paths and registry keys inside detail panes.
func RenderInlineCode(code string) string {
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.Cyan).
		Padding(0, 1).
		Render(code)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting using the chroma library.
// This provides ANSI-safe output for terminal display.
func highlightCode(code, language string) string {
	// Get lexer for language
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// Get style (use terminal-friendly style)
	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	// Get terminal formatter
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	// Tokenize and format
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code // Fallback to plain text
	}

	var buf strings.Builder
	err = formatter.Format(&buf, style, iterator)
	if err != nil {
		return code
	}

	return buf.String()
}

// detectLanguage attempts to detect the language of the given content.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// HighlightJSON applies JSON syntax highlighting using chroma.
func HighlightJSON(code string) string {
	return highlightCode(code, "json")
}

// HighlightTOML applies TOML syntax highlighting using chroma.
func HighlightTOML(code string) string {
	return highlightCode(code, "toml")
}

// HighlightPowerShell applies PowerShell syntax highlighting using chroma.
func HighlightPowerShell(code string) string {
	return highlightCode(code, "powershell")
}
