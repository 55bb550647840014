// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report builds and exports maintenance run reports.
package report

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for report exporters.
type Exporter interface {
	// Export renders a report in the target format and returns the content.
	Export(r *Report) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved.
	// Default: ~/.rigtune/reports
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes the frontmatter, system section, and
	// lifetime totals.
	IncludeMetadata bool

	// IncludeDetail includes each run's detail payload as a JSON block.
	IncludeDetail bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       "",
		OpenAfterExport: false,
		IncludeMetadata: true,
		IncludeDetail:   true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a report to a file using the specified exporter and
// returns the output file path. Re-exporting the same report overwrites
// the previous file, so a report stays one file no matter how often it is
// regenerated.
func ExportToFile(r *Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		base, err := config.ConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	filename := "report_" + sanitizeFilename(r.ID) + exporter.FileExtension()
	outputPath := filepath.Join(dir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			fmt.Printf("Warning: Could not open file: %v\n", err)
		}
	}

	return outputPath, nil
}

// ExportMarkdown exports to Markdown format.
func ExportMarkdown(r *Report, opts *Options) (string, error) {
	exporter := NewMarkdownExporter(opts)
	return ExportToFile(r, exporter, opts)
}

// ExportJSON exports to JSON format.
func ExportJSON(r *Report, opts *Options) (string, error) {
	exporter := NewJSONExporter(opts)
	return ExportToFile(r, exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "report"
	}

	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// stateBadge returns the icon used for a run state in report headings.
func stateBadge(state string) string {
	switch strings.ToLower(state) {
	case "succeeded":
		return "[OK]"
	case "failed":
		return "[X]"
	case "canceled":
		return "[--]"
	case "running":
		return "[>]"
	case "pending":
		return "[ ]"
	default:
		return "[?]"
	}
}

// formatDuration formats a duration to a human-readable string.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
