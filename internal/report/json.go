// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report builds and exports maintenance run reports.
package report

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders reports as JSON.
// NOTE: JSON exports always include the complete report data and do not
// respect the Include* options, so the exported file is a faithful
// machine-readable twin of the report.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter. The options parameter is
// accepted for consistency with other exporters.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export renders a report as indented JSON.
func (e *JSONExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report is nil")
	}
	return json.MarshalIndent(r, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
