// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the rigtune application.
package util

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count with one decimal and a 1024-based unit,
// matching the format the cleanup summaries use ("1.5 MB", "12.0 GB").
// Negative counts render as "0.0 B".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}

// FormatBytesUint is FormatBytes for the unsigned counters the memory and
// disk collectors report.
func FormatBytesUint(n uint64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}

// FormatDuration renders a duration compactly for status bars and reports:
// "850ms", "12.5s", "3m05s", "1h12m". Sub-zero durations render as "0ms".
func FormatDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatPercent renders a 0-100 value with one decimal for the meters.
func FormatPercent(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%.1f%%", pct)
}
