// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the rigtune application.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanText prepares externally sourced text (process names, command output,
// task status lines) for single-line terminal display. It normalizes to NFKC
// so lookalike forms collapse to their canonical characters, then replaces
// control characters and line breaks with spaces and trims the result.
func CleanText(s string) string {
	normalized := norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(normalized))
	lastSpace := false
	for _, r := range normalized {
		if unicode.IsControl(r) || r == ' ' || r == ' ' {
			r = ' '
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
