// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the rigtune application.
package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")
	data := []byte("hello, world!")

	err := AtomicWriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "subdir", "deep", "test.txt")

	err := AtomicWriteFile(path, []byte("test data"), 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content not updated: got %q", string(content))
	}
}

func TestAtomicWriteFile_NoTempLeftBehind(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("payload"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly the target file, found %d entries", len(entries))
	}
}

func TestAtomicWriteFileWithDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "newdir", "test.txt")

	err := AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700)
	if err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		input    int64
		expected string
	}{
		{0, "0.0 B"},
		{-5, "0.0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{1536 * 1024, "1.5 MB"},
		{int64(12) * 1024 * 1024 * 1024, "12.0 GB"},
		{int64(2) * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatBytes(tc.input)
			if result != tc.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestFormatBytesUint(t *testing.T) {
	if got := FormatBytesUint(8 * 1024 * 1024 * 1024); got != "8.0 GB" {
		t.Errorf("FormatBytesUint = %q, want %q", got, "8.0 GB")
	}
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		input    time.Duration
		expected string
	}{
		{-time.Second, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{12500 * time.Millisecond, "12.5s"},
		{3*time.Minute + 5*time.Second, "3m05s"},
		{time.Hour + 12*time.Minute, "1h12m"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatDuration(tc.input)
			if result != tc.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{0, "0.0%"},
		{-3, "0.0%"},
		{42.25, "42.2%"},
		{100, "100.0%"},
		{120, "100.0%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatPercent(tc.input)
			if result != tc.expected {
				t.Errorf("FormatPercent(%v) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

// =============================================================================
// TEXT SANITATION TESTS
// =============================================================================

func TestCleanText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "scanning temp files", "scanning temp files"},
		{"newlines", "line one\r\nline two", "line one line two"},
		{"tabs", "a\tb", "a b"},
		{"controls", "a\x00b\x07c", "a b c"},
		{"collapse spaces", "a   b", "a b"},
		{"trim", "  padded  ", "padded"},
		{"fullwidth digits", "１２３", "123"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := CleanText(tc.input)
			if result != tc.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
