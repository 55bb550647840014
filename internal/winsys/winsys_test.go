// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package winsys

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

// echoCmd returns a command that prints "hello" on any platform.
func echoCmd() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "echo hello"}
	}
	return "sh", []string{"-c", "echo hello"}
}

// failCmd returns a command that prints to stderr and exits non-zero.
func failCmd() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "echo bad news 1>&2 & exit 3"}
	}
	return "sh", []string{"-c", "echo bad news >&2; exit 3"}
}

// sleepCmd returns a command that blocks for several seconds.
func sleepCmd() (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell", []string{"-Command", "Start-Sleep -Seconds 5"}
	}
	return "sleep", []string{"5"}
}

func TestRunner_CapturesOutput(t *testing.T) {
	r := NewRunner(nil)
	name, args := echoCmd()

	out, err := r.Run(context.Background(), name, args...)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Run() output = %q, want %q", out, "hello")
	}
}

func TestRunner_FailureCarriesOutput(t *testing.T) {
	r := NewRunner(nil)
	name, args := failCmd()

	_, err := r.Run(context.Background(), name, args...)
	if err == nil {
		t.Fatal("Run() should fail for non-zero exit")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error should be *CommandError, got %T", err)
	}
	if !strings.Contains(cmdErr.Output, "bad news") {
		t.Errorf("CommandError.Output = %q, want stderr captured", cmdErr.Output)
	}
	if !strings.Contains(cmdErr.Error(), "bad news") {
		t.Errorf("Error() = %q, should include the first output line", cmdErr.Error())
	}
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(nil)

	_, err := r.Run(context.Background(), "rigtune-no-such-binary-xyz")
	if err == nil {
		t.Fatal("Run() should fail for a missing binary")
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error should be *CommandError, got %T", err)
	}
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner(nil)
	r.SetTimeout(100 * time.Millisecond)
	name, args := sleepCmd()

	start := time.Now()
	_, err := r.Run(context.Background(), name, args...)
	if err == nil {
		t.Fatal("Run() should fail on timeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should unwrap to DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v, expected well under the sleep duration", elapsed)
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	r := NewRunner(nil)
	name, args := sleepCmd()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Run(ctx, name, args...)
	if err == nil {
		t.Fatal("Run() should fail when the context is canceled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should unwrap to Canceled, got %v", err)
	}
}

func TestCommandError_FirstLineOnly(t *testing.T) {
	err := &CommandError{
		Name:   "netsh",
		Args:   []string{"int", "tcp"},
		Output: "\n  The requested operation requires elevation.\nsecond line",
		Err:    errors.New("exit status 1"),
	}
	msg := err.Error()
	if !strings.Contains(msg, "requires elevation") {
		t.Errorf("Error() = %q, want first non-empty output line", msg)
	}
	if strings.Contains(msg, "second line") {
		t.Errorf("Error() = %q, should not include later lines", msg)
	}
}

func TestPlatformStubs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub behavior only applies off Windows")
	}

	if IsElevated() {
		t.Error("IsElevated() should be false off Windows")
	}
	if err := RelaunchElevated(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("RelaunchElevated() = %v, want ErrNotWindows", err)
	}
	if _, _, err := CPUTimes(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("CPUTimes() = %v, want ErrNotWindows", err)
	}
	if _, _, err := MemoryStatus(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("MemoryStatus() = %v, want ErrNotWindows", err)
	}
	if _, err := ProcessList(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("ProcessList() = %v, want ErrNotWindows", err)
	}
	if _, _, err := DiskUsage("C:\\"); !errors.Is(err, ErrNotWindows) {
		t.Errorf("DiskUsage() = %v, want ErrNotWindows", err)
	}
	if _, err := Uptime(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("Uptime() = %v, want ErrNotWindows", err)
	}
	if _, err := TrimWorkingSets(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("TrimWorkingSets() = %v, want ErrNotWindows", err)
	}
	if _, err := StartupEntries(); !errors.Is(err, ErrNotWindows) {
		t.Errorf("StartupEntries() = %v, want ErrNotWindows", err)
	}
	if err := DisableStartup("Steam"); !errors.Is(err, ErrNotWindows) {
		t.Errorf("DisableStartup() = %v, want ErrNotWindows", err)
	}

	r := NewRunner(nil)
	if err := r.CreateRestorePoint(context.Background(), "before cleanup"); !errors.Is(err, ErrNotWindows) {
		t.Errorf("CreateRestorePoint() = %v, want ErrNotWindows", err)
	}
}
