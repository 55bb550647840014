// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/logging"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotWindows is returned by operations that only exist on Windows.
	ErrNotWindows = errors.New("winsys: not supported on this platform")

	// ErrNotElevated is returned when an operation needs administrator rights.
	ErrNotElevated = errors.New("winsys: administrator rights required")
)

// =============================================================================
// RESULT CODES
// =============================================================================

// Result codes the engines attach to their results. The task facility and
// the history store carry them opaquely; only the UI and CLI interpret them.
const (
	// CodeAdminRequired marks an operation that was refused because the
	// process is not elevated. The UI offers a UAC relaunch in response.
	CodeAdminRequired = "admin_required"

	// CodeUnsupportedPlatform marks an operation that cannot run off
	// Windows. Keeps the dashboard usable in development on other systems.
	CodeUnsupportedPlatform = "unsupported_platform"
)

// =============================================================================
// COMMAND ERRORS
// =============================================================================

// CommandError wraps a failed external command with its captured output.
type CommandError struct {
	Name   string
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, firstLine(e.Output))
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// firstLine trims command output down to its first non-empty line for error
// messages; full output stays on CommandError.Output.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// =============================================================================
// COMMAND RUNNER
// =============================================================================

// DefaultTimeout bounds a single external command. Cleanup steps like a
// Windows Update cache purge can legitimately take a while.
const DefaultTimeout = 60 * time.Second

// Runner executes external tools (powercfg, netsh, sc, powershell) without
// flashing console windows, with a per-command timeout and debug logging.
type Runner struct {
	timeout time.Duration
	log     *logging.Logger
}

// NewRunner returns a Runner with the default timeout. A nil logger is
// replaced with a no-op logger.
func NewRunner(log *logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		timeout: DefaultTimeout,
		log:     log,
	}
}

// SetTimeout changes the per-command timeout. Zero disables it.
func (r *Runner) SetTimeout(d time.Duration) {
	r.timeout = d
}

// Run executes a command and returns its combined, trimmed output.
// Failures come back as a *CommandError carrying the output.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = hiddenWindowAttr()

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if err != nil {
		// Make cancellation and timeout distinguishable from exit codes
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		r.log.Debug("winsys", "command failed: %s %s: %v", name, strings.Join(args, " "), err)
		return output, &CommandError{Name: name, Args: args, Output: output, Err: err}
	}

	r.log.Debug("winsys", "ran: %s %s", name, strings.Join(args, " "))
	return output, nil
}

// PowerShell executes a script via powershell.exe with profile loading and
// interactive prompts disabled.
func (r *Runner) PowerShell(ctx context.Context, script string) (string, error) {
	return r.Run(ctx, "powershell",
		"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass",
		"-Command", script)
}

// CreateRestorePoint asks Windows for a system restore point before rigtune
// makes heavy changes. Requires elevation; Windows throttles restore point
// creation to one per day by default, which surfaces as a command error.
func (r *Runner) CreateRestorePoint(ctx context.Context, description string) error {
	if runtime.GOOS != "windows" {
		return ErrNotWindows
	}
	script := fmt.Sprintf(
		"Checkpoint-Computer -Description '%s' -RestorePointType MODIFY_SETTINGS",
		strings.ReplaceAll(description, "'", "''"))
	_, err := r.PowerShell(ctx, script)
	return err
}
