// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - unified error handling for the rigtune commands.
//
// Every handler returns an error instead of printing and exiting on its
// own; main converts the error to an exit code with ExitCode. Usage
// mistakes and engine refusals carry their own codes so scripts can
// distinguish them from real failures.
package cli

import (
	"errors"
	"fmt"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitAdminRequired indicates the operation needs elevation
	ExitAdminRequired = 4
	// ExitUnsupported indicates the operation cannot run on this platform
	ExitUnsupported = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is an error with a specific exit code attached.
type CommandError struct {
	Code int
	Err  error
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError builds a CommandError for bad arguments.
func UsageError(format string, args ...any) error {
	return &CommandError{
		Code: ExitUsageError,
		Err:  fmt.Errorf(format, args...),
	}
}

// ConfigError builds a CommandError for settings problems.
func ConfigError(err error) error {
	return &CommandError{Code: ExitConfigError, Err: err}
}

// NotFoundError builds a CommandError for missing resources.
func NotFoundError(format string, args ...any) error {
	return &CommandError{
		Code: ExitNotFoundError,
		Err:  fmt.Errorf(format, args...),
	}
}

// RefusalError maps an engine result code (admin_required,
// unsupported_platform) to a CommandError.
func RefusalError(code string) error {
	switch code {
	case "admin_required":
		return &CommandError{
			Code: ExitAdminRequired,
			Err:  errors.New("administrator rights required; re-run from an elevated prompt"),
		}
	case "unsupported_platform":
		return &CommandError{
			Code: ExitUnsupported,
			Err:  errors.New("this operation is only supported on Windows"),
		}
	default:
		return &CommandError{
			Code: ExitGeneralError,
			Err:  fmt.Errorf("operation refused: %s", code),
		}
	}
}

// refusalText renders an engine refusal code for human output.
func refusalText(code string) string {
	switch code {
	case "admin_required":
		return "administrator rights required"
	case "unsupported_platform":
		return "only supported on Windows"
	case "":
		return "operation refused"
	default:
		return code
	}
}

// ExitCode extracts the exit code for an error from a handler. nil maps
// to ExitSuccess, a CommandError to its own code, anything else to
// ExitGeneralError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitGeneralError
}
