// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - interactive yes/no prompts for destructive commands.
package cli

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// ErrNotConfirmed is returned when the user declines a confirmation
// prompt, or when a prompt cannot be shown and --yes was not given.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Confirm asks the user a yes/no question before a destructive action.
// Returns nil when the action may proceed.
//
// The prompt is skipped entirely when args.Yes is set. In
// non-interactive contexts (piped stdin, --json output) no prompt is
// possible, so --yes is required and its absence is an error.
func Confirm(args Args, question string) error {
	if args.Yes {
		return nil
	}
	if args.JSON || !stdinIsTerminal() {
		return UsageError("refusing to proceed without confirmation; pass --yes to skip the prompt")
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	input, err := line.Prompt(question + " [y/N] ")
	if err != nil {
		// Ctrl+C or EOF both mean "no".
		return ErrNotConfirmed
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return nil
	default:
		return ErrNotConfirmed
	}
}
