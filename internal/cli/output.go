// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - terminal output helpers shared by the rigtune commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/jeranaias/rigtune/internal/ui/styles"
)

// stdoutIsTerminal reports whether stdout is an interactive terminal.
// Piped output gets plain text without color codes.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// stdinIsTerminal reports whether prompts can be shown at all.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "rigtune: encoding output: %v\n", err)
	}
}

// printSuccess writes a success line, colored on terminals.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if stdoutIsTerminal() {
		fmt.Println(styles.RenderSuccess(msg))
	} else {
		fmt.Println("[OK] " + msg)
	}
}

// printWarning writes a warning line, colored on terminals.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if stdoutIsTerminal() {
		fmt.Println(styles.RenderWarning(msg))
	} else {
		fmt.Println("[!] " + msg)
	}
}

// printError writes an error line to stderr, colored on terminals.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(os.Stderr, styles.RenderError(msg))
	} else {
		fmt.Fprintln(os.Stderr, "[X] "+msg)
	}
}

// printKV writes an aligned "label: value" row.
func printKV(label string, value any) {
	fmt.Printf("  %-22s %v\n", label+":", value)
}
