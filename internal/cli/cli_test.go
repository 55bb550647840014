// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseArgs_DefaultIsTUI(t *testing.T) {
	cmd, args := parseArgs(nil)
	assert.Equal(t, CmdTUI, cmd)
	assert.False(t, args.JSON)
	assert.Empty(t, args.Subcommand)
}

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"clean"}, CmdClean},
		{[]string{"cleanup"}, CmdClean},
		{[]string{"optimize"}, CmdOptimize},
		{[]string{"opt"}, CmdOptimize},
		{[]string{"config"}, CmdConfig},
		{[]string{"settings"}, CmdConfig},
		{[]string{"history"}, CmdHistory},
		{[]string{"runs"}, CmdHistory},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
	}
	for _, tc := range tests {
		cmd, _ := parseArgs(tc.argv)
		assert.Equal(t, tc.want, cmd, "argv %v", tc.argv)
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"clean", "temp", "--dry-run", "-y", "--json", "-q"})
	assert.Equal(t, CmdClean, cmd)
	assert.Equal(t, "temp", args.Subcommand)
	assert.True(t, args.DryRun)
	assert.True(t, args.Yes)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
}

func TestParseArgs_GlobalFlagsBeforeCommand(t *testing.T) {
	cmd, args := parseArgs([]string{"--json", "status"})
	assert.Equal(t, CmdStatus, cmd)
	assert.True(t, args.JSON)
}

func TestParseArgs_ProfileFlag(t *testing.T) {
	_, args := parseArgs([]string{"optimize", "--profile", "gamer"})
	assert.Equal(t, "gamer", args.Profile)

	_, args = parseArgs([]string{"optimize", "--profile=maximum"})
	assert.Equal(t, "maximum", args.Profile)
}

func TestParseArgs_BoostShorthand(t *testing.T) {
	cmd, args := parseArgs([]string{"boost", "--yes"})
	assert.Equal(t, CmdOptimize, cmd)
	assert.Equal(t, "boost", args.Subcommand)
	assert.True(t, args.Yes)
}

func TestParseArgs_SubcommandAndRaw(t *testing.T) {
	cmd, args := parseArgs([]string{"history", "list", "--limit", "50"})
	assert.Equal(t, CmdHistory, cmd)
	assert.Equal(t, "list", args.Subcommand)
	assert.Equal(t, []string{"list", "--limit", "50"}, args.Raw)
}

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_FlagForms(t *testing.T) {
	p := NewArgParser([]string{"list", "--limit", "50", "--format=json", "--verbose"})

	assert.Equal(t, "list", p.Subcommand())
	assert.Equal(t, "50", p.Flag("limit"))
	assert.Equal(t, 50, p.FlagIntOrDefault("limit", 20))
	assert.Equal(t, "json", p.Flag("format"))
	assert.True(t, p.BoolFlag("verbose"))
	assert.False(t, p.BoolFlag("quiet"))
}

func TestArgParser_EqualsBool(t *testing.T) {
	p := NewArgParser([]string{"--color=false", "--cache=true"})
	assert.True(t, p.HasFlag("color"))
	assert.False(t, p.BoolFlag("color"))
	assert.True(t, p.BoolFlag("cache"))
}

func TestArgParser_Positionals(t *testing.T) {
	p := NewArgParser([]string{"set", "tasks.worker_count", "8"})
	assert.Equal(t, "set", p.Positional(0))
	assert.Equal(t, "tasks.worker_count", p.Positional(1))
	assert.Equal(t, "8", p.Positional(2))
	assert.Equal(t, "", p.Positional(3))
	assert.Equal(t, 3, p.PositionalCount())
	assert.Equal(t, []string{"tasks.worker_count", "8"}, p.PositionalFrom(1))
}

func TestArgParser_DefaultsWhenAbsent(t *testing.T) {
	p := NewArgParser(nil)
	assert.Equal(t, "", p.Subcommand())
	assert.Equal(t, "md", p.FlagOrDefault("format", "md"))
	assert.Equal(t, 20, p.FlagIntOrDefault("limit", 20))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "On"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "no", "N", "0", "off"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// =============================================================================
// SUGGESTION AND EXIT CODE TESTS
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	assert.Equal(t, "status", suggestCommand("stauts"))
	assert.Equal(t, "clean", suggestCommand("clena"))
	assert.Equal(t, "history", suggestCommand("histroy"))
	assert.Equal(t, "", suggestCommand("frobnicate"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUsageError, ExitCode(UsageError("bad flag")))
	assert.Equal(t, ExitConfigError, ExitCode(ConfigError(errors.New("bad value"))))
	assert.Equal(t, ExitNotFoundError, ExitCode(NotFoundError("missing")))
	assert.Equal(t, ExitAdminRequired, ExitCode(RefusalError("admin_required")))
	assert.Equal(t, ExitUnsupported, ExitCode(RefusalError("unsupported_platform")))
	assert.Equal(t, ExitGeneralError, ExitCode(RefusalError("other")))
}

func TestExitCode_Wrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), UsageError("inner"))
	assert.Equal(t, ExitUsageError, ExitCode(wrapped))
}

func TestRefusalText(t *testing.T) {
	assert.Contains(t, refusalText("admin_required"), "administrator")
	assert.Contains(t, refusalText("unsupported_platform"), "Windows")
	assert.Equal(t, "custom_code", refusalText("custom_code"))
	assert.NotEmpty(t, refusalText(""))
}

// =============================================================================
// CONFIRMATION TESTS
// =============================================================================

func TestConfirm_YesFlagSkipsPrompt(t *testing.T) {
	err := Confirm(Args{Yes: true}, "Proceed?")
	assert.NoError(t, err)
}

func TestConfirm_JSONWithoutYesFails(t *testing.T) {
	err := Confirm(Args{JSON: true}, "Proceed?")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfirm_NonInteractiveWithoutYesFails(t *testing.T) {
	// Test processes never have a terminal on stdin.
	err := Confirm(Args{}, "Proceed?")
	assert.Error(t, err)
}
