// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROFILES
// =============================================================================

// Profile bundles optimizations into a preset. Balanced keeps the machine
// usable for everything, gamer trades background comfort for frame time, and
// maximum applies every tweak the engine knows.
type Profile string

const (
	ProfileBalanced Profile = "balanced"
	ProfileGamer    Profile = "gamer"
	ProfileMaximum  Profile = "maximum"
)

// Profiles returns every profile in escalation order.
func Profiles() []Profile {
	return []Profile{ProfileBalanced, ProfileGamer, ProfileMaximum}
}

// ParseProfile resolves a CLI argument or config value to a Profile.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balanced", "balance":
		return ProfileBalanced, nil
	case "gamer", "gaming", "game":
		return ProfileGamer, nil
	case "maximum", "max", "turbo":
		return ProfileMaximum, nil
	}
	return "", fmt.Errorf("unknown profile %q", s)
}

func (p Profile) String() string {
	return string(p)
}

// Title returns the human-readable profile name.
func (p Profile) Title() string {
	switch p {
	case ProfileBalanced:
		return "Balanced"
	case ProfileGamer:
		return "Gamer"
	case ProfileMaximum:
		return "Maximum performance"
	}
	return string(p)
}

// Operations returns the optimizations the profile runs, in order. The
// service list itself always comes from configuration; profiles only decide
// whether service tuning runs at all.
func (p Profile) Operations() []Operation {
	switch p {
	case ProfileBalanced:
		return []Operation{OpRAM, OpServices, OpPower}
	case ProfileGamer:
		return []Operation{OpRAM, OpServices, OpNetwork, OpPower}
	case ProfileMaximum:
		return []Operation{OpRAM, OpServices, OpNetwork, OpPower, OpStartup}
	}
	return nil
}

// PowerPlan returns the plan the profile's power step activates. Gamer and
// maximum both build the tuned custom plan; balanced stays on stock High
// performance.
func (p Profile) PowerPlan() string {
	if p == ProfileBalanced {
		return "high"
	}
	return "maximum"
}
