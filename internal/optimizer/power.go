// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// POWER PLANS
// =============================================================================

// planGUIDs are the stock Windows power scheme GUIDs. The Ultimate
// Performance scheme ships hidden on consumer SKUs, so "maximum" never
// activates it directly; it duplicates it into a visible custom plan instead.
var planGUIDs = map[string]string{
	"balanced": "381b4222-f694-41f0-9685-ff5bb260df2e",
	"high":     "8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c",
	"maximum":  "e9a42b02-d5df-448d-aa00-03f14749eb61",
}

// planTitles are the display names for status lines and results.
var planTitles = map[string]string{
	"balanced": "Balanced",
	"high":     "High performance",
	"maximum":  "Ultimate performance",
}

// customPlanSettings pin the tuned custom plan: processor throttle locked at
// 100%, aggressive boost, and no standby/display/disk idle. Applied with
// powercfg /setacvalueindex; gaming rigs run on AC.
var customPlanSettings = []struct {
	subgroup, setting, value string
}{
	{"SUB_PROCESSOR", "PROCTHROTTLEMIN", "100"},
	{"SUB_PROCESSOR", "PROCTHROTTLEMAX", "100"},
	{"SUB_PROCESSOR", "PERFBOOSTMODE", "2"},
	{"SUB_SLEEP", "STANDBYIDLE", "0"},
	{"SUB_SLEEP", "HIBERNATEIDLE", "0"},
	{"SUB_VIDEO", "VIDEOIDLE", "0"},
	{"SUB_DISK", "DISKIDLE", "0"},
}

// guidPattern matches a power scheme GUID in powercfg output.
var guidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// =============================================================================
// PLAN SWITCHING
// =============================================================================

// SetPowerPlan activates a power plan. "balanced" and "high" switch to the
// stock schemes; "maximum" and "custom" build (or reuse) the tuned custom
// plan named in the configuration and activate that.
func (e *Engine) SetPowerPlan(rep Reporter, plan string) Result {
	rep = orNop(rep)
	plan = strings.ToLower(strings.TrimSpace(plan))
	res := Result{Op: OpPower, Success: true}

	if !e.windows {
		return unsupported(OpPower, "power plan switching requires Windows")
	}
	if !e.elevated() {
		return adminRequired(OpPower, "power plan switching requires administrator rights")
	}

	ctx := rep.Context()
	switch plan {
	case "balanced", "high":
		rep.Statusf("Activating %s power plan", planTitles[plan])
		if _, err := e.run.Run(ctx, "powercfg", "/setactive", planGUIDs[plan]); err != nil {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("activate %s plan: %v", plan, err))
			return res
		}
		res.Applied++
		res.Changes = append(res.Changes, "activated "+planTitles[plan]+" power plan")

	case "maximum", "custom":
		e.ensureCustomPlan(ctx, rep, &res)

	default:
		res.Success = false
		res.Errors = append(res.Errors, fmt.Sprintf("unknown power plan %q", plan))
		return res
	}

	e.log.Info("optimizer", "power plan %q applied (success=%v)", plan, res.Success)
	e.noteRun(OpPower)
	return res
}

// ensureCustomPlan duplicates the Ultimate Performance scheme into the
// configured custom plan, pins its settings, and activates it. An existing
// plan with the same name is reused and re-pinned rather than duplicated
// again.
func (e *Engine) ensureCustomPlan(ctx context.Context, rep Reporter, res *Result) {
	name := e.cfg.Power.CustomPlanName

	guid := e.findPlanGUID(ctx, name)
	if guid == "" {
		rep.Statusf("Creating power plan %q", name)
		out, err := e.run.Run(ctx, "powercfg", "/duplicatescheme", planGUIDs["maximum"])
		if err != nil {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("duplicate scheme: %v", err))
			return
		}
		guid = guidPattern.FindString(out)
		if guid == "" {
			res.Success = false
			res.Errors = append(res.Errors, "duplicate scheme: no GUID in powercfg output")
			return
		}
		if _, err := e.run.Run(ctx, "powercfg", "/changename", guid, name); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("rename plan: %v", err))
		}
		res.Changes = append(res.Changes, fmt.Sprintf("created power plan %q", name))
	} else {
		res.Changes = append(res.Changes, fmt.Sprintf("reusing power plan %q", name))
	}

	rep.Status("Pinning power plan settings")
	for _, s := range customPlanSettings {
		if _, err := e.run.Run(ctx, "powercfg", "/setacvalueindex", guid, s.subgroup, s.setting, s.value); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("plan setting %s/%s: %v", s.subgroup, s.setting, err))
			continue
		}
		res.Applied++
	}

	rep.Statusf("Activating power plan %q", name)
	if _, err := e.run.Run(ctx, "powercfg", "/setactive", guid); err != nil {
		res.Success = false
		res.Errors = append(res.Errors, fmt.Sprintf("activate plan: %v", err))
		return
	}
	res.Applied++
	res.Changes = append(res.Changes,
		"processor throttle pinned to 100%",
		"standby, display and disk idle timeouts off")
}

// findPlanGUID looks a plan name up in `powercfg /list` output.
func (e *Engine) findPlanGUID(ctx context.Context, name string) string {
	out, err := e.run.Run(ctx, "powercfg", "/list")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "("+name+")") {
			return guidPattern.FindString(line)
		}
	}
	return ""
}

// activePlanName parses the display name out of `powercfg /getactivescheme`.
func (e *Engine) activePlanName(ctx context.Context) string {
	out, err := e.run.Run(ctx, "powercfg", "/getactivescheme")
	if err != nil {
		return ""
	}
	// "Power Scheme GUID: 381b4222-...  (Balanced)"
	start := strings.Index(out, "(")
	if start < 0 {
		return ""
	}
	end := strings.Index(out[start:], ")")
	if end <= 0 {
		return ""
	}
	return out[start+1 : start+end]
}
