// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"fmt"
	"sort"
	"strings"
)

// startModes maps configured start modes to the sc.exe argument.
var startModes = map[string]string{
	"disabled": "disabled",
	"manual":   "demand",
}

// OptimizeServices applies the configured start modes to Windows services
// and stops the ones it just tuned. Only services named in the configuration
// are ever touched; the skip list wins over the tuning map.
func (e *Engine) OptimizeServices(rep Reporter) Result {
	rep = orNop(rep)
	res := Result{Op: OpServices, Success: true}

	if !e.windows {
		return unsupported(OpServices, "service tuning requires Windows")
	}
	if !e.elevated() {
		return adminRequired(OpServices, "service tuning requires administrator rights")
	}

	names := e.tunableServices()
	if len(names) == 0 {
		return res
	}

	ctx := rep.Context()
	for i, name := range names {
		if rep.Canceled() {
			break
		}
		mode := strings.ToLower(e.cfg.Services.Tuning[name])
		target, ok := startModes[mode]
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("service %s: unknown start mode %q", name, mode))
			continue
		}

		rep.Statusf("Tuning service %s", name)
		// sc.exe demands the space after "start=": it parses the option name
		// and the value as separate arguments.
		if _, err := e.run.Run(ctx, "sc", "config", name, "start=", target); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("service %s: %v", name, err))
			continue
		}
		// Already-stopped services report an error; tolerated.
		_, _ = e.run.Run(ctx, "sc", "stop", name)

		res.Applied++
		res.Changes = append(res.Changes, fmt.Sprintf("%s -> %s", name, mode))
		rep.Progress((i + 1) * 100 / len(names))
	}

	if rep.Canceled() {
		res.Canceled = true
	}
	e.log.Info("optimizer", "services: %d tuned, %d errors", res.Applied, len(res.Errors))
	e.noteRun(OpServices)
	return res
}

// tunableServices resolves the tuning map against the skip list, sorted for
// a stable command order.
func (e *Engine) tunableServices() []string {
	skip := make(map[string]bool, len(e.cfg.Services.Skip))
	for _, name := range e.cfg.Services.Skip {
		skip[strings.ToLower(name)] = true
	}

	var names []string
	for name := range e.cfg.Services.Tuning {
		if skip[strings.ToLower(name)] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
