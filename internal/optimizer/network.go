// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"context"
	"fmt"
	"strings"
)

// =============================================================================
// NETWORK TUNING
// =============================================================================

// defaultInterface is assumed when no connected adapter can be parsed.
const defaultInterface = "Ethernet"

// mtuValue pins subinterfaces to the standard Ethernet MTU; stray jumbo or
// undersized values from VPN leftovers hurt game traffic.
const mtuValue = "1500"

// tcpKnobs are the netsh global TCP tweaks, labeled for the change report.
// Several are gone from recent Windows builds (chimney, NetDMA, DCA); a knob
// the stack rejects is skipped, not an error.
var tcpKnobs = []struct {
	scope string // "tcp" or "ip"
	arg   string
	label string
}{
	{"tcp", "autotuninglevel=normal", "TCP auto-tuning"},
	{"tcp", "chimney=enabled", "TCP chimney offload"},
	{"tcp", "rss=enabled", "receive side scaling"},
	{"tcp", "netdma=enabled", "NetDMA"},
	{"tcp", "dca=enabled", "direct cache access"},
	{"tcp", "ecncapability=enabled", "ECN capability"},
	{"tcp", "timestamps=enabled", "TCP timestamps"},
	{"ip", "taskoffload=enabled", "task offload"},
	{"ip", "neighborcachelimit=4096", "neighbor cache limit"},
	{"ip", "routecachelimit=4096", "route cache limit"},
}

// OptimizeNetwork applies the configured TCP stack tweaks, switches
// connected adapters to the configured DNS resolvers, and pins their MTU.
func (e *Engine) OptimizeNetwork(rep Reporter) Result {
	rep = orNop(rep)
	res := Result{Op: OpNetwork, Success: true}

	if !e.windows {
		return unsupported(OpNetwork, "network tuning requires Windows")
	}
	if !e.elevated() {
		return adminRequired(OpNetwork, "network tuning requires administrator rights")
	}

	ctx := rep.Context()
	rep.Progress(0)

	if e.cfg.Network.OptimizeTCP {
		rep.Status("Applying TCP stack tweaks")
		for _, knob := range tcpKnobs {
			if rep.Canceled() {
				break
			}
			if _, err := e.run.Run(ctx, "netsh", "int", knob.scope, "set", "global", knob.arg); err != nil {
				e.log.Debug("optimizer", "netsh knob %s rejected: %v", knob.arg, err)
				continue
			}
			res.Applied++
			res.Changes = append(res.Changes, knob.label)
		}
		rep.Progress(40)
	}

	if !rep.Canceled() && (e.cfg.Network.SetDNS || e.cfg.Network.OptimizeTCP) {
		ifaces := e.activeInterfaces(ctx)

		if e.cfg.Network.SetDNS {
			rep.Status("Switching DNS resolvers")
			e.applyDNS(ctx, &res, ifaces)
			rep.Progress(70)
		}
		if !rep.Canceled() && e.cfg.Network.OptimizeTCP {
			rep.Status("Pinning interface MTU")
			e.applyMTU(ctx, &res, ifaces)
		}
	}

	if rep.Canceled() {
		res.Canceled = true
	}
	rep.Progress(100)
	e.log.Info("optimizer", "network: %d tweaks applied, %d errors", res.Applied, len(res.Errors))
	e.noteRun(OpNetwork)
	return res
}

// applyDNS points every connected adapter at the configured resolvers.
func (e *Engine) applyDNS(ctx context.Context, res *Result, ifaces []string) {
	primary := e.cfg.Network.PrimaryDNS
	secondary := e.cfg.Network.SecondaryDNS

	for _, iface := range ifaces {
		if _, err := e.run.Run(ctx, "netsh", "interface", "ip", "set", "dns", iface, "static", primary); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("dns on %s: %v", iface, err))
			continue
		}
		if secondary != "" {
			if _, err := e.run.Run(ctx, "netsh", "interface", "ip", "add", "dns", iface, secondary, "index=2"); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("secondary dns on %s: %v", iface, err))
			}
		}
		res.Applied++
		if secondary != "" {
			res.Changes = append(res.Changes, fmt.Sprintf("DNS %s/%s on %s", primary, secondary, iface))
		} else {
			res.Changes = append(res.Changes, fmt.Sprintf("DNS %s on %s", primary, iface))
		}
	}
}

// applyMTU pins every connected adapter to the standard MTU persistently.
func (e *Engine) applyMTU(ctx context.Context, res *Result, ifaces []string) {
	for _, iface := range ifaces {
		if _, err := e.run.Run(ctx, "netsh", "interface", "ipv4", "set", "subinterface", iface,
			"mtu="+mtuValue, "store=persistent"); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("mtu on %s: %v", iface, err))
			continue
		}
		res.Applied++
		res.Changes = append(res.Changes, fmt.Sprintf("MTU %s on %s", mtuValue, iface))
	}
}

// activeInterfaces parses `netsh interface show interface` for connected
// adapters. Falls back to the conventional adapter name when nothing parses,
// matching how the tweaks degrade on odd setups.
func (e *Engine) activeInterfaces(ctx context.Context) []string {
	out, err := e.run.Run(ctx, "netsh", "interface", "show", "interface")
	if err != nil {
		return []string{defaultInterface}
	}

	var ifaces []string
	for _, line := range strings.Split(out, "\n") {
		// Admin State    State          Type             Interface Name
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.EqualFold(fields[1], "Connected") {
			continue
		}
		// Adapter names may contain spaces ("Wi-Fi 2").
		ifaces = append(ifaces, strings.Join(fields[3:], " "))
	}
	if len(ifaces) == 0 {
		return []string{defaultInterface}
	}
	return ifaces
}
