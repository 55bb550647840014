// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimizer applies Windows performance tweaks: RAM trims, startup
// parking, service tuning, network adjustments, and power plans.
package optimizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/util"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// =============================================================================
// STARTUP STORE
// =============================================================================

// StartupStore is the slice of winsys startup management the engine needs.
// The production implementation talks to the registry; tests script their
// own.
type StartupStore interface {
	UserEntries() ([]winsys.StartupEntry, error)
	MachineEntries() ([]winsys.StartupEntry, error)
	DisableUser(name string) error
	DisableMachine(name string) error
}

// registryStartup is the production StartupStore backed by the Run keys.
type registryStartup struct{}

func (registryStartup) UserEntries() ([]winsys.StartupEntry, error) {
	return winsys.StartupEntries()
}

func (registryStartup) MachineEntries() ([]winsys.StartupEntry, error) {
	return winsys.MachineStartupEntries()
}

func (registryStartup) DisableUser(name string) error {
	return winsys.DisableStartup(name)
}

func (registryStartup) DisableMachine(name string) error {
	return winsys.DisableMachineStartup(name)
}

// =============================================================================
// DISABLE DECISION
// =============================================================================

// safeStartupPatterns match launcher and updater bloat that is safe to keep
// out of logon; the programs still run when started by hand. Matched
// case-insensitively against both the entry name and its command line.
var safeStartupPatterns = []string{
	"spotify", "discord", "steam", "epic", "origin",
	"skype", "zoom", "teams", "slack", "adobe",
	"office", "onedrive", "dropbox", "googledrive",
}

// shouldDisable decides whether a startup entry gets parked. The configured
// whitelist always protects; the blacklist always disables; otherwise only
// the known-safe patterns match.
func (e *Engine) shouldDisable(name, command string) bool {
	if matchesAny(name, command, e.cfg.Startup.Whitelist) {
		return false
	}
	if matchesAny(name, command, e.cfg.Startup.Blacklist) {
		return true
	}
	return matchesAny(name, command, safeStartupPatterns)
}

// matchesAny reports whether any pattern occurs in the entry name or command.
func matchesAny(name, command string, patterns []string) bool {
	n := strings.ToLower(name)
	c := strings.ToLower(command)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(n, p) || strings.Contains(c, p) {
			return true
		}
	}
	return false
}

// =============================================================================
// STARTUP OPTIMIZATION
// =============================================================================

// OptimizeStartup parks startup bloat: matching Run key entries move to the
// rigtune parked key, matching Startup folder shortcuts move to a _Disabled
// sibling directory. A .reg backup of the active entries is exported before
// anything changes.
func (e *Engine) OptimizeStartup(rep Reporter) Result {
	rep = orNop(rep)
	res := Result{Op: OpStartup, Success: true}

	if !e.windows {
		return unsupported(OpStartup, "startup optimization requires Windows")
	}
	// The HKLM pass and the parked-key writes both need elevation; refuse
	// up front rather than half-apply.
	if !e.elevated() {
		return adminRequired(OpStartup, "startup optimization requires administrator rights")
	}

	rep.Status("Reading startup entries")
	user, err := e.startup.UserEntries()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("user startup entries: %v", err))
	}
	machine, err := e.startup.MachineEntries()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("machine startup entries: %v", err))
	}

	if path, err := e.exportStartupBackup(user, machine); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("startup backup: %v", err))
	} else if path != "" {
		res.Changes = append(res.Changes, "exported startup backup to "+path)
	}

	rep.Status("Parking startup entries")
	e.parkEntries(rep, &res, user, e.startup.DisableUser, "")
	e.parkEntries(rep, &res, machine, e.startup.DisableMachine, " (machine)")

	if !rep.Canceled() {
		e.parkFolderItems(rep, &res)
	}

	if rep.Canceled() {
		res.Canceled = true
	}
	rep.Progress(100)
	e.log.Info("optimizer", "startup: %d entries parked, %d errors", res.Applied, len(res.Errors))
	e.noteRun(OpStartup)
	return res
}

// parkEntries disables every enabled entry the decision matches.
func (e *Engine) parkEntries(rep Reporter, res *Result, entries []winsys.StartupEntry, disable func(string) error, suffix string) {
	for _, ent := range entries {
		if rep.Canceled() {
			return
		}
		if !ent.Enabled || !e.shouldDisable(ent.Name, ent.Command) {
			continue
		}
		rep.Statusf("Disabling %s", ent.Name)
		if err := disable(ent.Name); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("disable %s: %v", ent.Name, err))
			continue
		}
		res.Applied++
		res.Changes = append(res.Changes, "disabled "+ent.Name+suffix)
	}
}

// parkFolderItems moves matching shortcuts out of the logon Startup folder
// into a _Disabled sibling so they can be restored by hand.
func (e *Engine) parkFolderItems(rep Reporter, res *Result) {
	if e.startupDir == "" {
		return
	}
	entries, err := os.ReadDir(e.startupDir)
	if err != nil {
		return
	}

	parked := e.startupDir + "_Disabled"
	for _, ent := range entries {
		if rep.Canceled() {
			return
		}
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".lnk" && ext != ".exe" {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if !e.shouldDisable(base, name) {
			continue
		}
		if err := os.MkdirAll(parked, 0755); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("park folder: %v", err))
			return
		}
		if err := os.Rename(filepath.Join(e.startupDir, name), filepath.Join(parked, name)); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("park %s: %v", name, err))
			continue
		}
		res.Applied++
		res.Changes = append(res.Changes, "parked "+name)
	}
}

// =============================================================================
// REG BACKUP EXPORT
// =============================================================================

// exportStartupBackup writes the enabled Run key entries to a .reg file so a
// startup optimization can be undone with a double-click. Returns the file
// path, or "" when backups are disabled.
func (e *Engine) exportStartupBackup(user, machine []winsys.StartupEntry) (string, error) {
	if !e.cfg.Backup.Enabled {
		return "", nil
	}

	dir := e.backupDir
	if dir == "" {
		base, err := config.ConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "backups")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("startup_%s.reg", time.Now().Format("20060102_150405")))
	data := buildRegExport(user, machine)
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// buildRegExport renders the enabled entries in .reg syntax. Regedit demands
// CRLF line endings and the version header.
func buildRegExport(user, machine []winsys.StartupEntry) []byte {
	var b strings.Builder
	b.WriteString("Windows Registry Editor Version 5.00\r\n")

	writeSection := func(root string, entries []winsys.StartupEntry) {
		wrote := false
		for _, ent := range entries {
			if !ent.Enabled {
				continue
			}
			if !wrote {
				b.WriteString("\r\n[" + root + `\Software\Microsoft\Windows\CurrentVersion\Run]` + "\r\n")
				wrote = true
			}
			fmt.Fprintf(&b, "\"%s\"=\"%s\"\r\n", regEscape(ent.Name), regEscape(ent.Command))
		}
	}
	writeSection("HKEY_CURRENT_USER", user)
	writeSection("HKEY_LOCAL_MACHINE", machine)

	return []byte(b.String())
}

// regEscape escapes a string for a .reg value: backslashes and quotes double.
func regEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
