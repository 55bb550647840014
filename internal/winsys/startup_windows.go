// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import (
	"fmt"
	"sort"

	"golang.org/x/sys/windows/registry"
)

const (
	// runKeyPath is the logon launch list, relative to either hive root.
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	// wowRunKeyPath is the 32-bit launch list present under HKLM on 64-bit
	// systems.
	wowRunKeyPath = `Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Run`
	// parkedKeyPath holds entries rigtune disabled, keyed by original name,
	// so enabling restores the exact command line.
	parkedKeyPath = `Software\Rigtune\DisabledStartup`
)

// startupHive bundles the registry locations for one startup scope.
type startupHive struct {
	root registry.Key
	runs []string
}

var (
	// userHive is the per-user scope; writable without elevation.
	userHive = startupHive{
		root: registry.CURRENT_USER,
		runs: []string{runKeyPath},
	}
	// machineHive is the all-users scope; writes require elevation.
	machineHive = startupHive{
		root: registry.LOCAL_MACHINE,
		runs: []string{runKeyPath, wowRunKeyPath},
	}
)

// StartupEntries lists per-user logon startup entries: active ones from the
// HKCU Run key and parked ones rigtune disabled earlier, sorted by name.
func StartupEntries() ([]StartupEntry, error) {
	return userHive.entries()
}

// MachineStartupEntries lists machine-wide logon startup entries from the
// HKLM Run keys (64-bit and WOW6432Node), sorted by name.
func MachineStartupEntries() ([]StartupEntry, error) {
	return machineHive.entries()
}

// DisableStartup parks an active per-user startup entry: the command line
// moves to the rigtune key and the Run value is removed.
func DisableStartup(name string) error {
	return userHive.disable(name)
}

// DisableMachineStartup parks a machine-wide startup entry. Requires
// elevation.
func DisableMachineStartup(name string) error {
	return machineHive.disable(name)
}

// EnableStartup restores a parked per-user startup entry into the Run key.
func EnableStartup(name string) error {
	return userHive.enable(name)
}

// EnableMachineStartup restores a parked machine-wide startup entry.
// Requires elevation. WOW6432Node entries restore into the 64-bit Run key;
// Windows launches them either way.
func EnableMachineStartup(name string) error {
	return machineHive.enable(name)
}

// AddStartup registers a program to launch at logon for the current user.
// Used for rigtune's own "start with Windows" option.
func AddStartup(name, command string) error {
	run, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer run.Close()

	if err := run.SetStringValue(name, command); err != nil {
		return fmt.Errorf("failed to add startup entry: %w", err)
	}
	return nil
}

// RemoveStartup deletes a per-user startup entry from both the active and
// parked keys.
func RemoveStartup(name string) error {
	found := false

	if run, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE); err == nil {
		if err := run.DeleteValue(name); err == nil {
			found = true
		}
		run.Close()
	}
	if parked, err := registry.OpenKey(registry.CURRENT_USER, parkedKeyPath, registry.SET_VALUE); err == nil {
		if err := parked.DeleteValue(name); err == nil {
			found = true
		}
		parked.Close()
	}

	if !found {
		return ErrStartupNotFound
	}
	return nil
}

// entries lists this hive's active and parked startup entries sorted by name.
func (h startupHive) entries() ([]StartupEntry, error) {
	var entries []StartupEntry

	readAny := false
	for _, path := range h.runs {
		active, err := readStringValues(h.root, path)
		if err != nil {
			continue
		}
		readAny = true
		for name, cmd := range active {
			entries = append(entries, StartupEntry{Name: name, Command: cmd, Enabled: true})
		}
	}
	if !readAny {
		return nil, fmt.Errorf("failed to read Run keys")
	}

	parked, err := readStringValues(h.root, parkedKeyPath)
	if err == nil {
		for name, cmd := range parked {
			entries = append(entries, StartupEntry{Name: name, Command: cmd, Enabled: false})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// disable parks an active entry found under any of this hive's Run keys.
func (h startupHive) disable(name string) error {
	for _, path := range h.runs {
		run, err := registry.OpenKey(h.root, path, registry.QUERY_VALUE|registry.SET_VALUE)
		if err != nil {
			continue
		}

		cmd, _, err := run.GetStringValue(name)
		if err != nil {
			run.Close()
			continue
		}

		parked, _, err := registry.CreateKey(h.root, parkedKeyPath, registry.SET_VALUE)
		if err != nil {
			run.Close()
			return fmt.Errorf("failed to create parked key: %w", err)
		}

		// Park first, then remove: a crash between the two steps leaves the
		// entry present in both keys, which enabling tolerates.
		if err := parked.SetStringValue(name, cmd); err != nil {
			parked.Close()
			run.Close()
			return fmt.Errorf("failed to park startup entry: %w", err)
		}
		parked.Close()

		if err := run.DeleteValue(name); err != nil {
			run.Close()
			return fmt.Errorf("failed to remove startup entry: %w", err)
		}
		run.Close()
		return nil
	}
	return ErrStartupNotFound
}

// enable restores a parked entry into this hive's primary Run key.
func (h startupHive) enable(name string) error {
	parked, err := registry.OpenKey(h.root, parkedKeyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return ErrStartupNotFound
	}
	defer parked.Close()

	cmd, _, err := parked.GetStringValue(name)
	if err != nil {
		return ErrStartupNotFound
	}

	run, err := registry.OpenKey(h.root, h.runs[0], registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer run.Close()

	if err := run.SetStringValue(name, cmd); err != nil {
		return fmt.Errorf("failed to restore startup entry: %w", err)
	}
	if err := parked.DeleteValue(name); err != nil {
		return fmt.Errorf("failed to unpark startup entry: %w", err)
	}
	return nil
}

// readStringValues returns all string values under one registry key.
func readStringValues(root registry.Key, path string) (map[string]string, error) {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(names))
	for _, name := range names {
		if val, _, err := key.GetStringValue(name); err == nil {
			values[name] = val
		}
	}
	return values, nil
}
