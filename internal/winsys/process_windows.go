// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	psapi               = windows.NewLazySystemDLL("psapi.dll")
	procEmptyWorkingSet = psapi.NewProc("EmptyWorkingSet")
)

// PROCESS_SET_QUOTA is required by EmptyWorkingSet; x/sys/windows does not
// export it.
const processSetQuota = 0x0100

// ProcessList snapshots all running processes with their memory and CPU
// counters. Processes we cannot open (system processes, other sessions
// without elevation) come back with zero counters rather than being dropped,
// so the process table stays complete.
func ProcessList() ([]ProcessInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("process snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, fmt.Errorf("process enumeration failed: %w", err)
	}

	var procs []ProcessInfo
	for {
		info := ProcessInfo{
			PID:  entry.ProcessID,
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		}
		fillProcessCounters(&info)
		procs = append(procs, info)

		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}

	return procs, nil
}

// fillProcessCounters loads memory and CPU counters for one process.
// Access failures leave the counters at zero.
func fillProcessCounters(info *ProcessInfo) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, info.PID)
	if err != nil {
		return
	}
	defer windows.CloseHandle(h)

	var mem windows.PROCESS_MEMORY_COUNTERS
	if err := windows.GetProcessMemoryInfo(h, &mem, uint32(unsafe.Sizeof(mem))); err == nil {
		info.WorkingSet = uint64(mem.WorkingSetSize)
	}

	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h, &creation, &exit, &kernel, &user); err == nil {
		info.CPUTicks = filetimeTicks(kernel) + filetimeTicks(user)
	}
}

// TrimWorkingSets asks every accessible process to release its working set,
// pushing idle pages out of RAM. Returns how many processes were trimmed.
// Run elevated to reach services and other sessions.
func TrimWorkingSets() (int, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("process snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return 0, fmt.Errorf("process enumeration failed: %w", err)
	}

	self := windows.GetCurrentProcessId()
	trimmed := 0
	for {
		// Skip the idle pseudo-process and ourselves
		if entry.ProcessID != 0 && entry.ProcessID != self {
			if trimWorkingSet(entry.ProcessID) {
				trimmed++
			}
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}

	return trimmed, nil
}

// trimWorkingSet calls EmptyWorkingSet on a single process.
func trimWorkingSet(pid uint32) bool {
	h, err := windows.OpenProcess(processSetQuota|windows.PROCESS_QUERY_INFORMATION, false, pid)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	ret, _, _ := procEmptyWorkingSet.Call(uintptr(h))
	return ret != 0
}
