// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package winsys wraps the Windows-facing machinery the rest of rigtune builds on.
package winsys

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemTimes       = kernel32.NewProc("GetSystemTimes")
	procGlobalMemoryStatusEx = kernel32.NewProc("GlobalMemoryStatusEx")
	procGetTickCount64       = kernel32.NewProc("GetTickCount64")
)

// CPUTimes returns the cumulative idle and total processor time in 100ns
// ticks across all cores. CPU load is the delta ratio between two reads:
//
//	busy = (total2 - total1) - (idle2 - idle1)
//	load = busy / (total2 - total1)
func CPUTimes() (idle, total uint64, err error) {
	var idleFT, kernelFT, userFT windows.Filetime

	ret, _, callErr := procGetSystemTimes.Call(
		uintptr(unsafe.Pointer(&idleFT)),
		uintptr(unsafe.Pointer(&kernelFT)),
		uintptr(unsafe.Pointer(&userFT)),
	)
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetSystemTimes failed: %w", callErr)
	}

	idle = filetimeTicks(idleFT)
	// Kernel time already includes idle time
	total = filetimeTicks(kernelFT) + filetimeTicks(userFT)
	return idle, total, nil
}

// memoryStatusEx mirrors the Win32 MEMORYSTATUSEX layout.
type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

// MemoryStatus returns total and available physical memory in bytes.
func MemoryStatus() (total, avail uint64, err error) {
	var status memoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))

	ret, _, callErr := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&status)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GlobalMemoryStatusEx failed: %w", callErr)
	}

	return status.TotalPhys, status.AvailPhys, nil
}

// DiskUsage returns total and free bytes for the volume holding path.
func DiskUsage(path string) (total, free uint64, err error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, err
	}

	var freeForCaller, totalBytes, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeForCaller, &totalBytes, &totalFree); err != nil {
		return 0, 0, fmt.Errorf("GetDiskFreeSpaceEx failed: %w", err)
	}

	// Free space as visible to this user (quotas apply)
	return totalBytes, freeForCaller, nil
}

// Uptime returns how long the system has been running.
func Uptime() (time.Duration, error) {
	ms, _, callErr := procGetTickCount64.Call()
	if ms == 0 {
		return 0, fmt.Errorf("GetTickCount64 failed: %w", callErr)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// filetimeTicks flattens a FILETIME into a single 100ns tick counter.
func filetimeTicks(ft windows.Filetime) uint64 {
	return uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
}
