// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cleaner removes Windows debris: temp directories, caches, stale
// logs, the recycle bin, and the Windows Update download cache.
package cleaner

import (
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// PATH TABLE
// =============================================================================

// Paths lists the locations each category touches. Entries may be files or
// directories; anything missing is silently skipped, so one table serves
// every Windows version. Tests inject their own table via WithPaths.
type Paths struct {
	// Temp holds the user and system temp directories.
	Temp []string

	// SystemCache holds prefetch, shell, and web caches. May contain
	// single files such as IconCache.db.
	SystemCache []string

	// Browser holds the Chrome/Edge/Opera/Brave cache directories.
	Browser []string

	// FirefoxProfiles holds profile container directories; only the
	// cache2/startupCache/OfflineCache subdirectories of each profile are
	// cleaned, never the profile data itself.
	FirefoxProfiles []string

	// Logs holds log and crash-dump locations, swept with the configured
	// extension filter.
	Logs []string

	// UpdateCache holds the Windows Update staging folders that get
	// renamed aside while the update services are stopped.
	UpdateCache []string

	// RecycleBin is the hidden recycle bin root, used only to measure.
	RecycleBin string
}

// DefaultPaths builds the category table from the environment. Locations
// whose base variable is unset are dropped rather than turned into relative
// paths.
func DefaultPaths() Paths {
	windir := os.Getenv("WINDIR")
	localAppData := os.Getenv("LOCALAPPDATA")
	appData := os.Getenv("APPDATA")
	userProfile := os.Getenv("USERPROFILE")

	var p Paths

	p.Temp = compactPaths(
		os.Getenv("TEMP"),
		os.Getenv("TMP"),
		joinIf(windir, "Temp"),
		joinIf(localAppData, "Temp"),
		joinIf(userProfile, "AppData", "Local", "Temp"),
	)

	p.SystemCache = compactPaths(
		joinIf(windir, "Prefetch"),
		joinIf(windir, "SoftwareDistribution", "Download"),
		joinIf(localAppData, "Microsoft", "Windows", "INetCache"),
		joinIf(localAppData, "Microsoft", "Windows", "WebCache"),
		joinIf(appData, "Microsoft", "Windows", "Recent"),
		joinIf(localAppData, "IconCache.db"),
	)

	p.Browser = compactPaths(
		joinIf(localAppData, "Google", "Chrome", "User Data", "Default", "Cache"),
		joinIf(localAppData, "Google", "Chrome", "User Data", "Default", "Code Cache"),
		joinIf(localAppData, "Google", "Chrome", "User Data", "Default", "GPUCache"),
		joinIf(localAppData, "Microsoft", "Edge", "User Data", "Default", "Cache"),
		joinIf(localAppData, "Microsoft", "Edge", "User Data", "Default", "Code Cache"),
		joinIf(appData, "Opera Software", "Opera Stable", "Cache"),
		joinIf(localAppData, "BraveSoftware", "Brave-Browser", "User Data", "Default", "Cache"),
	)

	p.FirefoxProfiles = compactPaths(
		joinIf(appData, "Mozilla", "Firefox", "Profiles"),
		joinIf(localAppData, "Mozilla", "Firefox", "Profiles"),
	)

	p.Logs = compactPaths(
		joinIf(windir, "Logs"),
		joinIf(windir, "Debug"),
		joinIf(windir, "Minidump"),
		joinIf(windir, "memory.dmp"),
		joinIf(localAppData, "CrashDumps"),
	)

	p.UpdateCache = compactPaths(
		joinIf(windir, "SoftwareDistribution"),
		joinIf(windir, "System32", "catroot2"),
	)

	if drive := os.Getenv("SYSTEMDRIVE"); drive != "" {
		p.RecycleBin = drive + `\$Recycle.Bin`
	} else {
		p.RecycleBin = `C:\$Recycle.Bin`
	}

	return p
}

// joinIf joins parts onto base, or returns "" when base is unset.
func joinIf(base string, parts ...string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(append([]string{base}, parts...)...)
}

// compactPaths drops empty entries and case-insensitive duplicates (TEMP and
// TMP usually point at the same directory; counting it twice would double
// the reported savings).
func compactPaths(paths ...string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		cleaned := filepath.Clean(p)
		key := strings.ToLower(cleaned)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// identifyBrowser names the browser a cache path belongs to, for status
// lines. Returns "" for paths that are not browser caches.
func identifyBrowser(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "chrome"):
		return "Google Chrome"
	case strings.Contains(p, "firefox"):
		return "Mozilla Firefox"
	case strings.Contains(p, "edge"):
		return "Microsoft Edge"
	case strings.Contains(p, "opera"):
		return "Opera"
	case strings.Contains(p, "brave"):
		return "Brave"
	}
	return ""
}
