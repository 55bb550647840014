// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for rigtune.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - TasksConfig: Background task pool sizing and record retention
//   - CleanupConfig: Cleanup category selection
//   - PowerConfig / NetworkConfig / ServicesConfig: Optimizer settings
//   - Watcher: Hot-reload support for config file edits
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RIGTUNE_*)
//   - ~/.rigtune/config.toml
//   - ~/.rigtune/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	workers := cfg.Tasks.WorkerCount
//	plan := cfg.Power.ActivePlan
package config
