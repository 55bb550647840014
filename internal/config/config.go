// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for rigtune.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.rigtune/config.toml
//   - ~/.rigtune/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigtune configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`
	// Profile selects the default optimization profile: "balanced", "gamer", "maximum"
	Profile string `toml:"profile" json:"profile"`

	// Task execution configuration
	Tasks TasksConfig `toml:"tasks" json:"tasks"`

	// Live system monitoring configuration
	Monitoring MonitoringConfig `toml:"monitoring" json:"monitoring"`

	// Cleanup configuration
	Cleanup CleanupConfig `toml:"cleanup" json:"cleanup"`

	// Service tuning configuration
	Services ServicesConfig `toml:"services" json:"services"`

	// Power plan configuration
	Power PowerConfig `toml:"power" json:"power"`

	// Network tuning configuration
	Network NetworkConfig `toml:"network" json:"network"`

	// Startup entry management configuration
	Startup StartupConfig `toml:"startup" json:"startup"`

	// Backup and restore configuration
	Backup BackupConfig `toml:"backup" json:"backup"`

	// Run history configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// TasksConfig controls the background task execution facility.
type TasksConfig struct {
	// WorkerCount is the number of pool workers for concurrent tasks (1-32)
	WorkerCount int `toml:"worker_count" json:"worker_count"`
	// ReapIntervalSecs is how often finished task records are swept, in seconds
	ReapIntervalSecs int `toml:"reap_interval_secs" json:"reap_interval_secs"`
	// RetentionSecs is how long finished task records stay queryable, in seconds
	RetentionSecs int `toml:"retention_secs" json:"retention_secs"`
	// ShutdownTimeoutSecs bounds how long shutdown waits for running tasks
	ShutdownTimeoutSecs int `toml:"shutdown_timeout_secs" json:"shutdown_timeout_secs"`
}

// MonitoringConfig controls the live system stats sampler.
type MonitoringConfig struct {
	// UpdateIntervalMS is the sampling interval in milliseconds (minimum 100)
	UpdateIntervalMS int `toml:"update_interval_ms" json:"update_interval_ms"`
	// HistoryPoints is how many samples each metric history keeps
	HistoryPoints int `toml:"history_points" json:"history_points"`
	// TopProcesses is how many processes the process table shows
	TopProcesses int `toml:"top_processes" json:"top_processes"`
}

// CleanupConfig selects which cleanup categories run during a full cleanup.
type CleanupConfig struct {
	// TempFiles removes user and system temp directories
	TempFiles bool `toml:"temp_files" json:"temp_files"`
	// BrowserCaches removes Chrome/Edge/Firefox cache directories
	BrowserCaches bool `toml:"browser_caches" json:"browser_caches"`
	// RecycleBin empties the recycle bin
	RecycleBin bool `toml:"recycle_bin" json:"recycle_bin"`
	// DNSCache flushes the resolver cache
	DNSCache bool `toml:"dns_cache" json:"dns_cache"`
	// IconCache rebuilds the shell icon cache
	IconCache bool `toml:"icon_cache" json:"icon_cache"`
	// EventLogs clears Windows event logs (off by default; destructive)
	EventLogs bool `toml:"event_logs" json:"event_logs"`
	// WindowsUpdate purges the SoftwareDistribution download cache
	WindowsUpdate bool `toml:"windows_update" json:"windows_update"`
	// LogExtensions are the file extensions treated as log debris
	LogExtensions []string `toml:"log_extensions" json:"log_extensions"`
	// MinAgeHours skips files modified more recently than this many hours
	MinAgeHours int `toml:"min_age_hours" json:"min_age_hours"`
	// DryRun reports what would be removed without deleting anything
	DryRun bool `toml:"dry_run" json:"dry_run"`
}

// ServicesConfig controls Windows service tuning.
type ServicesConfig struct {
	// Tuning maps service names to their target start mode ("disabled" or "manual").
	// Services not listed are never touched.
	Tuning map[string]string `toml:"tuning" json:"tuning"`
	// Skip lists services that must never be modified even if present in Tuning
	Skip []string `toml:"skip" json:"skip"`
}

// PowerConfig controls Windows power plan selection.
type PowerConfig struct {
	// ActivePlan is the plan applied by the optimizer: "balanced", "high", "maximum", "custom"
	ActivePlan string `toml:"active_plan" json:"active_plan"`
	// CustomPlanName is the display name used when ActivePlan is "custom"
	CustomPlanName string `toml:"custom_plan_name" json:"custom_plan_name"`
}

// NetworkConfig controls TCP stack and DNS tuning.
type NetworkConfig struct {
	// OptimizeTCP applies netsh TCP global tweaks (autotuning, RSS, chimney)
	OptimizeTCP bool `toml:"optimize_tcp" json:"optimize_tcp"`
	// SetDNS switches active adapters to the configured resolvers
	SetDNS bool `toml:"set_dns" json:"set_dns"`
	// PrimaryDNS is the preferred resolver address
	PrimaryDNS string `toml:"primary_dns" json:"primary_dns"`
	// SecondaryDNS is the alternate resolver address
	SecondaryDNS string `toml:"secondary_dns" json:"secondary_dns"`
}

// StartupConfig controls startup entry management.
type StartupConfig struct {
	// Whitelist lists startup entries that are never disabled
	Whitelist []string `toml:"whitelist" json:"whitelist"`
	// Blacklist lists startup entries that are always disabled
	Blacklist []string `toml:"blacklist" json:"blacklist"`
}

// BackupConfig controls pre-change snapshots.
type BackupConfig struct {
	// Enabled captures a settings snapshot before destructive operations
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir is the snapshot directory (empty = ~/.rigtune/backups)
	Dir string `toml:"dir" json:"dir"`
	// MaxSnapshots bounds how many snapshots are kept before pruning
	MaxSnapshots int `toml:"max_snapshots" json:"max_snapshots"`
	// CreateRestorePoint requests a Windows system restore point before optimizing
	CreateRestorePoint bool `toml:"create_restore_point" json:"create_restore_point"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled records cleanup and optimization runs
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.rigtune/history.db)
	Path string `toml:"path" json:"path"`
	// RetentionDays is how long run records are kept before pruning
	RetentionDays int `toml:"retention_days" json:"retention_days"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	// Level is the minimum level written: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Dir is the log directory (empty = ~/.rigtune/logs)
	Dir string `toml:"dir" json:"dir"`
	// RetentionDays is how long old log files are kept
	RetentionDays int `toml:"retention_days" json:"retention_days"`
	// MaxFileSizeMB rotates the active log file beyond this size
	MaxFileSizeMB int `toml:"max_file_size_mb" json:"max_file_size_mb"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode reduces padding for small terminals
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// RefreshIntervalMS is the dashboard redraw interval in milliseconds
	RefreshIntervalMS int `toml:"refresh_interval_ms" json:"refresh_interval_ms"`
	// ShowGraphs renders sparkline histories on the overview tab
	ShowGraphs bool `toml:"show_graphs" json:"show_graphs"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Profile: "balanced",
		Tasks: TasksConfig{
			WorkerCount:         4,
			ReapIntervalSecs:    5,
			RetentionSecs:       5,
			ShutdownTimeoutSecs: 10,
		},
		Monitoring: MonitoringConfig{
			UpdateIntervalMS: 1000,
			HistoryPoints:    60,
			TopProcesses:     10,
		},
		Cleanup: CleanupConfig{
			TempFiles:     true,
			BrowserCaches: true,
			RecycleBin:    true,
			DNSCache:      true,
			IconCache:     false,
			EventLogs:     false,
			WindowsUpdate: false,
			LogExtensions: []string{".log", ".tmp", ".dmp", ".old"},
			MinAgeHours:   24,
			DryRun:        false,
		},
		Services: ServicesConfig{
			// Safe-to-tune services on a gaming rig. Anything absent is untouched.
			Tuning: map[string]string{
				"SysMain": "disabled",
				"WSearch": "manual",
				"Spooler": "manual",
				"Themes":  "manual",
				"Fax":     "disabled",
			},
			Skip: nil,
		},
		Power: PowerConfig{
			ActivePlan:     "balanced",
			CustomPlanName: "Rigtune Performance Mode",
		},
		Network: NetworkConfig{
			OptimizeTCP:  true,
			SetDNS:       true,
			PrimaryDNS:   "1.1.1.1",
			SecondaryDNS: "1.0.0.1",
		},
		Startup: StartupConfig{
			Whitelist: nil,
			Blacklist: nil,
		},
		Backup: BackupConfig{
			Enabled:            true,
			Dir:                "",
			MaxSnapshots:       20,
			CreateRestorePoint: true,
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Dir:           "",
			RetentionDays: 7,
			MaxFileSizeMB: 10,
		},
		UI: UIConfig{
			Theme:             "dark",
			CompactMode:       false,
			RefreshIntervalMS: 500,
			ShowGraphs:        true,
		},
	}
}

// =============================================================================
// FILE PATHS
// =============================================================================

// ConfigDir returns the rigtune configuration directory (~/.rigtune).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".rigtune"), nil
}

// ConfigPathTOML returns the path to the TOML configuration file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON configuration file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
// SECURITY: Creates directory with 0700 permissions (owner-only access).
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// ensureSecurePermissions tightens permissions on an existing config file.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != 0600 {
		_ = os.Chmod(path, 0600)
	}
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the configuration, trying TOML first, then JSON, then defaults.
//
// Environment overrides, migration, defaults, and validation are applied on
// every path, so the returned config is always complete and valid.
func Load() (*Config, error) {
	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFrom(tomlPath)
		}
	}

	// Fall back to JSON
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFrom(jsonPath)
		}
	}

	// No config file: use defaults (env overrides still apply)
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFrom loads the configuration from a specific file path.
// The format is inferred from the extension (.json = JSON, anything else = TOML).
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	// Apply environment overrides
	cfg.ApplyEnvOverrides()

	// Apply migration, defaults, and validation
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	ensureSecurePermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	ensureSecurePermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return fillDefaults(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// General
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Profile == "" {
		cfg.Profile = defaults.Profile
	}

	// Tasks
	if cfg.Tasks.WorkerCount == 0 {
		cfg.Tasks.WorkerCount = defaults.Tasks.WorkerCount
	}
	if cfg.Tasks.ReapIntervalSecs == 0 {
		cfg.Tasks.ReapIntervalSecs = defaults.Tasks.ReapIntervalSecs
	}
	if cfg.Tasks.RetentionSecs == 0 {
		cfg.Tasks.RetentionSecs = defaults.Tasks.RetentionSecs
	}
	if cfg.Tasks.ShutdownTimeoutSecs == 0 {
		cfg.Tasks.ShutdownTimeoutSecs = defaults.Tasks.ShutdownTimeoutSecs
	}

	// Monitoring
	if cfg.Monitoring.UpdateIntervalMS == 0 {
		cfg.Monitoring.UpdateIntervalMS = defaults.Monitoring.UpdateIntervalMS
	}
	if cfg.Monitoring.HistoryPoints == 0 {
		cfg.Monitoring.HistoryPoints = defaults.Monitoring.HistoryPoints
	}
	if cfg.Monitoring.TopProcesses == 0 {
		cfg.Monitoring.TopProcesses = defaults.Monitoring.TopProcesses
	}

	// Cleanup
	if cfg.Cleanup.LogExtensions == nil {
		cfg.Cleanup.LogExtensions = append([]string(nil), defaults.Cleanup.LogExtensions...)
	}

	// Services
	if cfg.Services.Tuning == nil {
		cfg.Services.Tuning = make(map[string]string, len(defaults.Services.Tuning))
		for k, v := range defaults.Services.Tuning {
			cfg.Services.Tuning[k] = v
		}
	}

	// Power
	if cfg.Power.ActivePlan == "" {
		cfg.Power.ActivePlan = defaults.Power.ActivePlan
	}
	if cfg.Power.CustomPlanName == "" {
		cfg.Power.CustomPlanName = defaults.Power.CustomPlanName
	}

	// Network
	if cfg.Network.PrimaryDNS == "" {
		cfg.Network.PrimaryDNS = defaults.Network.PrimaryDNS
	}
	if cfg.Network.SecondaryDNS == "" {
		cfg.Network.SecondaryDNS = defaults.Network.SecondaryDNS
	}

	// Backup / History
	if cfg.Backup.MaxSnapshots == 0 {
		cfg.Backup.MaxSnapshots = defaults.Backup.MaxSnapshots
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = defaults.History.RetentionDays
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.RetentionDays == 0 {
		cfg.Logging.RetentionDays = defaults.Logging.RetentionDays
	}
	if cfg.Logging.MaxFileSizeMB == 0 {
		cfg.Logging.MaxFileSizeMB = defaults.Logging.MaxFileSizeMB
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.RefreshIntervalMS == 0 {
		cfg.UI.RefreshIntervalMS = defaults.UI.RefreshIntervalMS
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	// Write header comment
	fmt.Fprintln(file, "# rigtune configuration file")
	fmt.Fprintln(file, "# Generated by rigtune - edit with care")
	fmt.Fprintln(file, "#")
	fmt.Fprintln(file, "# Documentation: https://github.com/jeranaias/rigtune")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// General
	// ==========================================================================

	validProfiles := map[string]bool{"balanced": true, "gamer": true, "maximum": true}
	if !validProfiles[strings.ToLower(c.Profile)] {
		errs = append(errs, ValidationError{
			Field:   "profile",
			Message: fmt.Sprintf("invalid profile '%s', must be one of: balanced, gamer, maximum", c.Profile),
		})
	}

	// ==========================================================================
	// Tasks
	// ==========================================================================

	if c.Tasks.WorkerCount < 1 || c.Tasks.WorkerCount > 32 {
		errs = append(errs, ValidationError{
			Field:   "tasks.worker_count",
			Message: fmt.Sprintf("worker_count must be 1-32, got %d", c.Tasks.WorkerCount),
		})
	}
	if c.Tasks.ReapIntervalSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "tasks.reap_interval_secs",
			Message: fmt.Sprintf("reap_interval_secs must be at least 1, got %d", c.Tasks.ReapIntervalSecs),
		})
	}
	if c.Tasks.RetentionSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "tasks.retention_secs",
			Message: "retention_secs cannot be negative",
		})
	}
	if c.Tasks.ShutdownTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "tasks.shutdown_timeout_secs",
			Message: "shutdown_timeout_secs cannot be negative",
		})
	}

	// ==========================================================================
	// Monitoring
	// ==========================================================================

	// The sampler refuses intervals under 100ms; per-process stat reads get
	// expensive below that and the UI cannot keep up anyway.
	if c.Monitoring.UpdateIntervalMS < 100 {
		errs = append(errs, ValidationError{
			Field:   "monitoring.update_interval_ms",
			Message: fmt.Sprintf("update_interval_ms must be at least 100, got %d", c.Monitoring.UpdateIntervalMS),
		})
	}
	if c.Monitoring.HistoryPoints < 10 || c.Monitoring.HistoryPoints > 600 {
		errs = append(errs, ValidationError{
			Field:   "monitoring.history_points",
			Message: fmt.Sprintf("history_points must be 10-600, got %d", c.Monitoring.HistoryPoints),
		})
	}
	if c.Monitoring.TopProcesses < 1 || c.Monitoring.TopProcesses > 50 {
		errs = append(errs, ValidationError{
			Field:   "monitoring.top_processes",
			Message: fmt.Sprintf("top_processes must be 1-50, got %d", c.Monitoring.TopProcesses),
		})
	}

	// ==========================================================================
	// Cleanup
	// ==========================================================================

	if c.Cleanup.MinAgeHours < 0 {
		errs = append(errs, ValidationError{
			Field:   "cleanup.min_age_hours",
			Message: "min_age_hours cannot be negative",
		})
	}
	for _, ext := range c.Cleanup.LogExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   "cleanup.log_extensions",
				Message: fmt.Sprintf("extension '%s' must start with a dot", ext),
			})
		}
	}

	// ==========================================================================
	// Services
	// ==========================================================================

	validModes := map[string]bool{"disabled": true, "manual": true}
	for svc, mode := range c.Services.Tuning {
		if !validModes[strings.ToLower(mode)] {
			errs = append(errs, ValidationError{
				Field:   "services.tuning." + svc,
				Message: fmt.Sprintf("invalid start mode '%s', must be one of: disabled, manual", mode),
			})
		}
	}

	// ==========================================================================
	// Power
	// ==========================================================================

	validPlans := map[string]bool{"balanced": true, "high": true, "maximum": true, "custom": true}
	if !validPlans[strings.ToLower(c.Power.ActivePlan)] {
		errs = append(errs, ValidationError{
			Field:   "power.active_plan",
			Message: fmt.Sprintf("invalid plan '%s', must be one of: balanced, high, maximum, custom", c.Power.ActivePlan),
		})
	}
	if strings.ToLower(c.Power.ActivePlan) == "custom" && strings.TrimSpace(c.Power.CustomPlanName) == "" {
		errs = append(errs, ValidationError{
			Field:   "power.custom_plan_name",
			Message: "custom_plan_name is required when active_plan is 'custom'",
		})
	}

	// ==========================================================================
	// Network
	// ==========================================================================

	if c.Network.SetDNS {
		if net.ParseIP(c.Network.PrimaryDNS) == nil {
			errs = append(errs, ValidationError{
				Field:   "network.primary_dns",
				Message: fmt.Sprintf("'%s' is not a valid IP address", c.Network.PrimaryDNS),
			})
		}
		if c.Network.SecondaryDNS != "" && net.ParseIP(c.Network.SecondaryDNS) == nil {
			errs = append(errs, ValidationError{
				Field:   "network.secondary_dns",
				Message: fmt.Sprintf("'%s' is not a valid IP address", c.Network.SecondaryDNS),
			})
		}
	}

	// ==========================================================================
	// Backup / History
	// ==========================================================================

	if c.Backup.MaxSnapshots < 1 {
		errs = append(errs, ValidationError{
			Field:   "backup.max_snapshots",
			Message: fmt.Sprintf("max_snapshots must be at least 1, got %d", c.Backup.MaxSnapshots),
		})
	}
	if c.History.RetentionDays < 1 {
		errs = append(errs, ValidationError{
			Field:   "history.retention_days",
			Message: fmt.Sprintf("retention_days must be at least 1, got %d", c.History.RetentionDays),
		})
	}

	// ==========================================================================
	// Logging
	// ==========================================================================

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	if c.Logging.RetentionDays < 1 || c.Logging.RetentionDays > 365 {
		errs = append(errs, ValidationError{
			Field:   "logging.retention_days",
			Message: fmt.Sprintf("retention_days must be 1-365, got %d", c.Logging.RetentionDays),
		})
	}
	if c.Logging.MaxFileSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_file_size_mb",
			Message: fmt.Sprintf("max_file_size_mb must be at least 1, got %d", c.Logging.MaxFileSizeMB),
		})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.RefreshIntervalMS < 100 {
		errs = append(errs, ValidationError{
			Field:   "ui.refresh_interval_ms",
			Message: fmt.Sprintf("refresh_interval_ms must be at least 100, got %d", c.UI.RefreshIntervalMS),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in zero-valued fields with defaults.
// Unlike fillDefaults, this is safe to call on an already-loaded config.
func (c *Config) SetDefaults() {
	// fillDefaults never fails; the error return exists for interface parity
	_ = fillDefaults(c)
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// "performance" was the pre-1.0 name for the gamer profile
	if strings.ToLower(c.Profile) == "performance" {
		c.Profile = "gamer"
	}

	// Normalize old power plan aliases
	switch strings.ToLower(c.Power.ActivePlan) {
	case "high_performance", "high-performance":
		c.Power.ActivePlan = "high"
	case "ultimate":
		c.Power.ActivePlan = "maximum"
	}

	// "warning" is accepted as an alias for "warn"
	if strings.ToLower(c.Logging.Level) == "warning" {
		c.Logging.Level = "warn"
	}

	// Ensure the services map is initialized
	if c.Services.Tuning == nil {
		c.Services.Tuning = make(map[string]string)
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGTUNE_PROFILE: overrides profile
//   - RIGTUNE_WORKERS: overrides tasks.worker_count
//   - RIGTUNE_DRY_RUN: set to "1" or "true" to enable cleanup dry-run mode
//   - RIGTUNE_NO_BACKUP: set to "1" or "true" to disable pre-change snapshots
//   - RIGTUNE_LOG_LEVEL: overrides logging.level
//   - RIGTUNE_LOG_DIR: overrides logging.dir
//   - RIGTUNE_HISTORY_PATH: overrides history.path
//   - RIGTUNE_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	// RIGTUNE_PROFILE
	if profile := os.Getenv("RIGTUNE_PROFILE"); profile != "" {
		c.Profile = profile
	}

	// RIGTUNE_WORKERS
	if workers := os.Getenv("RIGTUNE_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Tasks.WorkerCount = n
		}
	}

	// RIGTUNE_DRY_RUN
	if dry := os.Getenv("RIGTUNE_DRY_RUN"); dry != "" {
		c.Cleanup.DryRun = dry == "1" || strings.ToLower(dry) == "true"
	}

	// RIGTUNE_NO_BACKUP
	if noBackup := os.Getenv("RIGTUNE_NO_BACKUP"); noBackup != "" {
		c.Backup.Enabled = !(noBackup == "1" || strings.ToLower(noBackup) == "true")
	}

	// RIGTUNE_LOG_LEVEL
	if level := os.Getenv("RIGTUNE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	// RIGTUNE_LOG_DIR
	if dir := os.Getenv("RIGTUNE_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}

	// RIGTUNE_HISTORY_PATH
	if path := os.Getenv("RIGTUNE_HISTORY_PATH"); path != "" {
		c.History.Path = path
	}

	// RIGTUNE_THEME
	if theme := os.Getenv("RIGTUNE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "tasks.worker_count").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "tasks.worker_count").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			// Comma-separated input for []string fields (e.g. startup.whitelist)
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(strVal, ",") {
					if trimmed := strings.TrimSpace(item); trimmed != "" {
						items = append(items, trimmed)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"profile",
		"tasks.worker_count",
		"tasks.reap_interval_secs",
		"tasks.retention_secs",
		"tasks.shutdown_timeout_secs",
		"monitoring.update_interval_ms",
		"monitoring.history_points",
		"monitoring.top_processes",
		"cleanup.temp_files",
		"cleanup.browser_caches",
		"cleanup.recycle_bin",
		"cleanup.dns_cache",
		"cleanup.icon_cache",
		"cleanup.event_logs",
		"cleanup.windows_update",
		"cleanup.log_extensions",
		"cleanup.min_age_hours",
		"cleanup.dry_run",
		"services.tuning",
		"services.skip",
		"power.active_plan",
		"power.custom_plan_name",
		"network.optimize_tcp",
		"network.set_dns",
		"network.primary_dns",
		"network.secondary_dns",
		"startup.whitelist",
		"startup.blacklist",
		"backup.enabled",
		"backup.dir",
		"backup.max_snapshots",
		"backup.create_restore_point",
		"history.enabled",
		"history.path",
		"history.retention_days",
		"logging.level",
		"logging.dir",
		"logging.retention_days",
		"logging.max_file_size_mb",
		"ui.theme",
		"ui.compact_mode",
		"ui.refresh_interval_ms",
		"ui.show_graphs",
	}
}

// Merge merges another config into this one, overwriting only non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// General
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.Profile != "" {
		c.Profile = other.Profile
	}

	// Tasks
	if other.Tasks.WorkerCount != 0 {
		c.Tasks.WorkerCount = other.Tasks.WorkerCount
	}
	if other.Tasks.ReapIntervalSecs != 0 {
		c.Tasks.ReapIntervalSecs = other.Tasks.ReapIntervalSecs
	}
	if other.Tasks.RetentionSecs != 0 {
		c.Tasks.RetentionSecs = other.Tasks.RetentionSecs
	}
	if other.Tasks.ShutdownTimeoutSecs != 0 {
		c.Tasks.ShutdownTimeoutSecs = other.Tasks.ShutdownTimeoutSecs
	}

	// Monitoring
	if other.Monitoring.UpdateIntervalMS != 0 {
		c.Monitoring.UpdateIntervalMS = other.Monitoring.UpdateIntervalMS
	}
	if other.Monitoring.HistoryPoints != 0 {
		c.Monitoring.HistoryPoints = other.Monitoring.HistoryPoints
	}
	if other.Monitoring.TopProcesses != 0 {
		c.Monitoring.TopProcesses = other.Monitoring.TopProcesses
	}

	// Cleanup: booleans merge true-wins, matching how profiles layer on top
	// of the base config
	if other.Cleanup.TempFiles {
		c.Cleanup.TempFiles = true
	}
	if other.Cleanup.BrowserCaches {
		c.Cleanup.BrowserCaches = true
	}
	if other.Cleanup.RecycleBin {
		c.Cleanup.RecycleBin = true
	}
	if other.Cleanup.DNSCache {
		c.Cleanup.DNSCache = true
	}
	if other.Cleanup.IconCache {
		c.Cleanup.IconCache = true
	}
	if other.Cleanup.EventLogs {
		c.Cleanup.EventLogs = true
	}
	if other.Cleanup.WindowsUpdate {
		c.Cleanup.WindowsUpdate = true
	}
	if other.Cleanup.LogExtensions != nil {
		c.Cleanup.LogExtensions = append([]string(nil), other.Cleanup.LogExtensions...)
	}
	if other.Cleanup.MinAgeHours != 0 {
		c.Cleanup.MinAgeHours = other.Cleanup.MinAgeHours
	}
	if other.Cleanup.DryRun {
		c.Cleanup.DryRun = true
	}

	// Services
	if other.Services.Tuning != nil {
		if c.Services.Tuning == nil {
			c.Services.Tuning = make(map[string]string, len(other.Services.Tuning))
		}
		for k, v := range other.Services.Tuning {
			c.Services.Tuning[k] = v
		}
	}
	if other.Services.Skip != nil {
		c.Services.Skip = append([]string(nil), other.Services.Skip...)
	}

	// Power
	if other.Power.ActivePlan != "" {
		c.Power.ActivePlan = other.Power.ActivePlan
	}
	if other.Power.CustomPlanName != "" {
		c.Power.CustomPlanName = other.Power.CustomPlanName
	}

	// Network
	if other.Network.OptimizeTCP {
		c.Network.OptimizeTCP = true
	}
	if other.Network.SetDNS {
		c.Network.SetDNS = true
	}
	if other.Network.PrimaryDNS != "" {
		c.Network.PrimaryDNS = other.Network.PrimaryDNS
	}
	if other.Network.SecondaryDNS != "" {
		c.Network.SecondaryDNS = other.Network.SecondaryDNS
	}

	// Startup
	if other.Startup.Whitelist != nil {
		c.Startup.Whitelist = append([]string(nil), other.Startup.Whitelist...)
	}
	if other.Startup.Blacklist != nil {
		c.Startup.Blacklist = append([]string(nil), other.Startup.Blacklist...)
	}

	// Backup
	if other.Backup.Enabled {
		c.Backup.Enabled = true
	}
	if other.Backup.Dir != "" {
		c.Backup.Dir = other.Backup.Dir
	}
	if other.Backup.MaxSnapshots != 0 {
		c.Backup.MaxSnapshots = other.Backup.MaxSnapshots
	}
	if other.Backup.CreateRestorePoint {
		c.Backup.CreateRestorePoint = true
	}

	// History
	if other.History.Enabled {
		c.History.Enabled = true
	}
	if other.History.Path != "" {
		c.History.Path = other.History.Path
	}
	if other.History.RetentionDays != 0 {
		c.History.RetentionDays = other.History.RetentionDays
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Dir != "" {
		c.Logging.Dir = other.Logging.Dir
	}
	if other.Logging.RetentionDays != 0 {
		c.Logging.RetentionDays = other.Logging.RetentionDays
	}
	if other.Logging.MaxFileSizeMB != 0 {
		c.Logging.MaxFileSizeMB = other.Logging.MaxFileSizeMB
	}

	// UI
	if other.UI.Theme != "" {
		c.UI.Theme = other.UI.Theme
	}
	if other.UI.CompactMode {
		c.UI.CompactMode = true
	}
	if other.UI.RefreshIntervalMS != 0 {
		c.UI.RefreshIntervalMS = other.UI.RefreshIntervalMS
	}
	if other.UI.ShowGraphs {
		c.UI.ShowGraphs = true
	}
}

// Clone creates a deep copy of the configuration.
// Deep copy matters here: a shallow copy would share the services map and the
// list slices, so mutating a clone would silently mutate the original.
func (c *Config) Clone() *Config {
	clone := *c

	if c.Services.Tuning != nil {
		clone.Services.Tuning = make(map[string]string, len(c.Services.Tuning))
		for k, v := range c.Services.Tuning {
			clone.Services.Tuning[k] = v
		}
	}
	if c.Services.Skip != nil {
		clone.Services.Skip = append([]string(nil), c.Services.Skip...)
	}
	if c.Cleanup.LogExtensions != nil {
		clone.Cleanup.LogExtensions = append([]string(nil), c.Cleanup.LogExtensions...)
	}
	if c.Startup.Whitelist != nil {
		clone.Startup.Whitelist = append([]string(nil), c.Startup.Whitelist...)
	}
	if c.Startup.Blacklist != nil {
		clone.Startup.Blacklist = append([]string(nil), c.Startup.Blacklist...)
	}

	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
