// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - `rigtune config`: inspect and edit settings.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/rigtune/internal/backup"
	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/util"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(cfg *config.Config, log *logging.Logger, args Args) error {
	parser := NewArgParser(args.Raw)

	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		return configShow(cfg, args)
	case "get":
		return configGet(cfg, parser, args)
	case "set":
		return configSet(cfg, parser)
	case "reset":
		return configReset(args)
	case "export":
		return configExport(cfg, parser)
	case "import":
		return configImport(parser, args)
	case "backup":
		return configBackup(cfg, log, args)
	case "restore":
		return configRestore(cfg, log, parser, args)
	case "path":
		return configPath(args)
	default:
		return UsageError("unknown config subcommand %q (show, get, set, reset, export, import, backup, restore, path)", args.Subcommand)
	}
}

func configShow(cfg *config.Config, args Args) error {
	if args.JSON {
		printJSON(cfg)
		return nil
	}
	fmt.Print(cfg.String())
	return nil
}

func configGet(cfg *config.Config, parser *ArgParser, args Args) error {
	key := parser.Positional(1)
	if key == "" {
		return UsageError("config get needs a key, e.g. tasks.worker_count")
	}
	value, err := cfg.Get(key)
	if err != nil {
		return NotFoundError("%v", err)
	}
	if args.JSON {
		printJSON(map[string]any{key: value})
		return nil
	}
	fmt.Printf("%s = %v\n", key, value)
	return nil
}

func configSet(cfg *config.Config, parser *ArgParser) error {
	key, value := parser.Positional(1), parser.Positional(2)
	if key == "" || value == "" {
		return UsageError("config set needs a key and a value")
	}
	if err := cfg.Set(key, value); err != nil {
		return ConfigError(err)
	}
	if err := cfg.Validate(); err != nil {
		return ConfigError(fmt.Errorf("value rejected: %w", err))
	}
	if err := config.Save(cfg); err != nil {
		return ConfigError(err)
	}
	config.SetGlobal(cfg)
	printSuccess("%s = %s", key, value)
	return nil
}

func configReset(args Args) error {
	if err := Confirm(args, "Reset all settings to defaults?"); err != nil {
		return err
	}
	cfg := config.Default()
	if err := config.Save(cfg); err != nil {
		return ConfigError(err)
	}
	config.SetGlobal(cfg)
	printSuccess("settings reset to defaults")
	return nil
}

// configExport writes the config to an explicit path; the extension
// picks the format (.toml or .json).
func configExport(cfg *config.Config, parser *ArgParser) error {
	path := parser.Positional(1)
	if path == "" {
		return UsageError("config export needs a destination file")
	}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = config.SaveTOML(cfg, path)
	case ".json":
		err = config.SaveJSON(cfg, path)
	default:
		return UsageError("config export supports .toml and .json, got %q", filepath.Ext(path))
	}
	if err != nil {
		return ConfigError(err)
	}
	printSuccess("settings exported to %s", path)
	return nil
}

// configImport validates a settings file and adopts it as the live
// configuration.
func configImport(parser *ArgParser, args Args) error {
	path := parser.Positional(1)
	if path == "" {
		return UsageError("config import needs a source file")
	}
	imported, err := config.LoadFrom(path)
	if err != nil {
		return ConfigError(err)
	}
	if err := Confirm(args, fmt.Sprintf("Replace current settings with %s?", path)); err != nil {
		return err
	}
	if err := config.Save(imported); err != nil {
		return ConfigError(err)
	}
	config.SetGlobal(imported)
	printSuccess("settings imported from %s", path)
	return nil
}

func configBackup(cfg *config.Config, log *logging.Logger, args Args) error {
	store, err := backup.New(cfg.Backup, backup.WithLogger(log))
	if err != nil {
		return ConfigError(err)
	}
	snap, err := store.Create(cfg)
	if err != nil {
		return ConfigError(err)
	}
	if args.JSON {
		printJSON(snap)
		return nil
	}
	printSuccess("settings backed up to %s (%s)", snap.Path, util.FormatBytes(snap.Size))
	return nil
}

func configRestore(cfg *config.Config, log *logging.Logger, parser *ArgParser, args Args) error {
	store, err := backup.New(cfg.Backup, backup.WithLogger(log))
	if err != nil {
		return ConfigError(err)
	}

	name := parser.Positional(1)
	if name == "" {
		snaps, err := store.List()
		if err != nil {
			return ConfigError(err)
		}
		if len(snaps) == 0 {
			return NotFoundError("no settings backups in %s", store.Dir())
		}
		newest := snaps[0]
		for _, s := range snaps[1:] {
			if s.CreatedAt.After(newest.CreatedAt) {
				newest = s
			}
		}
		name = newest.Name
	}

	if err := Confirm(args, fmt.Sprintf("Restore settings from %s?", name)); err != nil {
		return err
	}
	restored, err := store.Restore(name)
	if err != nil {
		return ConfigError(err)
	}
	config.SetGlobal(restored)
	printSuccess("settings restored from %s", name)
	return nil
}

func configPath(args Args) error {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return ConfigError(err)
	}
	jsonPath, _ := config.ConfigPathJSON()
	if args.JSON {
		printJSON(map[string]string{"toml": tomlPath, "json": jsonPath})
		return nil
	}
	fmt.Println(tomlPath)
	return nil
}
