// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backup snapshots and restores rigtune settings.
package backup

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	snapshotPrefix = "settings_backup_"
	snapshotExt    = ".json"
	digestExt      = ".b2"
	stampLayout    = "20060102_150405"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no snapshot matches the requested name.
	ErrNotFound = errors.New("backup: snapshot not found")

	// ErrDigestMissing is returned when a snapshot has no digest sidecar.
	ErrDigestMissing = errors.New("backup: digest sidecar missing")

	// ErrDigestMismatch is returned when a snapshot's contents no longer
	// match its recorded digest.
	ErrDigestMismatch = errors.New("backup: digest mismatch")
)

// =============================================================================
// TYPES
// =============================================================================

// Snapshot describes one settings backup on disk.
type Snapshot struct {
	// Name is the snapshot's file name, e.g. settings_backup_20250825_141005.json
	Name string `json:"name"`
	// Path is the absolute location of the snapshot file
	Path string `json:"path"`
	// CreatedAt is the capture time encoded in the name
	CreatedAt time.Time `json:"created_at"`
	// Size is the snapshot file size in bytes
	Size int64 `json:"size"`
}

// Store is a directory of settings snapshots with digest sidecars.
type Store struct {
	dir string
	max int
	log *logging.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for snapshot activity.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New opens (creating if needed) the snapshot directory described by bc.
// An empty bc.Dir falls back to ~/.rigtune/backups.
func New(bc config.BackupConfig, opts ...Option) (*Store, error) {
	s := &Store{
		max: bc.MaxSnapshots,
		log: logging.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}

	dir := bc.Dir
	if dir == "" {
		base, err := config.ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("backup: locate config dir: %w", err)
		}
		dir = filepath.Join(base, "backups")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("backup: create snapshot directory: %w", err)
	}
	s.dir = dir
	return s, nil
}

// Dir returns the directory snapshots are kept in.
func (s *Store) Dir() string { return s.dir }

// =============================================================================
// CREATE
// =============================================================================

// Create captures cfg as a new timestamped snapshot and returns its
// descriptor. A nil cfg snapshots the defaults. When MaxSnapshots is set,
// the oldest snapshots beyond the limit are pruned afterwards.
func (s *Store) Create(cfg *config.Config) (Snapshot, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup: encode settings: %w", err)
	}
	data = append(data, '\n')

	// Same-second snapshots advance the stamp instead of overwriting.
	ts := s.now().Truncate(time.Second)
	var name, path string
	for {
		name = snapshotPrefix + ts.Format(stampLayout) + snapshotExt
		path = filepath.Join(s.dir, name)
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("backup: stat %s: %w", name, err)
		}
		ts = ts.Add(time.Second)
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("backup: write snapshot: %w", err)
	}
	sidecar := digestHex(data) + "  " + name + "\n"
	if err := util.AtomicWriteFileWithDir(path+digestExt, []byte(sidecar), 0600, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("backup: write digest: %w", err)
	}

	s.log.Info("backup", "captured settings snapshot %s (%s)", name, util.FormatBytes(int64(len(data))))

	if s.max > 0 {
		s.enforceLimit()
	}

	return Snapshot{Name: name, Path: path, CreatedAt: ts, Size: int64(len(data))}, nil
}

// enforceLimit removes the oldest snapshots if over the configured limit.
func (s *Store) enforceLimit() {
	snaps, err := s.List()
	if err != nil || len(snaps) <= s.max {
		return
	}
	if _, err := s.Prune(s.max); err != nil {
		s.log.Warn("backup", "prune old snapshots: %v", err)
	}
}

// =============================================================================
// LIST
// =============================================================================

// List returns the snapshots on disk, most recent first. Files that do not
// follow the snapshot naming scheme are ignored.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("backup: read snapshot directory: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		ts, ok := parseStamp(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Name:      name,
			Path:      filepath.Join(s.dir, name),
			CreatedAt: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].Name > snaps[j].Name
		}
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

// =============================================================================
// LOAD / RESTORE
// =============================================================================

// Load verifies a snapshot's digest and decodes it, without touching the
// live configuration. The ".json" suffix on name is optional.
func (s *Store) Load(name string) (*config.Config, error) {
	snap, err := s.find(name)
	if err != nil {
		return nil, err
	}
	if err := s.verify(snap); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(snap.Path)
	if err != nil {
		return nil, fmt.Errorf("backup: decode snapshot %s: %w", snap.Name, err)
	}
	return cfg, nil
}

// Restore verifies a snapshot and overwrites the live configuration with
// it. The restored configuration is returned so callers can adopt it
// without re-reading the file.
func (s *Store) Restore(name string) (*config.Config, error) {
	cfg, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	if err := config.Save(cfg); err != nil {
		return nil, fmt.Errorf("backup: write restored settings: %w", err)
	}
	s.log.Info("backup", "restored settings from %s", name)
	return cfg, nil
}

// =============================================================================
// PRUNE
// =============================================================================

// Prune deletes all but the keep most recent snapshots, along with their
// digest sidecars, and returns how many were removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("backup: keep must be >= 0, got %d", keep)
	}
	snaps, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(snaps) <= keep {
		return 0, nil
	}

	removed := 0
	for _, snap := range snaps[keep:] {
		if err := os.Remove(snap.Path); err != nil {
			return removed, fmt.Errorf("backup: remove %s: %w", snap.Name, err)
		}
		// Sidecar removal is best effort; an orphaned digest is harmless.
		os.Remove(snap.Path + digestExt)
		removed++
	}
	if removed > 0 {
		s.log.Info("backup", "pruned %d snapshots, keeping %d", removed, keep)
	}
	return removed, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// find resolves a snapshot name to its on-disk descriptor.
func (s *Store) find(name string) (Snapshot, error) {
	if !strings.HasSuffix(name, snapshotExt) {
		name += snapshotExt
	}
	// Base strips any path components so lookups stay inside the store.
	name = filepath.Base(name)
	path := filepath.Join(s.dir, name)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Snapshot{}, fmt.Errorf("backup: stat snapshot: %w", err)
	}
	ts, _ := parseStamp(name)
	return Snapshot{Name: name, Path: path, CreatedAt: ts, Size: info.Size()}, nil
}

// verify checks a snapshot's contents against its digest sidecar.
func (s *Store) verify(snap Snapshot) error {
	data, err := os.ReadFile(snap.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, snap.Name)
		}
		return fmt.Errorf("backup: read snapshot: %w", err)
	}

	raw, err := os.ReadFile(snap.Path + digestExt)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDigestMissing, snap.Name)
		}
		return fmt.Errorf("backup: read digest: %w", err)
	}

	fields := strings.Fields(string(raw))
	if len(fields) == 0 || !strings.EqualFold(fields[0], digestHex(data)) {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, snap.Name)
	}
	return nil
}

// digestHex returns the BLAKE2b-256 digest of data as lowercase hex.
func digestHex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// parseStamp extracts the capture time encoded in a snapshot file name.
func parseStamp(name string) (time.Time, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExt)
	ts, err := time.ParseInLocation(stampLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
