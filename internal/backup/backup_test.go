// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
)

func newTestStore(t *testing.T, max int) *Store {
	t.Helper()
	st, err := New(config.BackupConfig{Dir: t.TempDir(), MaxSnapshots: max}, WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

// fixClock pins the store's clock to a single instant.
func fixClock(st *Store, at time.Time) {
	st.now = func() time.Time { return at }
}

// stepClock makes each Create see a timestamp one minute after the last.
func stepClock(st *Store, start time.Time) {
	n := 0
	st.now = func() time.Time {
		at := start.Add(time.Duration(n) * time.Minute)
		n++
		return at
	}
}

func TestCreate_WritesSnapshotAndDigest(t *testing.T) {
	st := newTestStore(t, 0)
	at := time.Date(2025, 8, 25, 14, 10, 5, 0, time.Local)
	fixClock(st, at)

	cfg := config.Default()
	cfg.Network.PrimaryDNS = "9.9.9.9"

	snap, err := st.Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if snap.Name != "settings_backup_20250825_141005.json" {
		t.Errorf("unexpected snapshot name %q", snap.Name)
	}
	if !snap.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", snap.CreatedAt, at)
	}

	data, err := os.ReadFile(snap.Path)
	if err != nil {
		t.Fatalf("snapshot file not written: %v", err)
	}
	if snap.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", snap.Size, len(data))
	}
	if !strings.Contains(string(data), "9.9.9.9") {
		t.Error("snapshot does not contain the configured DNS address")
	}

	raw, err := os.ReadFile(snap.Path + digestExt)
	if err != nil {
		t.Fatalf("digest sidecar not written: %v", err)
	}
	fields := strings.Fields(string(raw))
	if len(fields) != 2 {
		t.Fatalf("sidecar has %d fields, want 2: %q", len(fields), raw)
	}
	if fields[0] != digestHex(data) {
		t.Errorf("sidecar digest %q does not match file contents", fields[0])
	}
	if len(fields[0]) != 64 {
		t.Errorf("digest is %d hex chars, want 64", len(fields[0]))
	}
	if fields[1] != snap.Name {
		t.Errorf("sidecar names %q, want %q", fields[1], snap.Name)
	}
}

func TestCreate_SameSecondGetsFreshName(t *testing.T) {
	st := newTestStore(t, 0)
	fixClock(st, time.Date(2025, 8, 25, 14, 10, 5, 0, time.Local))

	first, err := st.Create(config.Default())
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := st.Create(config.Default())
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first.Name == second.Name {
		t.Fatalf("both snapshots named %q", first.Name)
	}
	if got := second.CreatedAt.Sub(first.CreatedAt); got != time.Second {
		t.Errorf("second stamp advanced by %v, want 1s", got)
	}
}

func TestList_NewestFirstSkipsForeignFiles(t *testing.T) {
	st := newTestStore(t, 0)
	stepClock(st, time.Date(2025, 8, 25, 9, 0, 0, 0, time.Local))

	for i := 0; i < 3; i++ {
		if _, err := st.Create(config.Default()); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	// Neither of these should show up in listings.
	if err := os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(st.Dir(), "settings_backup_garbage.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	snaps, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("List returned %d snapshots, want 3", len(snaps))
	}
	if snaps[0].Name != "settings_backup_20250825_090200.json" {
		t.Errorf("newest snapshot is %q", snaps[0].Name)
	}
	if snaps[2].Name != "settings_backup_20250825_090000.json" {
		t.Errorf("oldest snapshot is %q", snaps[2].Name)
	}
}

func TestLoad_RoundTripsSettings(t *testing.T) {
	st := newTestStore(t, 0)

	cfg := config.Default()
	cfg.Network.PrimaryDNS = "9.9.9.9"
	cfg.Power.ActivePlan = "maximum"
	cfg.Cleanup.MinAgeHours = 48

	snap, err := st.Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := st.Load(snap.Name)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Network.PrimaryDNS != "9.9.9.9" {
		t.Errorf("PrimaryDNS = %q", got.Network.PrimaryDNS)
	}
	if got.Power.ActivePlan != "maximum" {
		t.Errorf("ActivePlan = %q", got.Power.ActivePlan)
	}
	if got.Cleanup.MinAgeHours != 48 {
		t.Errorf("MinAgeHours = %d", got.Cleanup.MinAgeHours)
	}

	// The .json suffix is optional.
	if _, err := st.Load(strings.TrimSuffix(snap.Name, snapshotExt)); err != nil {
		t.Errorf("Load without extension failed: %v", err)
	}
}

func TestLoad_NilConfigSnapshotsDefaults(t *testing.T) {
	st := newTestStore(t, 0)

	snap, err := st.Create(nil)
	if err != nil {
		t.Fatalf("Create(nil) failed: %v", err)
	}
	got, err := st.Load(snap.Name)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Power.ActivePlan != "balanced" {
		t.Errorf("ActivePlan = %q, want the default", got.Power.ActivePlan)
	}
}

func TestLoad_RejectsTamperedSnapshot(t *testing.T) {
	st := newTestStore(t, 0)

	snap, err := st.Create(config.Default())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	data, err := os.ReadFile(snap.Path)
	if err != nil {
		t.Fatal(err)
	}
	// Still valid JSON, but not the bytes the digest was taken over.
	if err := os.WriteFile(snap.Path, append(data, ' ', '\n'), 0600); err != nil {
		t.Fatal(err)
	}

	_, err = st.Load(snap.Name)
	if !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("Load error = %v, want ErrDigestMismatch", err)
	}
}

func TestLoad_MissingDigestSidecar(t *testing.T) {
	st := newTestStore(t, 0)

	snap, err := st.Create(config.Default())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.Remove(snap.Path + digestExt); err != nil {
		t.Fatal(err)
	}

	_, err = st.Load(snap.Name)
	if !errors.Is(err, ErrDigestMissing) {
		t.Fatalf("Load error = %v, want ErrDigestMissing", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	st := newTestStore(t, 0)
	_, err := st.Load("settings_backup_20200101_000000.json")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load error = %v, want ErrNotFound", err)
	}
}

func TestRestore_OverwritesLiveConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	st := newTestStore(t, 0)

	cfg := config.Default()
	cfg.Network.PrimaryDNS = "9.9.9.9"
	snap, err := st.Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	restored, err := st.Restore(snap.Name)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Network.PrimaryDNS != "9.9.9.9" {
		t.Errorf("restored PrimaryDNS = %q", restored.Network.PrimaryDNS)
	}

	if _, err := os.Stat(filepath.Join(home, ".rigtune", "config.toml")); err != nil {
		t.Fatalf("live config not written: %v", err)
	}
	live, err := config.Load()
	if err != nil {
		t.Fatalf("reloading live config failed: %v", err)
	}
	if live.Network.PrimaryDNS != "9.9.9.9" {
		t.Errorf("live PrimaryDNS = %q, want the restored value", live.Network.PrimaryDNS)
	}
}

func TestPrune_KeepsNewest(t *testing.T) {
	st := newTestStore(t, 0)
	stepClock(st, time.Date(2025, 8, 25, 9, 0, 0, 0, time.Local))

	var oldest Snapshot
	for i := 0; i < 5; i++ {
		snap, err := st.Create(config.Default())
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if i == 0 {
			oldest = snap
		}
	}

	n, err := st.Prune(2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Prune removed %d, want 3", n)
	}

	snaps, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("%d snapshots remain, want 2", len(snaps))
	}
	if snaps[0].Name != "settings_backup_20250825_090400.json" {
		t.Errorf("kept %q, want the newest", snaps[0].Name)
	}
	if _, err := os.Stat(oldest.Path + digestExt); !os.IsNotExist(err) {
		t.Error("pruned snapshot's digest sidecar still on disk")
	}

	// Nothing left to do.
	if n, err := st.Prune(10); err != nil || n != 0 {
		t.Errorf("Prune(10) = %d, %v; want 0, nil", n, err)
	}
	if _, err := st.Prune(-1); err == nil {
		t.Error("Prune(-1) did not fail")
	}
}

func TestCreate_EnforcesMaxSnapshots(t *testing.T) {
	st := newTestStore(t, 2)
	stepClock(st, time.Date(2025, 8, 25, 9, 0, 0, 0, time.Local))

	for i := 0; i < 3; i++ {
		if _, err := st.Create(config.Default()); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	snaps, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("%d snapshots on disk, want 2", len(snaps))
	}
	if snaps[1].Name != "settings_backup_20250825_090100.json" {
		t.Errorf("oldest surviving snapshot is %q", snaps[1].Name)
	}
}

func TestNew_DefaultsDirUnderConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	st, err := New(config.BackupConfig{}, WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	want := filepath.Join(home, ".rigtune", "backups")
	if st.Dir() != want {
		t.Errorf("Dir = %q, want %q", st.Dir(), want)
	}
	info, err := os.Stat(want)
	if err != nil || !info.IsDir() {
		t.Errorf("snapshot directory not created: %v", err)
	}
}
