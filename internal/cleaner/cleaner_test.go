// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cleaner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/rigtune/internal/config"
	"github.com/jeranaias/rigtune/internal/logging"
	"github.com/jeranaias/rigtune/internal/tasks"
	"github.com/jeranaias/rigtune/internal/winsys"
)

// =============================================================================
// FAKES AND FIXTURES
// =============================================================================

type fakeReporter struct {
	mu       sync.Mutex
	statuses []string
	progress []int
	cancel   bool
}

func (f *fakeReporter) Progress(pct int) {
	f.mu.Lock()
	f.progress = append(f.progress, pct)
	f.mu.Unlock()
}

func (f *fakeReporter) Status(text string) {
	f.mu.Lock()
	f.statuses = append(f.statuses, text)
	f.mu.Unlock()
}

func (f *fakeReporter) Statusf(format string, args ...any) {
	f.Status(fmt.Sprintf(format, args...))
}

func (f *fakeReporter) Canceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel
}

func (f *fakeReporter) Context() context.Context {
	return context.Background()
}

func (f *fakeReporter) statusContaining(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// fakeRunner records command lines instead of executing them.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.mu.Lock()
	f.calls = append(f.calls, line)
	f.mu.Unlock()
	for prefix, err := range f.fail {
		if strings.HasPrefix(line, prefix) {
			return "", err
		}
	}
	return "", nil
}

func (f *fakeRunner) PowerShell(ctx context.Context, script string) (string, error) {
	return f.Run(ctx, "powershell", script)
}

func (f *fakeRunner) callsWith(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func makeOld(t *testing.T, path string) {
	t.Helper()
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// testConfig returns the default cleanup config with the age filter off so
// freshly written fixtures are eligible.
func testConfig() config.CleanupConfig {
	cfg := config.Default().Cleanup
	cfg.MinAgeHours = 0
	return cfg
}

// newTestEngine builds an engine that believes it is on Windows and
// elevated, so command-backed paths run against the fake runner everywhere.
func newTestEngine(t *testing.T, cfg config.CleanupConfig, p Paths, fr *fakeRunner) *Engine {
	t.Helper()
	e := New(cfg, WithPaths(p), WithRunner(fr), WithLogger(logging.NewNop()))
	e.windows = true
	e.elevated = func() bool { return true }
	return e
}

// =============================================================================
// WALK-BASED CATEGORIES
// =============================================================================

func TestCleanTemp_RemovesFilesAndEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmp"), "0123456789")
	writeFile(t, filepath.Join(dir, "nested", "b.txt"), "01234")

	e := newTestEngine(t, testConfig(), Paths{Temp: []string{dir}}, &fakeRunner{})
	rep := &fakeReporter{}

	res := e.Clean(rep, CategoryTemp)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.FilesRemoved != 2 {
		t.Errorf("expected 2 files removed, got %d", res.FilesRemoved)
	}
	if res.BytesFreed != 15 {
		t.Errorf("expected 15 bytes freed, got %d", res.BytesFreed)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
	if exists(filepath.Join(dir, "a.tmp")) {
		t.Error("a.tmp still exists")
	}
	if exists(filepath.Join(dir, "nested")) {
		t.Error("emptied subdirectory was not removed")
	}
	if exists(dir) == false {
		t.Error("the root itself must never be removed")
	}

	rep.mu.Lock()
	last := rep.progress[len(rep.progress)-1]
	rep.mu.Unlock()
	if last != 100 {
		t.Errorf("expected final progress 100, got %d", last)
	}
}

func TestCleanTemp_HonorsMinAge(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.tmp")
	freshFile := filepath.Join(dir, "fresh.tmp")
	writeFile(t, oldFile, "old")
	writeFile(t, freshFile, "fresh")
	makeOld(t, oldFile)

	cfg := testConfig()
	cfg.MinAgeHours = 24
	e := newTestEngine(t, cfg, Paths{Temp: []string{dir}}, &fakeRunner{})

	res := e.Clean(&fakeReporter{}, CategoryTemp)

	if res.FilesRemoved != 1 {
		t.Errorf("expected only the old file removed, got %d", res.FilesRemoved)
	}
	if exists(oldFile) {
		t.Error("old file should be gone")
	}
	if !exists(freshFile) {
		t.Error("fresh file must survive the age filter")
	}
}

func TestClean_DryRunCountsWithoutDeleting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmp"), "0123456789")
	writeFile(t, filepath.Join(dir, "b.tmp"), "01234")

	cfg := testConfig()
	cfg.DryRun = true
	fr := &fakeRunner{}
	e := newTestEngine(t, cfg, Paths{Temp: []string{dir}}, fr)

	res := e.Clean(&fakeReporter{}, CategoryTemp)

	if !res.DryRun {
		t.Error("expected DryRun flag on result")
	}
	if res.FilesRemoved != 2 || res.BytesFreed != 15 {
		t.Errorf("expected counts 2/15, got %d/%d", res.FilesRemoved, res.BytesFreed)
	}
	if !exists(filepath.Join(dir, "a.tmp")) || !exists(filepath.Join(dir, "b.tmp")) {
		t.Error("dry run must not delete anything")
	}
	if fr.callCount() != 0 {
		t.Errorf("dry run must not execute commands, got %v", fr.calls)
	}
}

func TestCleanLogs_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.log"), "abc")
	writeFile(t, filepath.Join(dir, "crash.dmp"), "abcd")
	writeFile(t, filepath.Join(dir, "keep.txt"), "abcde")

	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{Logs: []string{dir}}, fr)

	res := e.Clean(&fakeReporter{}, CategoryLogs)

	if res.FilesRemoved != 2 {
		t.Errorf("expected 2 log files removed, got %d", res.FilesRemoved)
	}
	if res.BytesFreed != 7 {
		t.Errorf("expected 7 bytes freed, got %d", res.BytesFreed)
	}
	if !exists(filepath.Join(dir, "keep.txt")) {
		t.Error("non-log file must survive")
	}
	// Event log clearing is off by default.
	if got := fr.callsWith("wevtutil"); len(got) != 0 {
		t.Errorf("expected no event log commands, got %v", got)
	}
}

func TestCleanLogs_ClearsEventLogs(t *testing.T) {
	cfg := testConfig()
	cfg.EventLogs = true
	fr := &fakeRunner{}
	e := newTestEngine(t, cfg, Paths{Logs: []string{t.TempDir()}}, fr)

	e.Clean(&fakeReporter{}, CategoryLogs)

	want := []string{"wevtutil cl Application", "wevtutil cl System", "wevtutil cl Setup"}
	got := fr.callsWith("wevtutil")
	if len(got) != len(want) {
		t.Fatalf("expected %d wevtutil calls, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	for _, c := range got {
		if strings.Contains(c, "Security") {
			t.Error("the Security log must never be cleared")
		}
	}
}

func TestCleanSystemCache_CommandToggles(t *testing.T) {
	cfg := testConfig()
	cfg.DNSCache = true
	cfg.IconCache = true
	fr := &fakeRunner{}
	e := newTestEngine(t, cfg, Paths{SystemCache: []string{t.TempDir()}}, fr)

	e.Clean(&fakeReporter{}, CategorySystemCache)

	if len(fr.callsWith("ipconfig /flushdns")) != 1 {
		t.Errorf("expected dns flush, calls: %v", fr.calls)
	}
	if len(fr.callsWith("ie4uinit -ClearIconCache")) != 1 {
		t.Errorf("expected icon cache rebuild, calls: %v", fr.calls)
	}

	cfg.DNSCache = false
	cfg.IconCache = false
	fr2 := &fakeRunner{}
	e2 := newTestEngine(t, cfg, Paths{SystemCache: []string{t.TempDir()}}, fr2)

	e2.Clean(&fakeReporter{}, CategorySystemCache)

	if fr2.callCount() != 0 {
		t.Errorf("expected no commands with toggles off, got %v", fr2.calls)
	}
}

func TestCleanBrowser_FirefoxProfileDataSurvives(t *testing.T) {
	container := t.TempDir()
	profile := filepath.Join(container, "abc123.default-release")
	cached := filepath.Join(profile, "cache2", "entries", "x.bin")
	bookmarks := filepath.Join(profile, "places.sqlite")
	writeFile(t, cached, "0123456")
	writeFile(t, bookmarks, "user data")

	e := newTestEngine(t, testConfig(), Paths{FirefoxProfiles: []string{container}}, &fakeRunner{})

	res := e.Clean(&fakeReporter{}, CategoryBrowser)

	if res.FilesRemoved != 1 {
		t.Errorf("expected 1 cache file removed, got %d", res.FilesRemoved)
	}
	if res.BytesFreed != 7 {
		t.Errorf("expected 7 bytes freed, got %d", res.BytesFreed)
	}
	if exists(cached) {
		t.Error("cache2 contents should be gone")
	}
	if !exists(bookmarks) {
		t.Error("profile data outside the cache subdirs must never be touched")
	}
}

func TestCleanBrowser_StatusNamesBrowser(t *testing.T) {
	chromeCache := filepath.Join(t.TempDir(), "Google", "Chrome", "User Data", "Default", "Cache")
	writeFile(t, filepath.Join(chromeCache, "f_000001"), "x")

	e := newTestEngine(t, testConfig(), Paths{Browser: []string{chromeCache}}, &fakeRunner{})
	rep := &fakeReporter{}

	e.Clean(rep, CategoryBrowser)

	if !rep.statusContaining("Google Chrome") {
		t.Errorf("expected a Chrome status line, got %v", rep.statuses)
	}
}

// =============================================================================
// COMMAND-BACKED CATEGORIES
// =============================================================================

func TestEmptyRecycleBin(t *testing.T) {
	bin := t.TempDir()
	writeFile(t, filepath.Join(bin, "S-1-5-21", "deleted.bin"), "01234567")

	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{RecycleBin: bin}, fr)

	res := e.Clean(&fakeReporter{}, CategoryRecycleBin)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.BytesFreed != 8 || res.FilesRemoved != 1 {
		t.Errorf("expected measured 1 file / 8 bytes, got %d / %d", res.FilesRemoved, res.BytesFreed)
	}
	if got := fr.callsWith("powershell Clear-RecycleBin"); len(got) != 1 {
		t.Errorf("expected one Clear-RecycleBin call, got %v", fr.calls)
	}
}

func TestEmptyRecycleBin_UnsupportedPlatform(t *testing.T) {
	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{RecycleBin: t.TempDir()}, fr)
	e.windows = false

	res := e.Clean(&fakeReporter{}, CategoryRecycleBin)

	if res.Success {
		t.Error("expected failure off Windows")
	}
	if res.Code != winsys.CodeUnsupportedPlatform {
		t.Errorf("expected unsupported_platform code, got %q", res.Code)
	}
	if fr.callCount() != 0 {
		t.Errorf("expected no commands, got %v", fr.calls)
	}
}

func TestCleanUpdateCache_AdminRequired(t *testing.T) {
	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{UpdateCache: []string{t.TempDir()}}, fr)
	e.elevated = func() bool { return false }

	res := e.Clean(&fakeReporter{}, CategoryUpdateCache)

	if res.Success {
		t.Error("expected failure without elevation")
	}
	if res.Code != winsys.CodeAdminRequired {
		t.Errorf("expected admin_required code, got %q", res.Code)
	}
	if fr.callCount() != 0 {
		t.Errorf("must not touch services without elevation, got %v", fr.calls)
	}
}

func TestCleanUpdateCache_MovesCacheAside(t *testing.T) {
	root := t.TempDir()
	sd := filepath.Join(root, "SoftwareDistribution")
	writeFile(t, filepath.Join(sd, "Download", "pkg.cab"), "0123456789ab")

	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{UpdateCache: []string{sd}}, fr)

	res := e.Clean(&fakeReporter{}, CategoryUpdateCache)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.FilesRemoved != 1 || res.BytesFreed != 12 {
		t.Errorf("expected 1 file / 12 bytes, got %d / %d", res.FilesRemoved, res.BytesFreed)
	}
	if exists(sd) {
		t.Error("cache folder should have been renamed away")
	}
	if !exists(sd + ".bak") {
		t.Error("backup folder missing")
	}

	stops := fr.callsWith("net stop")
	starts := fr.callsWith("net start")
	if len(stops) != 4 || len(starts) != 4 {
		t.Fatalf("expected 4 stops and 4 starts, got %v", fr.calls)
	}
	if stops[0] != "net stop wuauserv" {
		t.Errorf("expected wuauserv stopped first, got %q", stops[0])
	}
	fr.mu.Lock()
	first, last := fr.calls[0], fr.calls[len(fr.calls)-1]
	fr.mu.Unlock()
	if !strings.HasPrefix(first, "net stop") || !strings.HasPrefix(last, "net start") {
		t.Errorf("service cycle out of order: first=%q last=%q", first, last)
	}
}

// =============================================================================
// FULL CLEANUP AND PREVIEW
// =============================================================================

func TestFullCleanup_Aggregates(t *testing.T) {
	tempDir := t.TempDir()
	logDir := t.TempDir()
	chromeCache := filepath.Join(t.TempDir(), "chrome-cache")
	bin := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "a.tmp"), "0123456789") // 10
	writeFile(t, filepath.Join(logDir, "app.log"), "abc")       // 3
	writeFile(t, filepath.Join(chromeCache, "f_1"), "01234")    // 5
	writeFile(t, filepath.Join(bin, "gone.txt"), "01")          // 2

	fr := &fakeRunner{}
	e := newTestEngine(t, testConfig(), Paths{
		Temp:       []string{tempDir},
		Logs:       []string{logDir},
		Browser:    []string{chromeCache},
		RecycleBin: bin,
	}, fr)
	rep := &fakeReporter{}

	sum := e.FullCleanup(rep)

	// Defaults run temp, cache, browser, logs, recycle; update stays off.
	if len(sum.Results) != 5 {
		t.Fatalf("expected 5 category results, got %d", len(sum.Results))
	}
	if sum.Canceled {
		t.Error("unexpected cancellation")
	}
	if sum.TotalFiles != 4 {
		t.Errorf("expected 4 files total, got %d", sum.TotalFiles)
	}
	if sum.TotalBytes != 20 {
		t.Errorf("expected 20 bytes total, got %d", sum.TotalBytes)
	}
	for _, res := range sum.Results {
		if res.Category == CategoryUpdateCache {
			t.Error("update cache must not run with its toggle off")
		}
	}

	rep.mu.Lock()
	progress := append([]int(nil), rep.progress...)
	rep.mu.Unlock()
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress went backwards: %v", progress)
		}
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("expected final progress 100, got %v", progress)
	}
	if !rep.statusContaining("temporary files (1/5)") {
		t.Errorf("expected phase status lines, got %v", rep.statuses)
	}
}

func TestFullCleanup_CanceledBeforeWork(t *testing.T) {
	e := newTestEngine(t, testConfig(), Paths{}, &fakeRunner{})
	rep := &fakeReporter{cancel: true}

	sum := e.FullCleanup(rep)

	if !sum.Canceled {
		t.Error("expected canceled summary")
	}
	if len(sum.Results) != 0 {
		t.Errorf("expected no categories run, got %d", len(sum.Results))
	}
}

func TestPreview_CountsWithoutDeleting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmp"), "0123456789")
	writeFile(t, filepath.Join(dir, "b.tmp"), "01234")

	e := newTestEngine(t, testConfig(), Paths{Temp: []string{dir}}, &fakeRunner{})

	report, err := e.Preview(context.Background(), CategoryTemp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalFiles != 2 || report.TotalBytes != 15 {
		t.Errorf("expected 2/15, got %d/%d", report.TotalFiles, report.TotalBytes)
	}
	if !exists(filepath.Join(dir, "a.tmp")) {
		t.Error("preview must not delete")
	}

	// The same engine then cleans exactly what the preview promised.
	res := e.Clean(&fakeReporter{}, CategoryTemp)
	if res.FilesRemoved != report.TotalFiles || res.BytesFreed != report.TotalBytes {
		t.Errorf("clean %d/%d did not match preview %d/%d",
			res.FilesRemoved, res.BytesFreed, report.TotalFiles, report.TotalBytes)
	}
}

func TestPreview_DefaultsToAllCategories(t *testing.T) {
	e := newTestEngine(t, testConfig(), Paths{}, &fakeRunner{})

	report, err := e.Preview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Categories) != len(Categories()) {
		t.Errorf("expected %d categories, got %d", len(Categories()), len(report.Categories))
	}
}

func TestPreview_ContextCanceled(t *testing.T) {
	e := newTestEngine(t, testConfig(), Paths{}, &fakeRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Preview(ctx); err == nil {
		t.Error("expected context error")
	}
}

// =============================================================================
// CATEGORY PARSING
// =============================================================================

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"temp", CategoryTemp, false},
		{"TMP", CategoryTemp, false},
		{"cache", CategorySystemCache, false},
		{"browser", CategoryBrowser, false},
		{"logs", CategoryLogs, false},
		{" recycle ", CategoryRecycleBin, false},
		{"update", CategoryUpdateCache, false},
		{"windowsupdate", CategoryUpdateCache, false},
		{"bogus", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// =============================================================================
// TASK INTEGRATION
// =============================================================================

func TestCleanWork_RunsOnTaskManager(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmp"), "0123456789")

	e := newTestEngine(t, testConfig(), Paths{Temp: []string{dir}}, &fakeRunner{})
	m := tasks.New(tasks.WithLogger(logging.NewNop()))
	defer m.Shutdown(true, 2*time.Second)

	id, err := m.Submit(e.CleanWork(CategoryTemp), tasks.WithName("clean temp"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap, err := m.Wait(id, 3*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if snap.State != tasks.StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%s)", snap.State, snap.Error)
	}
	res, ok := snap.Result.(Result)
	if !ok {
		t.Fatalf("expected a cleaner.Result payload, got %T", snap.Result)
	}
	if res.FilesRemoved != 1 {
		t.Errorf("expected 1 file removed, got %d", res.FilesRemoved)
	}
}

func TestCleanWork_AdminRefusalRidesInResult(t *testing.T) {
	e := newTestEngine(t, testConfig(), Paths{UpdateCache: []string{t.TempDir()}}, &fakeRunner{})
	e.elevated = func() bool { return false }

	m := tasks.New(tasks.WithLogger(logging.NewNop()))
	defer m.Shutdown(true, 2*time.Second)

	id, err := m.Submit(e.CleanWork(CategoryUpdateCache), tasks.WithName("clean update"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap, err := m.Wait(id, 3*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	// The task executed fine; the refusal is domain data in the result.
	if snap.State != tasks.StateSucceeded {
		t.Fatalf("expected Succeeded, got %s", snap.State)
	}
	res, ok := snap.Result.(Result)
	if !ok {
		t.Fatalf("expected a cleaner.Result payload, got %T", snap.Result)
	}
	if res.Success {
		t.Error("result should report the refusal")
	}
	if res.Code != winsys.CodeAdminRequired {
		t.Errorf("expected admin_required code, got %q", res.Code)
	}
}
