// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the rigtune application log.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/rigtune/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxFileSize is the max size of a single log file before rotation (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// DefaultRetentionDays is how long dated log files are kept by CleanOld.
const DefaultRetentionDays = 7

// recentCapacity is the size of the in-memory tail kept for the dashboard.
const recentCapacity = 200

const (
	filePrefix     = "rigtune_"
	fileDateFormat = "20060102"
	lineTimeFormat = "2006-01-02 15:04:05"
)

// =============================================================================
// LOG ENTRY
// =============================================================================

// Entry is a single log record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Component string
	Message   string
}

// ToLogLine formats the entry as one pipe-delimited line.
func (e Entry) ToLogLine() string {
	return fmt.Sprintf("%s | %-5s | %s | %s",
		e.Timestamp.Format(lineTimeFormat),
		e.Level,
		e.Component,
		e.Message,
	)
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger is a thread-safe file logger writing dated files under one
// directory. A disabled Logger (NewNop) accepts calls and drops them, so
// collaborators never need a nil check.
type Logger struct {
	mu        sync.Mutex
	dir       string
	file      *os.File
	path      string
	day       string
	level     Level
	maxSize   int64
	echo      io.Writer
	echoLevel Level
	enabled   bool
	recent    []string
}

// New creates a logger writing to dated files under dir, creating the
// directory if needed. The initial level is Info.
func New(dir string) (*Logger, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	l := &Logger{
		dir:       dir,
		level:     LevelInfo,
		maxSize:   DefaultMaxFileSize,
		echoLevel: LevelWarn,
		enabled:   true,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.openLocked(time.Now()); err != nil {
		return nil, err
	}
	return l, nil
}

// NewNop returns a logger that discards everything. Used as the package
// default before setup and by tests that do not care about log output.
func NewNop() *Logger {
	return &Logger{enabled: false, level: LevelError, maxSize: DefaultMaxFileSize}
}

// DefaultDir returns the standard log directory (~/.rigtune/logs).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rigtune", "logs")
}

func (l *Logger) openLocked(now time.Time) error {
	if err := os.MkdirAll(l.dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	day := now.Format(fileDateFormat)
	path := filepath.Join(l.dir, filePrefix+day+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.path = path
	l.day = day
	return nil
}

// =============================================================================
// LOGGING METHODS
// =============================================================================

// Debug logs at debug level.
func (l *Logger) Debug(component, format string, args ...any) {
	l.log(LevelDebug, component, format, args...)
}

// Info logs at info level.
func (l *Logger) Info(component, format string, args ...any) {
	l.log(LevelInfo, component, format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(component, format string, args ...any) {
	l.log(LevelWarn, component, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(component, format string, args ...any) {
	l.log(LevelError, component, format, args...)
}

// log is best-effort: a failed write never propagates to the caller. The
// application log is not worth failing a cleanup run over.
func (l *Logger) log(level Level, component, format string, args ...any) {
	l.mu.Lock()

	if !l.enabled || level < l.level {
		l.mu.Unlock()
		return
	}

	now := time.Now()
	entry := Entry{
		Timestamp: now,
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
	line := entry.ToLogLine()

	// Roll to a fresh dated file at midnight.
	if day := now.Format(fileDateFormat); l.file == nil || day != l.day {
		l.closeFileLocked()
		if err := l.openLocked(now); err != nil {
			l.file = nil
		}
	}

	if l.file != nil {
		l.checkRotationLocked(now)
		fmt.Fprintln(l.file, line)
	}

	l.recent = append(l.recent, line)
	if len(l.recent) > recentCapacity {
		// FIFO trim, keep the newest entries
		trimmed := make([]string, recentCapacity)
		copy(trimmed, l.recent[len(l.recent)-recentCapacity:])
		l.recent = trimmed
	}

	var echo io.Writer
	if l.echo != nil && level >= l.echoLevel {
		echo = l.echo
	}
	l.mu.Unlock()

	// Echo outside the lock; stderr can block on slow terminals.
	if echo != nil {
		fmt.Fprintln(echo, line)
	}
}

// checkRotationLocked rotates the current file aside once it exceeds the
// size cap, so one chatty day cannot grow a file without bound.
func (l *Logger) checkRotationLocked(now time.Time) {
	if l.maxSize <= 0 || l.file == nil {
		return
	}

	info, err := l.file.Stat()
	if err != nil || info.Size() < l.maxSize {
		return
	}

	l.closeFileLocked()

	ext := filepath.Ext(l.path)
	base := strings.TrimSuffix(l.path, ext)
	rotated := fmt.Sprintf("%s_%s%s", base, now.Format("150405"), ext)
	if err := os.Rename(l.path, rotated); err == nil {
		if err := l.openLocked(now); err != nil {
			l.file = nil
		}
	} else {
		// Rename failed; keep appending to the oversized file.
		l.file, _ = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	}
}

func (l *Logger) closeFileLocked() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetLevel sets the minimum severity that gets written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetMaxSize sets the per-file size cap before rotation.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = size
}

// SetEcho mirrors entries at echoLevel and above to w (typically stderr
// for headless commands). Pass nil to disable.
func (l *Logger) SetEcho(w io.Writer, echoLevel Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
	l.echoLevel = echoLevel
}

// Path returns the path of the current log file.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Dir returns the log directory.
func (l *Logger) Dir() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dir
}

// =============================================================================
// TAIL, RETENTION, EXPORT
// =============================================================================

// Recent returns up to n of the newest log lines, oldest first.
func (l *Logger) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || len(l.recent) == 0 {
		return nil
	}
	if n > len(l.recent) {
		n = len(l.recent)
	}
	out := make([]string, n)
	copy(out, l.recent[len(l.recent)-n:])
	return out
}

// CleanOld removes dated log files older than the given number of days and
// returns how many were deleted. The file currently being written is never
// removed.
func (l *Logger) CleanOld(days int) (int, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}

	l.mu.Lock()
	dir := l.dir
	current := filepath.Base(l.path)
	l.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == current || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		// Dated files are rigtune_YYYYMMDD.log, rotations add _HHMMSS.
		stamp := strings.TrimPrefix(name, filePrefix)
		if len(stamp) < len(fileDateFormat) {
			continue
		}
		day, err := time.Parse(fileDateFormat, stamp[:len(fileDateFormat)])
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, name)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Export copies the current log file to dst.
func (l *Logger) Export(dst string) error {
	l.mu.Lock()
	if l.file != nil {
		l.file.Sync()
	}
	path := l.path
	l.mu.Unlock()

	if path == "" {
		return fmt.Errorf("no log file open")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	return util.AtomicWriteFile(dst, data, 0600)
}

// Close flushes and closes the current file. The logger keeps accepting
// calls afterwards and silently drops them.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enabled = false
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// =============================================================================
// PACKAGE DEFAULT
// =============================================================================

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewNop()
)

// SetDefault installs the process-wide logger used by the package-level
// helpers. Passing nil restores the no-op logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if l == nil {
		l = NewNop()
	}
	defaultLogger = l
}

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// ResetDefaultForTesting restores the no-op default logger.
func ResetDefaultForTesting() {
	SetDefault(nil)
}

// Debug logs at debug level through the default logger.
func Debug(component, format string, args ...any) {
	Default().Debug(component, format, args...)
}

// Info logs at info level through the default logger.
func Info(component, format string, args ...any) {
	Default().Info(component, format, args...)
}

// Warn logs at warn level through the default logger.
func Warn(component, format string, args ...any) {
	Default().Warn(component, format, args...)
}

// Error logs at error level through the default logger.
func Error(component, format string, args ...any) {
	Default().Error(component, format, args...)
}
