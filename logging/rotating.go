package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingLogger writes to one file per ISO week: app-YYYY-Www.log
type RotatingLogger struct {
	dir         string
	retention   time.Duration
	currentFile *os.File
	currentWeek string
	now         func() time.Time
	mu          sync.Mutex
}

// OpenRotatingLogger creates the directory if needed and opens the file for the current week
func OpenRotatingLogger(dir string, retentionWeeks int) (*RotatingLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	rl := &RotatingLogger{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		now:       time.Now,
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if err := rl.rotate(getWeekKey(rl.now())); err != nil {
		return nil, err
	}

	return rl, nil
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// rotate switches to the file for week (caller must hold the lock)
func (rl *RotatingLogger) rotate(week string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		rl.currentFile = nil
	}

	path := filepath.Join(rl.dir, fmt.Sprintf("app-%s.log", week))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.currentFile = file
	rl.currentWeek = week
	return nil
}

// Write writes data to the current week's file, rotating first if the week changed
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if week := getWeekKey(rl.now()); week != rl.currentWeek || rl.currentFile == nil {
		if err := rl.rotate(week); err != nil {
			return 0, err
		}
	}

	return rl.currentFile.Write(p)
}

// CleanupOldLogs removes app-*.log files last modified before the retention window
func (rl *RotatingLogger) CleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rl.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	rl.mu.Lock()
	active := ""
	if rl.currentFile != nil {
		active = filepath.Base(rl.currentFile.Name())
	}
	cutoff := rl.now().Add(-rl.retention)
	rl.mu.Unlock()

	deleted := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == active || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.dir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// Close closes the current file
func (rl *RotatingLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
