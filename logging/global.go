package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Options controls where and how verbosely the service logs
type Options struct {
	Level          string
	Dir            string // Empty disables the JSON file sink
	RetentionWeeks int
}

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance
func InitLogger(opts Options) *LoggingService {
	DefaultLoggingService = NewLoggingService(opts)
	slog.SetDefault(DefaultLoggingService.Logger)
	return DefaultLoggingService
}

// NewLoggingService builds a console logger and, when a directory is given,
// a JSON file logger rotated weekly. A file sink that cannot be opened is
// reported on the console and skipped.
func NewLoggingService(opts Options) *LoggingService {
	level := parseLogLevel(opts.Level)
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	if opts.Dir == "" {
		return &LoggingService{Logger: slog.New(console)}
	}

	rl, err := OpenRotatingLogger(opts.Dir, opts.RetentionWeeks)
	if err != nil {
		logger := slog.New(console)
		logger.Error("Failed to open log file, logging to console only", "dir", opts.Dir, "error", err)
		return &LoggingService{Logger: logger}
	}

	file := slog.NewJSONHandler(rl, &slog.HandlerOptions{Level: level})

	return &LoggingService{
		Logger: slog.New(&multiHandler{handlers: []slog.Handler{console, file}}),
		file:   rl,
	}
}

// CleanupOldLogs removes expired log files. It is a no-op without a file sink.
func (s *LoggingService) CleanupOldLogs() (int, error) {
	if s == nil || s.file == nil {
		return 0, nil
	}
	return s.file.CleanupOldLogs()
}

// Close flushes and closes the file sink, if any
func (s *LoggingService) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// current returns the initialized logger or a stderr fallback
func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
