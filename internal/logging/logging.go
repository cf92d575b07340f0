// Package logging sets up the application's structured log file.
//
// The TUI owns the terminal, so nothing may be written to stdout or stderr
// while it runs. Logs go to a file, and stray writes to file descriptor 2
// are redirected to the same file for the lifetime of the program.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log is an open log file and the logger writing to it.
type Log struct {
	*slog.Logger
	file    *os.File
	restore func()
}

// ParseLevel maps a level name to a slog level. The empty string means
// info.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", name, err)
	}
	return l, nil
}

// Open appends to the log file at path, creating it and its directory.
func Open(path string, level slog.Level) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Log{
		Logger:  New(f, level),
		file:    f,
		restore: func() {},
	}, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// CaptureStderr redirects file descriptor 2 to the log file until Close.
// A failure leaves stderr untouched.
func (l *Log) CaptureStderr() error {
	restore, err := redirectStderr(l.file)
	if err != nil {
		return fmt.Errorf("capture stderr: %w", err)
	}
	l.restore = restore
	return nil
}

// Close restores stderr and closes the file. Errors printed after Close
// reach the terminal again.
func (l *Log) Close() error {
	l.restore()
	l.restore = func() {}
	return l.file.Close()
}
