// log/log.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package log provides the structured logger used throughout clyde. A nil
// *Logger is valid: debug and info messages are dropped and warnings and
// errors go to the default slog logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time

	// Keys passed to WarnOnce; shared with loggers made by With.
	warned *sync.Map
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level\n", level)
		return slog.LevelInfo
	}
}

// New returns a Logger that writes JSON records to a rotating log file in
// dir, or in the user's config directory if dir is empty.
func New(level string, dir string) *Logger {
	if dir == "" {
		cdir, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v", err)
			cdir = "."
		}
		dir = filepath.Join(cdir, "Clyde")
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "clyde.slog"),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if level == "debug" {
		// Debug logging records every state change; give it room.
		lj.MaxSize = 512
	}

	l := NewWriter(level, lj)
	l.LogFile, l.LogDir = lj.Filename, dir
	l.logSystem()
	return l
}

// NewWriter returns a Logger that writes JSON records to w; it's used by
// command-line tools and tests that don't want a log file.
func NewWriter(level string, w io.Writer) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})),
		Start:  time.Now(),
		warned: &sync.Map{},
	}
}

func (l *Logger) logSystem() {
	l.Info("Hello logging", slog.Time("start", l.Start))
	l.Info("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	if bi, ok := debug.ReadBuildInfo(); ok {
		deps := make([]any, 0, len(bi.Deps))
		for _, dep := range bi.Deps {
			deps = append(deps, slog.String(dep.Path, dep.Version))
		}
		l.Info("Build",
			slog.String("Go version", bi.GoVersion),
			slog.String("Path", bi.Path),
			slog.Group("Dependencies", deps...))
	}
}

// log adds the caller's stack to the record. Debug and info records are
// dropped for a nil Logger.
func (l *Logger) log(level slog.Level, msg string, args []any) {
	if l == nil {
		if level >= slog.LevelWarn {
			slog.Log(context.Background(), level, msg, append([]any{slog.Any("callstack", Callstack(1))}, args...)...)
		}
		return
	}
	if !l.Logger.Enabled(context.Background(), level) {
		return
	}
	l.Logger.Log(context.Background(), level, msg, append([]any{slog.Any("callstack", Callstack(1))}, args...)...)
}

// The logging methods shadow slog's to include a callstack and to allow a
// nil Logger; other slog methods (WarnContext, Log, ...) are unchanged.

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

// Debugf and the other ...f methods log a printf-style formatted message.
func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.log(slog.LevelDebug, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.log(slog.LevelInfo, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *Logger) Warnf(msg string, args ...any)  { l.log(slog.LevelWarn, fmt.Sprintf(msg, args...), nil) }
func (l *Logger) Errorf(msg string, args ...any) { l.log(slog.LevelError, fmt.Sprintf(msg, args...), nil) }

// WarnOnce logs a warning the first time it's called with a given key.
// Problems found each frame, like a broken material, use it so the log
// isn't flooded. A nil Logger always logs.
func (l *Logger) WarnOnce(key string, msg string, args ...any) {
	if l != nil {
		if _, seen := l.warned.LoadOrStore(key, nil); seen {
			return
		}
	}
	l.log(slog.LevelWarn, msg, args)
}

func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		LogDir:  l.LogDir,
		Start:   l.Start,
		warned:  l.warned,
	}
}
