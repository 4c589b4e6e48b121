// Package log provides category-tagged structured logging for the editor
// core. Library code logs through the package functions; the CLI decides
// where output goes and at what level with Init.
package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Category groups related log messages.
type Category string

const (
	CatProject Category = "project" // export, import and project files
	CatUndo    Category = "undo"    // undo/redo history
	CatExt     Category = "ext"     // extension registry and extensions
	CatWorld   Category = "world"   // base scene load/save
	CatConfig  Category = "config"  // configuration loading
	CatCLI     Category = "cli"     // command line front end
)

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = slog.New(discardHandler{})
)

// Init routes log output to w using the text handler at the given level.
// Passing a nil writer disables logging.
func Init(w io.Writer, lvl slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(lvl)
	if w == nil {
		logger = slog.New(discardHandler{})
		return
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitJSON is Init with the JSON handler.
func InitJSON(w io.Writer, lvl slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(lvl)
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetMinLevel changes the level without replacing the output.
func SetMinLevel(lvl slog.Level) {
	level.Set(lvl)
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(slog.LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(slog.LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(slog.LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(slog.LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(slog.LevelError, cat, msg, fields...)
}

func write(lvl slog.Level, cat Category, msg string, fields ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	ctx := context.Background()
	if !l.Enabled(ctx, lvl) {
		return
	}
	args := make([]any, 0, len(fields)+2)
	args = append(args, "cat", string(cat))
	args = append(args, fields...)
	l.Log(ctx, lvl, msg, args...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
