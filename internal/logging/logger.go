// Package logging owns the process-wide slog logger. Output goes to a
// size-rotated file via lumberjack and, for text format, to stdout as
// well so local runs stay readable.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/printdesk/pd-backend/internal/config"
)

var logger *slog.Logger

func Init(cfg *config.LoggingConfig) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return err
	}

	roller := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(roller, opts)
	} else {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stdout, roller), opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// The package-level helpers are safe before Init; they fall back to
// slog's default handler.

func Debug(msg string, args ...any) {
	active().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	active().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	active().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	active().Error(msg, args...)
}

func With(args ...any) *slog.Logger {
	return active().With(args...)
}

func active() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
