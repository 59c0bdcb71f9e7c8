package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger: debug-level text records to stderr
// and a size-rotated file at path.
func New(path string) *slog.Logger {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, rotated), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(handler)
}
