package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"physicstutor/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New собирает slog.Logger по настройкам. Output может содержать несколько
// целей через запятую: stdout, stderr или путь к файлу (с ротацией).
// Возвращаемая функция закрывает открытые файлы.
func New(cfg config.LogConfig) (*slog.Logger, func()) {
	var writers []io.Writer
	var closers []io.Closer

	for _, output := range strings.Split(cfg.Output, ",") {
		output = strings.TrimSpace(output)
		switch output {
		case "":
			continue
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			l := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    cfg.Rotation.MaxSize,
				MaxBackups: cfg.Rotation.MaxBackups,
				MaxAge:     cfg.Rotation.MaxAge,
				Compress:   cfg.Rotation.Compress,
			}
			writers = append(writers, l)
			closers = append(closers, l)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	w := io.MultiWriter(writers...)

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return slog.New(handler), cleanup
}

func ParseLevel(level string) slog.Level {
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
