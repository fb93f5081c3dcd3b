// Package observe provides the storage Observers used by the CLI: a slog
// observer that prints every filesystem operation and a Prometheus observer
// that counts and times them. It also builds the process logger.
package observe

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures NewLogger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, receives the log instead of stderr and is rotated.
	File string
	// Output overrides stderr when File is empty. Used by tests.
	Output io.Writer
}

// Log file rotation limits.
const (
	rotateMaxSizeMB  = 64
	rotateMaxBackups = 5
	rotateMaxAgeDays = 28
)

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", name)
	}
}

// NewLogger builds a tint logger. Colors are used only when writing to a
// terminal.
func NewLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	ll := &slog.LevelVar{}
	ll.Set(level)

	var w io.Writer
	noColor := true
	switch {
	case cfg.File != "":
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    rotateMaxSizeMB,
			MaxBackups: rotateMaxBackups,
			MaxAge:     rotateMaxAgeDays,
		}
	case cfg.Output != nil:
		w = cfg.Output
	default:
		w = colorable.NewColorable(os.Stderr)
		noColor = !isatty.IsTerminal(os.Stderr.Fd())
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop zero durations and empty strings.
			switch v := a.Value.Any().(type) {
			case string:
				if v == "" {
					return slog.Attr{}
				}
			case time.Duration:
				if v == 0 {
					return slog.Attr{}
				}
			}
			return a
		},
	})), nil
}
