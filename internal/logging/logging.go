// Package logging configures the process-wide structured JSON logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"faceindex/internal/config"
)

// New returns a JSON logger writing one object per line to w. Timestamps are
// emitted under "ts" in the configured time zone.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	loc := Location(cfg.TimeZone)

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h)
}

// Setup builds a stdout logger and installs it as the slog default.
func Setup(cfg config.LogConfig) *slog.Logger {
	l := New(os.Stdout, cfg)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Location loads the named time zone, falling back to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
