// Package logging shapes the structured logger used throughout an HBAC
// decision activation, following spec.md §7's level taxonomy.
package logging

import (
	"fmt"
	"os"
	"strings"

	"log/slog"
)

// Levels beyond slog's built-in four map spec.md §7's NOTICE and ALERT onto
// the severity scale: NOTICE sits between slog's INFO and WARN, ALERT above
// ERROR.
const (
	LevelNotice = slog.Level(2)
	LevelAlert  = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelNotice: "NOTICE",
	LevelAlert:  "ALERT",
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if name, ok := levelNames[level]; ok {
		a.Value = slog.StringValue(name)
	}
	return a
}

// New shapes slog the way the teacher's internal/logging package does: a
// level/format pair selects a handler, and the returned logger is tagged
// with a component field. debug=true forces DEBUG-level verbosity
// regardless of the requested level (spec.md §7 "DEBUG (verbose tracing
// when debug mode is on)").
func New(level, format string, debug bool) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLevel}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json", "":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", format)
	}

	return slog.New(handler).With(slog.String("component", "hbacd")), nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "notice", "":
		return LevelNotice, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "alert":
		return LevelAlert, nil
	default:
		return 0, fmt.Errorf("logging: unsupported level %q", level)
	}
}

// WithActivation returns a logger annotated with the per-activation
// correlation id, the explicit replacement for the source's thread-local
// debug flag and module-level log function (spec.md §9).
func WithActivation(base *slog.Logger, correlationID string) *slog.Logger {
	return base.With(slog.String("correlation_id", correlationID))
}
