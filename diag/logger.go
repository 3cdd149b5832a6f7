package diag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Level is the verbosity level a registered log callback is filtered
// against. It maps onto slog.Level so Logger can be driven by the standard
// library's leveling without reinventing it.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Callback is the user-registered log sink: `(level, message, path) -> ()`.
type Callback func(level Level, message, path string)

// Logger is the process-wide logger a Context installs itself into. When no
// Callback is registered it formats to stderr as
// "yangcore[<level>]: <message> (path: <path>)".
//
// Internally Logger is a thin slog.Handler wrapping a callbackHandler; the
// single-sink shape is simplified from a fan-out Publisher since a context
// only ever has one registered callback, not multiple subscribers.
type Logger struct {
	mu sync.Mutex
	cb Callback
	includePath bool
	level Level
	logger *slog.Logger
}

// NewLogger creates a Logger at the given verbosity with no callback
// registered; diagnostics are written to stderr until SetCallback is called.
func NewLogger(level Level) *Logger {
	l := &Logger{level: level}
	l.logger = slog.New(&callbackHandler{owner: l})
	return l
}

// SetCallback installs cb as the sink for all subsequent log records. If
// includePath is true, the "path" attribute (if present on the record) is
// passed through to cb; otherwise an empty path is passed.
func (l *Logger) SetCallback(cb Callback, includePath bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cb = cb
	l.includePath = includePath
}

// Callback returns the currently registered callback, or nil.
func (l *Logger) Callback() Callback {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cb
}

// SetLevel adjusts the verbosity threshold.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Log emits a diagnostic-shaped record at the given level with an optional
// path, the primary entry point used by the schema/data packages.
func (l *Logger) Log(level Level, path, format string, args...interface{}) {
	if level > l.currentLevel() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		l.logger.Log(context.Background(), level.slogLevel(), msg, slog.String("path", path))
	} else {
		l.logger.Log(context.Background(), level.slogLevel(), msg)
	}
}

func (l *Logger) currentLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) dispatch(level Level, msg, path string) {
	l.mu.Lock()
	cb := l.cb
	includePath := l.includePath
	l.mu.Unlock()

	if cb != nil {
		if !includePath {
			path = ""
		}
		cb(level, msg, path)
		return
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "yangcore[%s]: %s (path: %s)\n", levelName(level), msg, path)
	} else {
		fmt.Fprintf(os.Stderr, "yangcore[%s]: %s\n", levelName(level), msg)
	}
}

func levelName(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "verbose"
	default:
		return "info"
	}
}

// callbackHandler is a minimal slog.Handler that forwards every record to
// its owning Logger's dispatch method instead of writing bytes anywhere;
// this lets Logger reuse slog's Attr/Level plumbing while still satisfying
// the callback-or-stderr contract above.
type callbackHandler struct {
	owner *Logger
	attrs []slog.Attr
}

func (h *callbackHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.owner.currentLevel().slogLevel()
}

func (h *callbackHandler) Handle(_ context.Context, r slog.Record) error {
	var path string
	r.Attrs(func(a slog.Attr) bool {
			if a.Key == "path" {
				path = a.Value.String()
			}
			return true
	})
	level := slogToLevel(r.Level)
	h.owner.dispatch(level, r.Message, path)
	return nil
}

func (h *callbackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &callbackHandler{owner: h.owner, attrs: append(h.attrs, attrs...)}
	return n
}

func (h *callbackHandler) WithGroup(_ string) slog.Handler {
	return h
}

func slogToLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}
