package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeMarket LogType = "MKT"
	TypeDB     LogType = "DB"
	TypeHTTP   LogType = "HTTP"
	TypeSystem LogType = "SYS"
	TypeError  LogType = "ERR"
)

// CustomHandler writes one colored line per record, prefixed with the service name.
type CustomHandler struct {
	name  string
	out   io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func NewHandler(name string) *CustomHandler {
	return NewHandlerWithOptions(name, os.Stdout, slog.LevelDebug)
}

func NewHandlerWithOptions(name string, out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		name:  name,
		out:   out,
		mu:    &sync.Mutex{},
		level: level,
	}
}

// Setup installs the default logger for the given format ("json" or colored text).
func Setup(name, format string, level slog.Level, addSource bool) {
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: addSource}).
			WithAttrs([]slog.Attr{slog.String("service", name)})
	} else {
		handler = NewHandlerWithOptions(name, os.Stdout, level)
	}
	slog.SetDefault(slog.New(handler))
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "."
	}
	clone.group += name
	return &clone
}

func (h *CustomHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	recordAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)
		return true
	})
	all := append(append([]slog.Attr{}, h.attrs...), h.qualify(recordAttrs)...)

	logType := getLogType(all)
	message := r.Message
	if r.Level >= slog.LevelError {
		if location := getErrorLocation(all); location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if details := getAttr(all, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}
	if status := getAttr(all, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	var attrsStr strings.Builder
	for _, attr := range all {
		if isInternalAttr(attr.Key) {
			continue
		}
		fmt.Fprintf(&attrsStr, " %s%s=%s%v", colorCyan, attr.Key, colorWhite, attr.Value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		h.name,
		timestamp.Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		logType,
		message,
		attrsStr.String(),
		colorReset,
	)
	return err
}

func getLogType(attrs []slog.Attr) LogType {
	switch getAttr(attrs, "type") {
	case "db":
		return TypeDB
	case "mkt":
		return TypeMarket
	case "http":
		return TypeHTTP
	case "error":
		return TypeError
	}
	return TypeSystem
}

func getAttr(attrs []slog.Attr, key string) string {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Key == key {
			return attrs[i].Value.String()
		}
	}
	return ""
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "status", "error", "error_location":
		return true
	}
	return false
}

func getErrorLocation(attrs []slog.Attr) string {
	if location := getAttr(attrs, "error_location"); location != "" {
		return location
	}
	// skip runtime.Callers, this function, Handle, slog internals and the helper
	_, file, line, ok := runtime.Caller(5)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
