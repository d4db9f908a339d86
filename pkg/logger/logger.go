// Package logger provides the slog handlers used across the recommender.
//
// The default handler writes human-readable lines and colours them when the
// output is a terminal: errors red, warnings yellow, and graph or vector
// store operations green.
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// databaseKeywords mark messages that describe storage operations.
var databaseKeywords = []string{"graph", "neo4j", "memgraph", "vector", "collection", "badger", "persist"}

// ColorHandler is a slog.Handler writing one text line per record.
type ColorHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	groups []string
}

// NewColorHandler creates a handler writing to w. Colour is enabled when
// useColor is true.
func NewColorHandler(w io.Writer, level slog.Leveler, useColor bool) *ColorHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ColorHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		color: useColor,
	}
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format(time.DateTime))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s %s", r.Level.String(), r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&buf, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, prefix, a)
		return true
	})

	line := buf.String()
	if color := h.colorFor(r); color != "" {
		line = color + line + colorReset
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *ColorHandler) colorFor(r slog.Record) string {
	if !h.color {
		return ""
	}
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case isDatabaseMessage(r.Message):
		return colorGreen
	}
	return ""
}

func isDatabaseMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range databaseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(buf, key, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	fmt.Fprintf(buf, " %s=%s", key, val)
}

// NewDefaultLogger returns a colour text logger on stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, level, isTerminal(os.Stderr)))
}

// NewLogger builds a logger for the configured format ("json" or "text").
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f)
	}
	return slog.New(NewColorHandler(w, level, useColor))
}

// ParseLevel maps a level name onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
