package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LevelSuccess sits between info and warn so quiet mode hides it along
// with info
const LevelSuccess = slog.LevelInfo + 2

type levelStyle struct {
	prefix string
	color  *color.Color
}

// consoleHandler writes records as "[LEVEL] message key=value" lines
type consoleHandler struct {
	level  slog.Leveler
	w      io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	styles map[slog.Level]levelStyle
	keys   *color.Color
}

func newConsoleHandler(w io.Writer, level slog.Leveler, useColor bool) *consoleHandler {
	styles := map[slog.Level]levelStyle{
		slog.LevelDebug: {"[DEBUG]", color.New(color.FgCyan)},
		slog.LevelInfo:  {"[INFO]", color.New(color.FgBlue)},
		LevelSuccess:    {"[SUCCESS]", color.New(color.FgGreen)},
		slog.LevelWarn:  {"[WARNING]", color.New(color.FgYellow)},
		slog.LevelError: {"[ERROR]", color.New(color.FgRed)},
	}
	keys := color.New(color.Faint)
	for _, s := range styles {
		setColor(s.color, useColor)
	}
	setColor(keys, useColor)

	return &consoleHandler{
		level:  level,
		w:      w,
		mu:     &sync.Mutex{},
		styles: styles,
		keys:   keys,
	}
}

func setColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	style := h.style(r.Level)

	var buf []byte
	buf = append(buf, style.color.Sprint(style.prefix+" "+r.Message)...)
	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	_, err := h.w.Write(buf)
	h.mu.Unlock()
	return err
}

func (h *consoleHandler) style(level slog.Level) levelStyle {
	switch {
	case level < slog.LevelInfo:
		return h.styles[slog.LevelDebug]
	case level < LevelSuccess:
		return h.styles[slog.LevelInfo]
	case level < slog.LevelWarn:
		return h.styles[LevelSuccess]
	case level < slog.LevelError:
		return h.styles[slog.LevelWarn]
	default:
		return h.styles[slog.LevelError]
	}
}

func (h *consoleHandler) appendAttr(buf []byte, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	key := a.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return fmt.Appendf(buf, " %s=%s", h.keys.Sprint(key), formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}
