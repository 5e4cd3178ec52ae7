// Copyright 2026 The Cadenza Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type (
	// DebugHandler renders records as colored single-line text for
	// development.
	DebugHandler struct {
		out   io.Writer
		attrs []slog.Attr
		mut   sync.Mutex
	}

	// MultiHandler fans one record out to several handlers.
	MultiHandler struct {
		handlers []slog.Handler
	}
)

var _ slog.Handler = (*DebugHandler)(nil)

// Handle implements slog.Handler.
func (h *DebugHandler) Handle(_ context.Context, r slog.Record) error {
	h.mut.Lock()
	defer h.mut.Unlock()

	timeStr := color.New(color.FgHiBlack).Sprint(r.Time.Format("15:04:05"))
	level := levelColor(r.Level)
	attrs := append([]slog.Attr{}, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	entry := fmt.Sprintf("%s %s %s%s\n",
		timeStr,
		level,
		r.Message,
		formatAttributes(attrs),
	)

	_, err := h.out.Write([]byte(entry))
	return err
}

// WithAttrs implements slog.Handler.
func (h *DebugHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DebugHandler{
		out:   h.out,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *DebugHandler) WithGroup(name string) slog.Handler {
	return h
}

// Enabled implements slog.Handler.
func (h *DebugHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelDebug
}

// Enabled implements slog.Handler.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		// Best-effort: a failing handler must not starve the others.
		if err := h.Handle(ctx, record); err != nil {
			slog.Error("error from slog handler", "error", err)
		}
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: newHandlers}
}

// WithGroup implements slog.Handler.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: newHandlers}
}

func levelColor(level slog.Level) string {
	var bg, fg color.Attribute
	switch level {
	case slog.LevelDebug:
		bg, fg = color.BgMagenta, color.FgWhite
	case slog.LevelInfo:
		bg, fg = color.BgBlue, color.FgWhite
	case slog.LevelWarn:
		bg, fg = color.BgYellow, color.FgBlack
	case slog.LevelError:
		bg, fg = color.BgRed, color.FgWhite
	default:
		bg, fg = color.BgWhite, color.FgBlack
	}

	return color.New(bg, fg, color.Bold).Sprint(" " + strings.ToUpper(level.String()) + " ")
}

func formatAttributes(attrs []slog.Attr) string {
	if len(attrs) == 0 {
		return ""
	}

	var parts []string
	for _, attr := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, formatAttrValue(attr.Value)))
	}

	return " " + strings.Join(parts, " ")
}

func formatAttrValue(v slog.Value) string {
	if valuer, ok := v.Any().(slog.LogValuer); ok {
		return formatAttrValue(valuer.LogValue())
	}

	switch v.Kind() {
	case slog.KindString:
		return fmt.Sprintf("%q", v.String())
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return fmt.Sprintf("%f", v.Float64())
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return fmt.Sprintf("%v", v)
	}
}
