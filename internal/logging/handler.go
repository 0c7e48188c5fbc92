// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the slog handler used by the dashboard. It adds
// request context to every record and forwards WARN and above to the event log.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/adminpanel/internal/store"
)

// Event categories stored alongside each forwarded record.
const (
	CategoryAuth    = "auth"
	CategorySession = "session"
	CategoryAPI     = "api"
	CategoryUI      = "ui"
	CategorySystem  = "system"
)

// EventWriter persists forwarded log records.
type EventWriter interface {
	CreateEvent(ctx context.Context, arg store.CreateEventParams) (int64, error)
}

type requestPathKey struct{}

// WithRequestPath stores the request path in ctx for log enrichment.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathKey{}, path)
}

// RequestPath returns the path stored by WithRequestPath, or "".
func RequestPath(ctx context.Context) string {
	path, _ := ctx.Value(requestPathKey{}).(string)
	return path
}

// ContextHandler is a slog.Handler that wraps another handler, adds the
// request ID and path found in the context, and writes records at or above
// its threshold to the event log.
type ContextHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level
}

// NewContextHandler wraps inner. events may be nil to disable forwarding.
func NewContextHandler(inner slog.Handler, events EventWriter) *ContextHandler {
	return &ContextHandler{
		inner:  inner,
		events: events,
		level:  slog.LevelWarn,
	}
}

// NewContextHandlerWithLevel is NewContextHandler with a custom forwarding threshold.
func NewContextHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *ContextHandler {
	h := NewContextHandler(inner, events)
	h.level = level
	return h
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	path := RequestPath(ctx)
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if path != "" {
		r.AddAttrs(slog.String("path", path))
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if h.events != nil && r.Level >= h.level {
		h.writeEvent(path, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), events: h.events, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), events: h.events, level: h.level}
}

func (h *ContextHandler) writeEvent(path string, r slog.Record) {
	created := r.Time
	if created.IsZero() {
		created = time.Now()
	}
	// Background context: the event must survive a cancelled request.
	_, _ = h.events.CreateEvent(context.Background(), store.CreateEventParams{
		Level:       levelName(r.Level),
		Category:    category(r),
		Message:     r.Message,
		RequestPath: path,
		Metadata:    metadata(r),
		CreatedAt:   created,
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}

// category uses an explicit "category" attribute, otherwise infers one from the message.
func category(r slog.Record) string {
	var cat string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			cat = a.Value.String()
			return false
		}
		return true
	})
	if cat != "" {
		return cat
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "auth"):
		return CategoryAuth
	case strings.Contains(msg, "session") || strings.Contains(msg, "storage"):
		return CategorySession
	case strings.Contains(msg, "request") || strings.Contains(msg, "response") || strings.Contains(msg, "api"):
		return CategoryAPI
	default:
		return CategorySystem
	}
}

func metadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}
	m := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "category" {
			m[a.Key] = a.Value.String()
		}
		return true
	})
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
