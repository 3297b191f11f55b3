package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// DBLogHandler is a slog.Handler that stores the records of one research
// run and, when Next is set, forwards them to a second handler.
type DBLogHandler struct {
	Store RunStore
	RunID uuid.UUID
	Next  slog.Handler

	attrs  []slog.Attr
	prefix string
}

func NewDBLogHandler(store RunStore, runID uuid.UUID, next slog.Handler) *DBLogHandler {
	return &DBLogHandler{
		Store: store,
		RunID: runID,
		Next:  next,
	}
}

// Enabled follows Next so the stored records match the configured level.
func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.Next != nil {
		return h.Next.Enabled(ctx, level)
	}
	return true
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		meta[a.Key] = attrValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		meta[h.prefix+a.Key] = attrValue(a.Value)
		return true
	})

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	// The run may outlive the request that started it.
	err = h.Store.AppendLog(context.WithoutCancel(ctx), h.RunID, LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  metaJSON,
	})

	if h.Next != nil {
		if nextErr := h.Next.Handle(ctx, r.Clone()); err == nil {
			err = nextErr
		}
	}
	return err
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	if h.Next != nil {
		c.Next = h.Next.WithAttrs(attrs)
	}
	return &c
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	if h.Next != nil {
		c.Next = h.Next.WithGroup(name)
	}
	return &c
}

// attrValue converts errors to their message so they survive JSON encoding.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	case slog.KindGroup:
		group := make(map[string]any)
		for _, a := range v.Group() {
			group[a.Key] = attrValue(a.Value)
		}
		return group
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.Any()
	}
}
