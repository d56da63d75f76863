package logging

import (
	"context"
	"log/slog"
)

// MultiHandler forwards each record to every target that accepts its
// level; here it pairs the stdout JSON handler with the Postgres one.
// Delivery is best-effort per target: one failing sink does not stop the
// others, the first error is reported.
type MultiHandler struct {
	targets []slog.Handler
}

func NewMultiHandler(targets ...slog.Handler) *MultiHandler {
	return &MultiHandler{targets: targets}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range m.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, rec slog.Record) error {
	var firstErr error
	for _, t := range m.targets {
		if !t.Enabled(ctx, rec.Level) {
			continue
		}
		if err := t.Handle(ctx, rec.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.targets))
	for i, t := range m.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return &MultiHandler{targets: next}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.targets))
	for i, t := range m.targets {
		next[i] = t.WithGroup(name)
	}
	return &MultiHandler{targets: next}
}
