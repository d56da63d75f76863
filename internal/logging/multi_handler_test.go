package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	level    slog.Level
	messages []string
	err      error
}

func (h *captureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error {
	h.messages = append(h.messages, rec.Message)
	return h.err
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func record(level slog.Level, msg string) slog.Record {
	return slog.NewRecord(time.Now(), level, msg, 0)
}

func TestMultiHandlerRoutesByLevel(t *testing.T) {
	stdout := &captureHandler{level: slog.LevelDebug}
	dbSink := &captureHandler{level: slog.LevelWarn}
	m := NewMultiHandler(stdout, dbSink)

	ctx := context.Background()
	require.NoError(t, m.Handle(ctx, record(slog.LevelInfo, "served request")))
	require.NoError(t, m.Handle(ctx, record(slog.LevelError, "query failed")))

	assert.Equal(t, []string{"served request", "query failed"}, stdout.messages)
	assert.Equal(t, []string{"query failed"}, dbSink.messages)

	assert.True(t, m.Enabled(ctx, slog.LevelDebug))

	quiet := NewMultiHandler(dbSink)
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
}

func TestMultiHandlerFailingTargetDoesNotStopOthers(t *testing.T) {
	broken := &captureHandler{level: slog.LevelInfo, err: errors.New("connection reset")}
	healthy := &captureHandler{level: slog.LevelInfo}
	m := NewMultiHandler(broken, healthy)

	err := m.Handle(context.Background(), record(slog.LevelInfo, "still delivered"))
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, []string{"still delivered"}, healthy.messages)
}
