package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) (entries []map[string]any) {
	t.Helper()
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return
}

func useBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	var previous = Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(previous) })
	return &buf
}

func TestCorrelationID(t *testing.T) {
	var ctx = context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = ContextWithNewCorrelationID(ctx)
	var id = CorrelationIDFromContext(ctx)
	assert.Len(t, id, 8)

	var other = CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background()))
	assert.NotEqual(t, id, other)

	assert.Equal(t, "fixed", CorrelationIDFromContext(ContextWithCorrelationID(ctx, "fixed")))
}

func TestCtx_AddsCorrelationID(t *testing.T) {
	var buf = useBuffer(t)

	Ctx(ContextWithCorrelationID(context.Background(), "abc12345")).Info().Msg("with id")
	Ctx(context.Background()).Info().Msg("without id")

	var entries = decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc12345", entries[0]["correlation_id"])
	assert.NotContains(t, entries[1], "correlation_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("unknown"))
}

func TestInit_Console(t *testing.T) {
	var previous = Logger()
	t.Cleanup(func() {
		SetLogger(previous)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "console", Output: &buf})
	Info().Msg("hidden")
	Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	var logger = slog.New(NewSlogHandler(NewTestLogger(&buf))).
		WithGroup("event").
		With("service", "scheduler")

	logger.Warn("service restarted", "attempt", 3, "backoff", 15*time.Second, "err", errors.New("boom"))

	var entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	var e = entries[0]
	assert.Equal(t, "warn", e["level"])
	assert.Equal(t, "service restarted", e["message"])
	assert.Equal(t, "scheduler", e["event.service"])
	assert.Equal(t, float64(3), e["event.attempt"])
	assert.Contains(t, e, "event.backoff")
	assert.Equal(t, "boom", e["event.err"])
}

func TestCronLogger(t *testing.T) {
	var buf = useBuffer(t)

	CronLogger{}.Error(errors.New("panic in job"), "job failed", "entry", 1)

	var entries = decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "cron", entries[0]["component"])
	assert.Equal(t, "panic in job", entries[0]["error"])
	assert.Equal(t, float64(1), entries[0]["entry"])
}
