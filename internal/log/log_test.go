package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/correlationid"
)

func TestEnrichedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newEnrichedHandler(slog.NewJSONHandler(&buf, nil))).
		With(slog.String("service", "http"))

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := correlationid.NewContext(context.Background(), "req-1")
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "http", line["service"])
	assert.Equal(t, "req-1", line["correlation_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), line["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), line["span_id"])
}

func TestEnrichedHandlerWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newEnrichedHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("plain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.NotContains(t, line, "correlation_id")
	assert.NotContains(t, line, "trace_id")
}

func TestNewHandler(t *testing.T) {
	t.Run("Should write JSON lines", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo}))

		logger.Debug("hidden")
		logger.Info("shown", slog.String("article_id", "a1"))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "shown", line["msg"])
		assert.Equal(t, "a1", line["article_id"])
	})

	t.Run("Should write uncoloured text to non terminals", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelInfo}))

		logger.Warn("publish failed", slog.Any("error", errors.New("broker down")))

		out := buf.String()
		assert.Contains(t, out, "WRN publish failed")
		assert.Contains(t, out, `error="broker down"`)
		assert.NotContains(t, out, "\x1b[")
	})
}
