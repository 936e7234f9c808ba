package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/cancellable-actions-go/actions/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "action invocation started", "action", "search")
	logger.InfoContext(ctx, "action invocation cancelled", "action", "search")
	logger.WarnContext(ctx, "journaling mutation failed")
	logger.ErrorContext(ctx, "action invocation failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"action":"search"`)
	assert.Contains(t, output, `"error":"boom"`)
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("actions")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "action cancelled", "action_id", "x")
	})
}

func Test_OTelLogger_AllLevels_DoNotPanic(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	// act + assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "root", true)
		logger.InfoContext(ctx, "info", "duration_ms", 1.5)
		logger.WarnContext(ctx, "warn", "dangling_key")
		logger.ErrorContext(ctx, "error", 42, "non-string key is skipped")
	})
}
