package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/cancellable-actions-go/actions/oteladapters"
)

func Test_TracingCollector_StartAndFinishSpan_RecordsAttributes(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "actions.invoke", map[string]string{
		"action":    "search",
		"action_id": "0198f6b4-0000-7000-8000-000000000001",
	})
	collector.FinishSpan(spanCtx, "success", map[string]string{"duration_ms": "1.25"})

	// assert
	assert.NotNil(t, ctx)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "actions.invoke", spans[0].Name)
	assertSpanHasAttribute(t, spans[0], "action", "search")
	assertSpanHasAttribute(t, spans[0], "duration_ms", "1.25")
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func Test_TracingCollector_FinishSpan_MapsStatus(t *testing.T) {
	tests := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "ok", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "cancelled", expectedCode: codes.Unset},
		{status: "something_else", expectedCode: codes.Unset},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			exporter, collector := givenTracingCollector()
			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)

			// act
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_CancelledSpan_IsFlagged(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()
	_, spanCtx := collector.StartSpan(context.Background(), "actions.invoke", nil)

	// act
	collector.FinishSpan(spanCtx, "cancelled", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes, attribute.Bool(oteladapters.CancelledAttribute, true))
}

func Test_TracingCollector_UnknownStatus_IsKeptAsAttribute(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()
	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)

	// act
	collector.FinishSpan(spanCtx, "superseded", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertSpanHasAttribute(t, spans[0], "status", "superseded")
}

func Test_TracingCollector_NestedSpans_ShareTheTrace(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act
	outerCtx, outer := collector.StartSpan(context.Background(), "outer", nil)
	_, inner := collector.StartSpan(outerCtx, "inner", nil)
	collector.FinishSpan(inner, "success", nil)
	collector.FinishSpan(outer, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_OTelSpanContext_AddAttributeAndSetStatus(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()
	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)

	// act
	spanCtx.AddAttribute("target", "setProp2")
	spanCtx.SetStatus("error")
	collector.FinishSpan(spanCtx, "error", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertSpanHasAttribute(t, spans[0], "target", "setProp2")
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContext(t *testing.T) {
	// arrange
	exporter, collector := givenTracingCollector()

	// act + assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func givenTracingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("span %s has no attribute %s", span.Name, key)
}
