package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withRecorder 安装记录Span的全局Provider
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartSpan_ParentChild(t *testing.T) {
	recorder := withRecorder(t)

	ctx, root := StartSpan(context.Background(), "RentBook")
	_, child := StartSpan(ctx, "DecrementIfPositive")
	child.End()
	root.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "DecrementIfPositive", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID(), "子Span的父节点应为根Span")
	assert.Equal(t, ExtractTraceID(ctx), spans[1].SpanContext().TraceID().String())
	assert.Equal(t, ExtractSpanID(ctx), spans[1].SpanContext().SpanID().String())
}

func TestEnd_RecordsError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "WriteOff")
	End(span, errors.New("可用库存不足"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1, "错误应记录为事件")
}

func TestExtractIDs_WithoutSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}
