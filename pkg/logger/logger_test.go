package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestNew(t *testing.T) {
	l, err := New(Options{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestWithContext_AddsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := ReplaceGlobals(zap.New(core))
	defer restore()

	tp := trace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	WithContext(ctx).Info("借阅成功")
	WithContext(context.Background()).Info("无链路")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestResult_LevelByOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := ReplaceGlobals(zap.New(core))
	defer restore()

	ctx := context.Background()
	Result(ctx, "借阅", nil, zap.Uint("book_id", 1))
	Result(ctx, "借阅", apperrors.New(apperrors.ErrCodeBookNotAvailable, "无副本"))
	Result(ctx, "借阅", apperrors.Wrap(errors.New("connection reset"), "数据库错误"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "借阅", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "借阅被拒绝", entries[1].Message)
	assert.Equal(t, int64(apperrors.ErrCodeBookNotAvailable), entries[1].ContextMap()["code"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
