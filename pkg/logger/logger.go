// Package logger 基于zap的结构化日志
//
// 用法：
//
//	log, err := logger.New(logger.Options{Level: "info", Format: "json"})
//	logger.ReplaceGlobals(log)
//	logger.L().Info("服务启动", zap.Int("port", 8080))
//	logger.WithContext(ctx).Warn("借阅被拒绝", zap.Uint("book_id", id))
package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/tracing"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 按配置构建zap日志
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
		}
	}

	encoding := "console"
	if opts.Format == "json" {
		encoding = "json"
	}

	output := opts.Output
	if output == "" {
		output = "stdout"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !opts.EnableCaller,
		DisableStacktrace: level > zapcore.DebugLevel,
	}
	return cfg.Build()
}

// ReplaceGlobals 替换全局日志，返回恢复函数
func ReplaceGlobals(l *zap.Logger) func() {
	return zap.ReplaceGlobals(l)
}

// L 全局日志（未替换前为no-op）
func L() *zap.Logger {
	return zap.L()
}

// WithContext 附加trace_id，便于从日志跳转到链路
func WithContext(ctx context.Context) *zap.Logger {
	l := zap.L()
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		l = l.With(zap.String("trace_id", traceID))
	}
	return l
}

// Result 记录一次业务操作的结果
// 成功记Info;业务拒绝(4xx)记Debug,属于正常结果;基础设施失败记Error
func Result(ctx context.Context, msg string, err error, fields ...zap.Field) {
	l := WithContext(ctx)
	if err == nil {
		l.Info(msg, fields...)
		return
	}

	appErr := apperrors.GetAppError(err)
	fields = append(fields, zap.Int("code", appErr.Code), zap.Error(err))
	if appErr.Status >= 500 {
		l.Error(msg+"失败", fields...)
		return
	}
	l.Debug(msg+"被拒绝", fields...)
}
