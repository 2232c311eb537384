package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/library/pkg/logger"
)

func TestServe_LogsFailureAndRestoresGlobals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(core)
	before := logger.L()

	code := serve(zl, func() error {
		assert.Same(t, zl, logger.L(), "运行期间使用配置的日志")
		return errors.New("listen tcp :8080: address already in use")
	})

	assert.Equal(t, 1, code)
	entries := logs.FilterMessage("服务异常退出").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].ContextMap()["error"], "address already in use")
	}
	assert.Same(t, before, logger.L(), "退出前恢复全局日志")
}

func TestServe_CleanShutdown(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	code := serve(zap.New(core), func() error { return nil })

	assert.Equal(t, 0, code)
	assert.Zero(t, logs.FilterMessage("服务异常退出").Len())
}
