package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/library/pkg/logger"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// Logger 请求日志
// 沿用上游传入的X-Request-ID,没有时生成一个;不记录请求体和Token
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case c.Writer.Status() >= 500:
			log.Error("请求处理失败", fields...)
		case latency > slowRequestThreshold:
			log.Warn("慢请求", fields...)
		default:
			log.Info("请求完成", fields...)
		}
	}
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
