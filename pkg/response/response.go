package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
)

// Response 统一响应结构
// Code是业务错误码(0表示成功),HTTP状态码由AppError决定
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 资源创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
// 内部错误只写日志,客户端只能看到Code和Message
//
//	if err := uc.Execute(ctx, req); err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		log := logger.WithContext(c.Request.Context())
		fields := []zap.Field{
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		}
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("请求失败", fields...)
		} else {
			log.Debug("请求被拒绝", fields...)
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}
