// Package handler HTTP处理器:解析请求、调用用例、返回统一响应
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// bindJSON 绑定请求体,失败时直接写入40001响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeBindError, "参数错误: "+err.Error()))
		return false
	}
	return true
}

// pathID 解析路径中的数字ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// actingUserID 本次操作的用户
// 读者只能操作自己;管理员可以指定其他用户
func actingUserID(c *gin.Context, requested uint) (uint, bool) {
	self := middleware.GetUserID(c)
	if requested == 0 || requested == self {
		return self, true
	}
	if middleware.IsAdmin(c) {
		return requested, true
	}
	response.Error(c, apperrors.ErrForbidden)
	return 0, false
}
