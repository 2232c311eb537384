package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型
// 2. Status是对外的HTTP状态码（404/409/400...），由response包使用
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Status  int    `json:"-"`       // HTTP状态码
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，包装过的哨兵错误仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的AppError，HTTP状态码由错误码区间推导
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  statusOf(code),
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// WithCause 复制哨兵错误并附加内部原因
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 参数错误
// - 401xx: 认证授权
// - 404xx: 资源不存在
// - 409xx: 业务冲突（库存耗尽、版本冲突、借阅资格不满足）
// - 500xx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 参数错误（40000-40099）
	ErrCodeInvalidParams  = 40000 // 参数错误
	ErrCodeBindError      = 40001 // 参数绑定失败
	ErrCodeEmailDuplicate = 40002 // 邮箱已存在
	ErrCodeWeakPassword   = 40003 // 密码强度不足
	ErrCodeInvalidAmount  = 40010 // 数量必须大于0
	ErrCodeInvalidStock   = 40011 // 初始库存为负
	ErrCodeInvalidTitle   = 40012 // 书名非法
	ErrCodeInvalidYear    = 40013 // 出版年份非法
	ErrCodeInvalidAuthor  = 40014 // 作者ID非法
	ErrCodeGenresRequired = 40015 // 缺少类别
	ErrCodeEmptyPatch     = 40016 // 没有需要修改的字段

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound        = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound    = 40401 // 用户不存在
	ErrCodeBookNotFound    = 40402 // 图书不存在
	ErrCodeBookingNotFound = 40403 // 借阅记录不存在

	// 业务冲突（40900-40999）
	ErrCodeConflict               = 40900 // 冲突(通用)
	ErrCodeBookNotAvailable       = 40901 // 无可借副本
	ErrCodeBookAlreadyBorrowed    = 40902 // 已借阅同一本书
	ErrCodeUserHasOverdueBooks    = 40903 // 存在逾期未还
	ErrCodeUserHasUnpaidFines     = 40904 // 存在未缴罚款
	ErrCodeInsufficientStock      = 40905 // 可用库存不足
	ErrCodeVersionConflict        = 40906 // 元数据版本冲突
	ErrCodeBookNotBorrowed        = 40907 // 未借阅该书
	ErrCodeBookHasBookings        = 40908 // 图书存在借阅记录
	ErrCodeBookingClosed          = 40909 // 借阅记录已关闭
	ErrCodeUserMismatch           = 40910 // 借阅记录不属于该用户
	ErrCodeConcurrentModification = 40911 // 并发修改
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 参数
	ErrInvalidParams  = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError      = New(ErrCodeBindError, "参数格式错误")
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword   = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 存储层报告的锁冲突/死锁，调用方需整体重试
	ErrConcurrentModification = New(ErrCodeConcurrentModification, "数据已被并发修改，请重试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链上是否存在指定错误码
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func statusOf(code int) int {
	switch code / 100 {
	case 400:
		return http.StatusBadRequest
	case 401:
		if code == ErrCodeForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case 404:
		return http.StatusNotFound
	case 409:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
