package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/logger"
)

// AdminPolicy 判断邮箱是否属于管理员,由config.AdminConfig实现
type AdminPolicy interface {
	IsAdminEmail(email string) bool
}

// RegisterUseCase 用户注册
// 管理员名单中的邮箱注册为admin,其余为reader
type RegisterUseCase struct {
	userService user.Service
	admins      AdminPolicy
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, admins AdminPolicy) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		admins:      admins,
	}
}

// Execute 执行注册
// 返回应用层DTO,不暴露密码哈希
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role := user.RoleReader
	if uc.admins != nil && uc.admins.IsAdminEmail(req.Email) {
		role = user.RoleAdmin
	}

	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname, role)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("用户注册", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return &RegisterResponse{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}
