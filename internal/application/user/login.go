package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
)

// LoginUseCase 用户登录
// 校验密码,签发Token对,并在Redis中记录会话
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Nickname, string(u.Role))
	if err != nil {
		return nil, err
	}

	// 会话写入失败不影响登录,Token本身已可用于鉴权
	sess := redis.Session{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		ClientIP: req.ClientIP,
		LoginAt:  time.Now(),
	}
	if err := uc.sessionStore.SaveSession(ctx, sess, uc.jwtManager.RefreshTTL()); err != nil {
		logger.WithContext(ctx).Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		User: UserInfo{
			ID:       u.ID,
			Email:    u.Email,
			Nickname: u.Nickname,
			Role:     string(u.Role),
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 删除会话并把Access Token加入黑名单,黑名单有效期为Token剩余有效期
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	claims, err := uc.jwtManager.ParseToken(accessToken)
	if err != nil {
		return err
	}

	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.RemainingTTL(claims))
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token有效期(秒)
}

// UserInfo 用户信息
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}
