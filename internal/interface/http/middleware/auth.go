package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

// Context中的key
const (
	ctxUserID      = "user_id"
	ctxEmail       = "email"
	ctxRole        = "role"
	ctxAccessToken = "access_token"

	roleAdmin = "admin"
)

// AuthMiddleware JWT认证中间件
// 校验顺序:Header格式 → 黑名单 → 签名与有效期,通过后把用户信息写入gin.Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(auth.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}

		revoked, err := m.sessionStore.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}
		if revoked {
			response.Error(c, apperrors.New(apperrors.ErrCodeInvalidToken, "Token已失效，请重新登录"))
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxAccessToken, token)
		c.Next()
	}
}

// RequireAdmin 要求管理员角色,必须在RequireAuth之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.Error(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID 当前登录用户ID,未登录为0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// IsAdmin 当前用户是否管理员
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == roleAdmin
}

// GetAccessToken 当前请求携带的Access Token(登出时加入黑名单)
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}
