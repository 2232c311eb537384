package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
)

// Key设计:
//   - library:session:{user_id}  登录会话(Hash)
//   - library:blacklist:{token}  已注销的Access Token
const (
	sessionKeyPrefix   = "library:session:"
	blacklistKeyPrefix = "library:blacklist:"
)

// Session 登录会话
type Session struct {
	UserID   uint
	Email    string
	Role     string
	ClientIP string
	LoginAt  time.Time
}

// SessionStore 会话存储
// JWT本身无状态,注销依赖黑名单;会话过期时间与Refresh Token一致
// 所有命令经过熔断器,Redis不可用时鉴权快速失败
type SessionStore struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		breaker: circuitbreaker.New("redis-session", circuitbreaker.Config{
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			ReadyToTrip: circuitbreaker.ConsecutiveFailures(5),
			IsSuccessful: func(err error) bool {
				// 调用方取消不算Redis故障
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				logger.L().Warn("熔断器状态变化",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
	}
}

// do 在熔断器保护下执行Redis命令
func (s *SessionStore) do(fn func() error) error {
	if err := s.breaker.Execute(fn); err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

func sessionKey(userID uint) string {
	return sessionKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// SaveSession 保存会话,HSET与EXPIRE在同一个MULTI中执行
func (s *SessionStore) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	key := sessionKey(sess.UserID)
	return s.do(func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"email", sess.Email,
				"role", sess.Role,
				"client_ip", sess.ClientIP,
				"login_at", sess.LoginAt.UTC().Format(time.RFC3339),
			)
			pipe.Expire(ctx, key, ttl)
			return nil
		})
		return err
	})
}

// GetSession 获取会话,不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, error) {
	var fields map[string]string
	err := s.do(func() (err error) {
		fields, err = s.client.HGetAll(ctx, sessionKey(userID)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	sess := &Session{
		UserID:   userID,
		Email:    fields["email"],
		Role:     fields["role"],
		ClientIP: fields["client_ip"],
	}
	if at, err := time.Parse(time.RFC3339, fields["login_at"]); err == nil {
		sess.LoginAt = at
	}
	return sess, nil
}

// DeleteSession 删除会话(登出)
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	return s.do(func() error {
		return s.client.Del(ctx, sessionKey(userID)).Err()
	})
}

// AddToBlacklist 注销Token,ttl取Token剩余有效期,过期后自动清理
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的Token无需拉黑
	}
	return s.do(func() error {
		if err := s.client.Set(ctx, blacklistKeyPrefix+token, "revoked", ttl).Err(); err != nil {
			return fmt.Errorf("blacklist token: %w", err)
		}
		return nil
	})
}

// IsInBlacklist Token是否已注销
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	var n int64
	err := s.do(func() (err error) {
		n, err = s.client.Exists(ctx, blacklistKeyPrefix+token).Result()
		return err
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
