package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/testutil"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
)

type fixture struct {
	register *userapp.RegisterUseCase
	login    *userapp.LoginUseCase
	logout   *userapp.LogoutUseCase
	sessions *redis.SessionStore
	jwt      *jwt.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	svc := user.NewServiceWithCost(mysql.NewUserRepository(db), bcrypt.MinCost)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := redis.NewSessionStore(client)

	jm := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	admins := config.AdminConfig{Emails: []string{"Librarian@example.com"}}

	return &fixture{
		register: userapp.NewRegisterUseCase(svc, admins),
		login:    userapp.NewLoginUseCase(svc, jm, sessions),
		logout:   userapp.NewLogoutUseCase(jm, sessions),
		sessions: sessions,
		jwt:      jm,
	}
}

func TestRegister_AssignsRoleFromAdminList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reader, err := f.register.Execute(ctx, userapp.RegisterRequest{Email: "reader@example.com", Password: "password123", Nickname: "读者"})
	require.NoError(t, err)
	assert.Equal(t, "reader", reader.Role)

	admin, err := f.register.Execute(ctx, userapp.RegisterRequest{Email: "librarian@example.com", Password: "password123", Nickname: "馆员"})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	_, err = f.register.Execute(ctx, userapp.RegisterRequest{Email: "reader@example.com", Password: "password123", Nickname: "重复"})
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.register.Execute(ctx, userapp.RegisterRequest{Email: "librarian@example.com", Password: "password123", Nickname: "馆员"})
	require.NoError(t, err)

	_, err = f.login.Execute(ctx, userapp.LoginRequest{Email: "librarian@example.com", Password: "wrongpass1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	resp, err := f.login.Execute(ctx, userapp.LoginRequest{Email: "librarian@example.com", Password: "password123", ClientIP: "10.0.0.8"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Role)

	claims, err := f.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	sess, err := f.sessions.GetSession(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.8", sess.ClientIP)

	require.NoError(t, f.logout.Execute(ctx, reg.ID, resp.AccessToken))

	revoked, err := f.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.sessions.GetSession(ctx, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
