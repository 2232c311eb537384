package main

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/jwt"
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// providePolicy 借期与罚款标准
func providePolicy(cfg *config.Config) booking.Policy {
	return booking.Policy{
		LoanDays:   cfg.Rental.LoanDays,
		FinePerDay: cfg.Rental.FinePerDay,
	}
}

func provideAdmins(cfg *config.Config) config.AdminConfig {
	return cfg.Admin
}

// provideClock 生产环境使用系统时钟,测试里替换为clock.Fixed
func provideClock() clock.Clock {
	return clock.System{}
}

func provideHandlers(
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	rentalHandler *handler.RentalHandler,
) router.Handlers {
	return router.Handlers{
		User:   userHandler,
		Book:   bookHandler,
		Rental: rentalHandler,
	}
}
