//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go,与main.go中的手动组装保持一致

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/application/inventory"
	"github.com/xiebiao/library/internal/application/rental"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 配置、数据库、Redis、时钟
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideClock,
	providePolicy,
	provideAdmins,
)

// repositorySet 仓储与事务
// TxManager同时满足rental和book两个用例包声明的Transactor
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewBookingRepository,
	mysql.NewTxManager,
	wire.Bind(new(rental.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appbook.Transactor), new(*mysql.TxManager)),
)

var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

var applicationSet = wire.NewSet(
	wire.Bind(new(appuser.AdminPolicy), new(config.AdminConfig)),
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	inventory.NewReplenishUseCase,
	inventory.NewWriteOffUseCase,
	rental.NewRentBookUseCase,
	rental.NewReturnBookUseCase,
	rental.NewPayFineUseCase,
	rental.NewListBookingsUseCase,
)

var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewRentalHandler,
	provideHandlers,
)

// InitializeApp 构建完整的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		router.New,
	)
	return nil, nil
}
