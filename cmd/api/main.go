package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

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
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/tracing"
)

// @title           图书馆借阅服务 API
// @version         1.0
// @description     库存计数、借阅台账、罚款与图书元数据管理
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description 格式: Bearer {token}
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	os.Exit(serve(zl, func() error { return run(cfg) }))
}

// serve 以zl为全局日志运行服务,返回进程退出码
// 退出前先写出错误并Sync,os.Exit不会执行defer
func serve(zl *zap.Logger, run func() error) int {
	restore := logger.ReplaceGlobals(zl)
	defer restore()
	defer func() { _ = zl.Sync() }()

	if err := run(); err != nil {
		zl.Error("服务异常退出", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config) error {
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.L().Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}

	db, err := mysql.NewDB(cfg)
	if err != nil {
		return err
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// 手动组装,依赖关系与wire.go一致
	// Repository ← Service ← UseCase ← Handler
	clk := provideClock()
	policy := providePolicy(cfg)
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	ledger := mysql.NewBookingRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := provideSessionStore(redisClient)
	jwtManager := provideJWTManager(cfg)

	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo, clk)

	handlers := provideHandlers(
		handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, provideAdmins(cfg)),
			appuser.NewLoginUseCase(userService, jwtManager, sessionStore),
			appuser.NewLogoutUseCase(jwtManager, sessionStore),
		),
		handler.NewBookHandler(
			appbook.NewCreateBookUseCase(bookService),
			appbook.NewGetBookUseCase(bookService),
			appbook.NewUpdateBookUseCase(bookService),
			appbook.NewDeleteBookUseCase(bookRepo, ledger, txManager),
			inventory.NewReplenishUseCase(bookRepo),
			inventory.NewWriteOffUseCase(bookRepo),
		),
		handler.NewRentalHandler(
			rental.NewRentBookUseCase(userRepo, bookRepo, ledger, txManager, clk, policy),
			rental.NewReturnBookUseCase(userRepo, bookRepo, ledger, txManager, clk, policy),
			rental.NewPayFineUseCase(ledger),
			rental.NewListBookingsUseCase(userRepo, ledger, clk, policy),
		),
	)
	engine := router.New(cfg, handlers, middleware.NewAuthMiddleware(jwtManager, sessionStore))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.Int("loan_days", policy.LoanDays),
			zap.Int64("fine_per_day", policy.FinePerDay),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.L().Info("收到退出信号，开始优雅关闭", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.L().Info("服务已停止")
	return nil
}
