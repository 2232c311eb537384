// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User   *handler.UserHandler
	Book   *handler.BookHandler
	Rental *handler.RentalHandler
}

// New 创建Gin引擎并注册路由
//
//	公开:    POST /api/v1/users/register, /api/v1/users/login
//	登录:    图书详情、借书、还书、缴费、借阅记录、登出
//	管理员:  新增/修改/删除图书、补货、核销
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == gin.ReleaseMode || cfg.Server.Mode == gin.TestMode {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
	}

	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	{
		authorized.POST("/users/logout", h.User.Logout)
		authorized.GET("/users/me/bookings", h.Rental.MyBookings)
		authorized.GET("/users/:id/bookings", h.Rental.UserBookings)

		authorized.GET("/books/:id", h.Book.GetBook)

		authorized.POST("/rentals", h.Rental.Rent)
		authorized.POST("/rentals/return", h.Rental.Return)
		authorized.POST("/bookings/:id/pay", h.Rental.PayFine)
	}

	admin := authorized.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/books", h.Book.CreateBook)
		admin.PATCH("/books/:id", h.Book.UpdateBook)
		admin.DELETE("/books/:id", h.Book.DeleteBook)
		admin.POST("/books/:id/replenish", h.Book.Replenish)
		admin.POST("/books/:id/write-off", h.Book.WriteOff)
	}

	return r
}
