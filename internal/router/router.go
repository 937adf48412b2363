package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/handler"
	"vsocial/resolver-service/internal/middleware"
)

// Dependencies 路由依赖
type Dependencies struct {
	Config   *config.Config
	Resolver handler.Resolver
	Limiter  middleware.Limiter
	Logger   *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(deps *Dependencies) *gin.Engine {
	// 设置 Gin 模式
	if deps.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(&deps.Config.CORS))
	r.Use(middleware.BodyLimit(deps.Config.Server.MaxBodyBytes))
	if !deps.Config.RateLimit.Disabled && deps.Limiter != nil {
		r.Use(middleware.RateLimit(deps.Limiter))
	}

	h := handler.NewHTTPHandler(deps.Resolver, deps.Logger)

	r.GET("/health", h.Health)
	r.POST("/metadata", h.Metadata)
	r.POST("/download", h.Download)
	r.GET("/status", h.Status)
	r.NoRoute(h.NotFound)

	return r
}
