package router

import (
	"budgetpilot/api"
	"budgetpilot/config"
	"budgetpilot/database"
	_ "budgetpilot/docs"
	"budgetpilot/middleware"
	"budgetpilot/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, repo database.BudgetRepository) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 令牌表仅在内存中，重启后清空
	registry := middleware.NewTokenRegistry()

	authHandler := api.NewAuthHandler(cfg, registry)
	budgetHandler := api.NewBudgetHandler(repo, registry)
	exportHandler := api.NewExportHandler(repo)
	reportHandler := api.NewReportHandler(repo, registry, service.NewEmailService(&cfg.Email))

	// 健康检查
	r.GET("/health", api.Health(cfg.Server.ServiceName))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimit(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window), authHandler.Login)
	}

	budget := r.Group("/budget")
	{
		budget.POST("/sync", budgetHandler.Sync)
		budget.GET("/latest", budgetHandler.Latest)
		budget.GET("/metrics", budgetHandler.Metrics)
		budget.POST("/report", reportHandler.Send)

		export := budget.Group("/export")
		{
			export.GET("/csv", exportHandler.ExportCSV)
			export.GET("/excel", exportHandler.ExportExcel)
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
