package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"budgetpilot/config"
	"budgetpilot/database"
	"budgetpilot/middleware"
	"budgetpilot/router"
)

// @title BudgetPilot API
// @version 1.0
// @description 个人预算同步服务：演示账号登录、按邮箱保存/获取预算快照、指标计算与导出
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("BudgetPilot 预算同步服务 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	config.PrintConfig()

	// 初始化存储
	repo, err := database.Init(context.Background(), cfg)
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}

	// 初始化 JWT
	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg, repo)

	log.Printf("==========================================")
	log.Printf("  💰 %s 已启动", cfg.Server.ServiceName)
	log.Printf("==========================================")
	log.Printf("  健康检查: http://localhost%s/health", cfg.Server.Port)
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
