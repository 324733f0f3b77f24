package database

import (
	"context"
	"fmt"
	"log"

	"budgetpilot/config"
	"budgetpilot/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 按配置初始化预算仓库
// 未配置数据库连接时使用内存存储（进程重启后数据丢失）
func Init(ctx context.Context, cfg *config.Config) (BudgetRepository, error) {
	var (
		repo BudgetRepository
		err  error
	)

	switch cfg.Database.ResolveDriver() {
	case config.DriverMySQL:
		repo, err = openMySQL(cfg)
	case config.DriverPostgres:
		repo, err = NewPgxRepository(ctx, cfg.Database.DSN)
	default:
		log.Println("警告: 未配置数据库，使用内存存储，重启后数据将丢失")
		repo = NewMemoryRepository()
	}
	if err != nil {
		return nil, err
	}

	log.Printf("预算存储初始化成功: %s", cfg.Database.Describe())
	return repo, nil
}

func openMySQL(cfg *config.Config) (BudgetRepository, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.MySQLDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	if err := db.AutoMigrate(&models.BudgetRecord{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return NewGormRepository(db), nil
}
