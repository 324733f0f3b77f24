package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"budgetpilot/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetRepository 预算记录存储，每个邮箱一条记录，后写覆盖先写
// Latest 在无记录时返回 (nil, nil)
type BudgetRepository interface {
	Save(ctx context.Context, record models.BudgetRecord) error
	Latest(ctx context.Context, email string) (*models.BudgetRecord, error)
}

// normalizeEmail 邮箱作为主键前去除首尾空白
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ============== 内存存储 ==============

// MemoryRepository 内存预算存储
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.BudgetRecord
}

// NewMemoryRepository 创建内存预算存储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.BudgetRecord)}
}

// Save 保存（整条覆盖）
func (r *MemoryRepository) Save(_ context.Context, record models.BudgetRecord) error {
	record.Email = normalizeEmail(record.Email)
	r.mu.Lock()
	r.records[record.Email] = record
	r.mu.Unlock()
	return nil
}

// Latest 获取最新记录
func (r *MemoryRepository) Latest(_ context.Context, email string) (*models.BudgetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// ============== MySQL (gorm) ==============

// GormRepository 基于 gorm 的预算存储
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository 创建 gorm 预算存储
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Save 单条 upsert，预算与更新时间原子写入
func (r *GormRepository) Save(ctx context.Context, record models.BudgetRecord) error {
	record.Email = normalizeEmail(record.Email)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"budget", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("保存预算失败: %w", err)
	}
	return nil
}

// Latest 获取最新记录
func (r *GormRepository) Latest(ctx context.Context, email string) (*models.BudgetRecord, error) {
	var record models.BudgetRecord
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return &record, nil
}

// ============== Postgres (pgx) ==============

const pgSchemaSQL = `
CREATE TABLE IF NOT EXISTS budget_records (
    email       TEXT PRIMARY KEY,
    budget      JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
`

const pgUpsertSQL = `
INSERT INTO budget_records (email, budget, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET budget = EXCLUDED.budget, updated_at = EXCLUDED.updated_at
`

// pgxPool PgxRepository 用到的连接池方法，*pgxpool.Pool 满足
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PgxRepository 基于 pgx 连接池的预算存储
type PgxRepository struct {
	pool pgxPool
}

func newPgxRepository(pool pgxPool) *PgxRepository {
	return &PgxRepository{pool: pool}
}

// NewPgxRepository 连接 Postgres 并建表
func NewPgxRepository(ctx context.Context, dsn string) (*PgxRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("创建表失败: %w", err)
	}
	return newPgxRepository(pool), nil
}

// Close 关闭连接池
func (r *PgxRepository) Close() {
	r.pool.Close()
}

// Save 单条 upsert
func (r *PgxRepository) Save(ctx context.Context, record models.BudgetRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	// pgx 将结构体按 JSON 编码写入 JSONB 列
	_, err := r.pool.Exec(ctx, pgUpsertSQL, normalizeEmail(record.Email), record.Budget, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("保存预算失败: %w", err)
	}
	return nil
}

// Latest 获取最新记录
func (r *PgxRepository) Latest(ctx context.Context, email string) (*models.BudgetRecord, error) {
	var record models.BudgetRecord
	err := r.pool.QueryRow(ctx,
		"SELECT email, budget, updated_at FROM budget_records WHERE email = $1",
		normalizeEmail(email),
	).Scan(&record.Email, &record.Budget, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return &record, nil
}
