package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"budgetpilot/models"

	_ "modernc.org/sqlite" // 注册 sqlite 驱动
)

const (
	// Namespace 本地状态存储键
	Namespace = "budgetpilot.state"
	// DocumentVersion 当前本地文档版本
	DocumentVersion = 1
)

// ErrUnsupportedVersion 本地文档版本高于当前程序支持的版本
var ErrUnsupportedVersion = errors.New("unsupported state document version")

// Document 本地持久化文档
type Document struct {
	Version int                `json:"version"`
	State   models.BudgetState `json:"state"`
}

// Persister 本地持久化接口
// Load 在没有已保存文档时返回 (nil, nil)
type Persister interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc Document) error
}

// migrate 升级旧版本文档
func migrate(doc *Document) error {
	switch {
	case doc.Version > DocumentVersion:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	case doc.Version == 0:
		// v0 没有 syncStatus / history 字段
		if !doc.State.SyncStatus.Valid() {
			doc.State.SyncStatus = models.SyncStatusLocalOnly
		}
		if doc.State.History == nil {
			doc.State.History = []models.BudgetSnapshot{}
		}
		doc.Version = DocumentVersion
	}
	if !doc.State.SyncStatus.Valid() {
		doc.State.SyncStatus = models.SyncStatusLocalOnly
	}
	if len(doc.State.History) > models.MaxSnapshots {
		doc.State.History = doc.State.History[:models.MaxSnapshots]
	}
	return nil
}

// MemoryPersister 内存持久化（测试、临时会话）
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryPersister 创建内存持久化
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load 读取文档
func (p *MemoryPersister) Load(_ context.Context) (*Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, nil
	}
	var doc Document
	if err := json.Unmarshal(p.data, &doc); err != nil {
		return nil, fmt.Errorf("parsing state document: %w", err)
	}
	return &doc, nil
}

// Save 保存文档
func (p *MemoryPersister) Save(_ context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding state document: %w", err)
	}
	p.mu.Lock()
	p.data = data
	p.saves++
	p.mu.Unlock()
	return nil
}

// Saves 保存次数
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv_state (
    namespace   TEXT PRIMARY KEY,
    payload     TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

// SQLitePersister 基于 SQLite 的本地持久化，整个状态以 JSON 文档存于一行
type SQLitePersister struct {
	db        *sql.DB
	namespace string
}

// OpenSQLite 打开或创建本地状态库
func OpenSQLite(dbPath string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if _, err := db.Exec(kvSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLitePersister{db: db, namespace: Namespace}, nil
}

// Close 关闭数据库
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// Load 读取文档
func (p *SQLitePersister) Load(ctx context.Context) (*Document, error) {
	var payload string
	err := p.db.QueryRowContext(ctx, "SELECT payload FROM kv_state WHERE namespace = ?", p.namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("parsing state document: %w", err)
	}
	return &doc, nil
}

// Save 保存文档（整行覆盖）
func (p *SQLitePersister) Save(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding state document: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = p.db.ExecContext(ctx, `INSERT OR REPLACE INTO kv_state (namespace, payload, updated_at)
		VALUES (?, ?, ?)`, p.namespace, string(data), now)
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
