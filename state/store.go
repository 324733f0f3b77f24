// Package state 客户端预算状态：单一聚合、变更通知、本地持久化
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/google/uuid"
)

// Listener 状态变更回调，参数为状态副本
type Listener func(models.BudgetState)

type subscriber struct {
	id int
	fn Listener
}

// Store 预算状态存储
// 每次变更后通知订阅者并异步写入本地持久化（后写覆盖先写）
type Store struct {
	mu          sync.Mutex
	state       models.BudgetState
	subscribers []subscriber
	nextSubID   int
	writer      *writer
	now         func() time.Time
	newID       func() string
}

// Option Store 选项
type Option func(*Store)

// WithClock 自定义时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator 自定义快照 ID 生成器
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New 以初始状态创建 Store
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		state:  models.NewBudgetState(),
		writer: newWriter(p),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open 从本地持久化加载状态，没有已保存文档时返回初始状态
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	doc, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	s := New(p, opts...)
	if doc != nil {
		if err := migrate(doc); err != nil {
			_ = s.Close()
			return nil, err
		}
		s.state = doc.State
	}
	return s, nil
}

// Close 等待未完成的写入并停止后台写入
func (s *Store) Close() error {
	s.writer.close()
	return nil
}

// Flush 等待已排队的写入完成
func (s *Store) Flush() {
	s.writer.flush()
}

// Subscribe 订阅状态变更，返回取消订阅函数
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// mutate 在锁内执行变更；fn 返回 false 表示无变化（不通知、不持久化）
func (s *Store) mutate(fn func(st *models.BudgetState) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snapshot := s.state.Clone()
	listeners := make([]Listener, len(s.subscribers))
	for i, sub := range s.subscribers {
		listeners[i] = sub.fn
	}
	// 锁内入队，保证写入顺序与变更顺序一致
	s.writer.enqueue(Document{Version: DocumentVersion, State: snapshot})
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}
}

func (s *Store) timestamp() *time.Time {
	t := s.now()
	return &t
}

// State 当前状态副本
func (s *Store) State() models.BudgetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Budget 当前预算字段
func (s *Store) Budget() models.BudgetFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Budget
}

// Status 当前同步状态
func (s *Store) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SyncStatus
}

// Identity 当前用户身份
func (s *Store) Identity() models.UserIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

// Summary 当前预算的衍生指标（读时计算）
func (s *Store) Summary() metrics.Summary {
	return metrics.Calculate(s.Budget())
}

// UpdateField 修改单个预算字段
// 已同步状态下任何本地修改都会降级为待同步；不校验取值范围
func (s *Store) UpdateField(field models.Field, value float64) error {
	var err error
	s.mutate(func(st *models.BudgetState) bool {
		if err = st.Budget.Set(field, value); err != nil {
			return false
		}
		if st.SyncStatus == models.SyncStatusSynced {
			st.SyncStatus = models.SyncStatusPending
		}
		st.LastUpdatedAt = s.timestamp()
		return true
	})
	return err
}

// Reset 清空预算字段（视为本地修改，保留历史快照和身份）
func (s *Store) Reset() {
	s.mutate(func(st *models.BudgetState) bool {
		st.Budget = models.BudgetFields{}
		if st.SyncStatus == models.SyncStatusSynced {
			st.SyncStatus = models.SyncStatusPending
		}
		st.LastUpdatedAt = s.timestamp()
		return true
	})
}

// SetSyncStatus 直接设置同步状态，不在状态表中的转换返回 ErrInvalidTransition
func (s *Store) SetSyncStatus(status models.SyncStatus) error {
	var err error
	s.mutate(func(st *models.BudgetState) bool {
		if !status.Valid() || !models.CanTransition(st.SyncStatus, status) {
			err = fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, st.SyncStatus, status)
			return false
		}
		st.SyncStatus = status
		return true
	})
	return err
}

// MarkSynced 标记为已同步
func (s *Store) MarkSynced(at time.Time) {
	s.mutate(func(st *models.BudgetState) bool {
		st.SyncStatus = models.SyncStatusSynced
		st.LastSyncedAt = &at
		return true
	})
}

// HydrateFromServer 用服务端预算整体覆盖本地预算（不做字段级合并）
// syncedAt 为空时使用当前时间
func (s *Store) HydrateFromServer(budget models.BudgetFields, syncedAt *time.Time) {
	s.mutate(func(st *models.BudgetState) bool {
		st.Budget = budget
		st.SyncStatus = models.SyncStatusSynced
		if syncedAt != nil {
			t := *syncedAt
			st.LastSyncedAt = &t
		} else {
			st.LastSyncedAt = s.timestamp()
		}
		return true
	})
}

// AddSnapshot 保存当前预算快照，最新的在前，最多保留 MaxSnapshots 条
func (s *Store) AddSnapshot() models.BudgetSnapshot {
	var snap models.BudgetSnapshot
	s.mutate(func(st *models.BudgetState) bool {
		snap = models.BudgetSnapshot{
			ID:        s.newID(),
			Timestamp: s.now(),
			Budget:    st.Budget,
		}
		history := make([]models.BudgetSnapshot, 0, models.MaxSnapshots)
		history = append(history, snap)
		history = append(history, st.History...)
		if len(history) > models.MaxSnapshots {
			history = history[:models.MaxSnapshots]
		}
		st.History = history
		return true
	})
	return snap
}

// RestoreSnapshot 恢复指定快照；不存在时不做任何修改并返回 false
// 恢复视为未同步的本地修改，状态置为仅本地
func (s *Store) RestoreSnapshot(id string) bool {
	found := false
	s.mutate(func(st *models.BudgetState) bool {
		for _, snap := range st.History {
			if snap.ID == id {
				st.Budget = snap.Budget
				st.SyncStatus = models.SyncStatusLocalOnly
				st.LastUpdatedAt = s.timestamp()
				found = true
				return true
			}
		}
		return false
	})
	return found
}

// SetIdentity 设置用户邮箱和令牌（令牌可为空）
func (s *Store) SetIdentity(email, token string) {
	s.mutate(func(st *models.BudgetState) bool {
		st.User = models.UserIdentity{Email: email, Token: token}
		return true
	})
}

// Logout 清除令牌，保留邮箱
func (s *Store) Logout() {
	s.mutate(func(st *models.BudgetState) bool {
		if st.User.Token == "" {
			return false
		}
		st.User.Token = ""
		return true
	})
}
