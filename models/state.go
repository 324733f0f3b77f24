package models

import (
	"errors"
	"time"
)

// ErrInvalidTransition 同步状态转换不在状态表中
var ErrInvalidTransition = errors.New("invalid sync status transition")

// SyncStatus 同步状态
type SyncStatus string

const (
	// SyncStatusLocalOnly 仅本地：未同步或同步失败
	SyncStatusLocalOnly SyncStatus = "local-only"
	// SyncStatusPending 待同步：已同步后又有本地修改，或同步进行中
	SyncStatusPending SyncStatus = "sync-pending"
	// SyncStatusSynced 已同步
	SyncStatusSynced SyncStatus = "synced"
)

// syncTransitions 允许的直接状态转换
var syncTransitions = map[SyncStatus]map[SyncStatus]bool{
	SyncStatusLocalOnly: {SyncStatusLocalOnly: true, SyncStatusPending: true, SyncStatusSynced: true},
	SyncStatusPending:   {SyncStatusPending: true, SyncStatusLocalOnly: true, SyncStatusSynced: true},
	SyncStatusSynced:    {SyncStatusSynced: true, SyncStatusPending: true},
}

// Valid 是否为已知状态
func (s SyncStatus) Valid() bool {
	_, ok := syncTransitions[s]
	return ok
}

// CanTransition 检查 from -> to 是否在状态表中
func CanTransition(from, to SyncStatus) bool {
	return syncTransitions[from][to]
}

// MaxSnapshots 历史快照上限
const MaxSnapshots = 20

// BudgetSnapshot 预算快照，创建后不可修改
type BudgetSnapshot struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Budget    BudgetFields `json:"budget"`
}

// UserIdentity 用户身份
type UserIdentity struct {
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// BudgetState 客户端预算状态聚合
type BudgetState struct {
	Budget        BudgetFields     `json:"budget"`
	SyncStatus    SyncStatus       `json:"syncStatus"`
	LastUpdatedAt *time.Time       `json:"lastUpdatedAt,omitempty"`
	LastSyncedAt  *time.Time       `json:"lastSyncedAt,omitempty"`
	User          UserIdentity     `json:"user"`
	History       []BudgetSnapshot `json:"history"`
}

// NewBudgetState 初始状态：全部为 0，仅本地
func NewBudgetState() BudgetState {
	return BudgetState{
		SyncStatus: SyncStatusLocalOnly,
		History:    []BudgetSnapshot{},
	}
}

// Clone 深拷贝
func (s BudgetState) Clone() BudgetState {
	out := s
	if s.LastUpdatedAt != nil {
		t := *s.LastUpdatedAt
		out.LastUpdatedAt = &t
	}
	if s.LastSyncedAt != nil {
		t := *s.LastSyncedAt
		out.LastSyncedAt = &t
	}
	out.History = make([]BudgetSnapshot, len(s.History))
	copy(out.History, s.History)
	return out
}
