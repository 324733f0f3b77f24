// Package syncer 本地预算与远程预算服务之间的同步协调
// 所有操作单次尝试，不重试；失败不影响本地编辑
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"budgetpilot/models"
	"budgetpilot/state"
)

// ErrNoIdentity 未设置邮箱
var ErrNoIdentity = errors.New("no email set, log in first")

// 提示信息
const (
	MessageLoggedIn     = "Logged in"
	MessageSynced       = "Budget synced to server"
	MessageSyncFailed   = "Sync failed, changes are kept locally"
	MessagePulled       = "Loaded latest budget from server"
	MessageNoServerCopy = "No server copy yet"
	MessageOffline      = "Working offline"
)

// Outcome 操作结果（非致命提示）
type Outcome struct {
	Status       models.SyncStatus
	Message      string
	At           *time.Time
	NoServerCopy bool
}

// Coordinator 同步协调器
type Coordinator struct {
	store  *state.Store
	remote Remote
	now    func() time.Time
}

// NewCoordinator 创建同步协调器
func NewCoordinator(store *state.Store, remote Remote) *Coordinator {
	return &Coordinator{store: store, remote: remote, now: time.Now}
}

// Login 登录，成功后保存邮箱和令牌；失败时不修改预算
func (c *Coordinator) Login(ctx context.Context, email, password string) (Outcome, error) {
	resp, err := c.remote.Login(ctx, email, password)
	if err != nil {
		return Outcome{Status: c.store.Status(), Message: err.Error()}, fmt.Errorf("login: %w", err)
	}

	identity := resp.Email
	if identity == "" {
		identity = email
	}
	c.store.SetIdentity(identity, resp.Token)
	return Outcome{Status: c.store.Status(), Message: MessageLoggedIn}, nil
}

// Sync 上传当前预算
// 立即置为待同步；成功后置为已同步，任何失败回退为仅本地
func (c *Coordinator) Sync(ctx context.Context) (Outcome, error) {
	identity := c.store.Identity()
	if identity.Email == "" {
		return Outcome{Status: c.store.Status(), Message: ErrNoIdentity.Error()}, ErrNoIdentity
	}

	if err := c.store.SetSyncStatus(models.SyncStatusPending); err != nil {
		return Outcome{Status: c.store.Status()}, err
	}

	// 请求期间的本地修改留给下一次同步
	budget := c.store.Budget()
	resp, err := c.remote.Sync(ctx, identity.Token, models.SyncRequest{Budget: &budget, Email: identity.Email})
	if err == nil && !resp.Success {
		err = &APIError{StatusCode: 200, Message: "server did not confirm the sync"}
	}
	if err != nil {
		if serr := c.store.SetSyncStatus(models.SyncStatusLocalOnly); serr != nil {
			log.Printf("警告: 同步失败后无法回退状态: %v", serr)
		}
		return Outcome{Status: c.store.Status(), Message: MessageSyncFailed}, fmt.Errorf("sync: %w", err)
	}

	at := resp.Timestamp
	if at.IsZero() {
		at = c.now()
	}
	c.store.MarkSynced(at)
	return Outcome{Status: models.SyncStatusSynced, Message: MessageSynced, At: &at}, nil
}

// FetchLatest 拉取服务端最新预算并整体覆盖本地
// 服务端无记录或请求失败时本地状态不变
func (c *Coordinator) FetchLatest(ctx context.Context) (Outcome, error) {
	identity := c.store.Identity()
	if identity.Email == "" {
		return Outcome{Status: c.store.Status(), Message: ErrNoIdentity.Error()}, ErrNoIdentity
	}

	resp, err := c.remote.Latest(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, ErrOffline) {
			err = fmt.Errorf("%w: %w", ErrOffline, err)
		}
		return Outcome{Status: c.store.Status(), Message: MessageOffline}, fmt.Errorf("fetch latest: %w", err)
	}

	if resp.Budget == nil {
		return Outcome{Status: c.store.Status(), Message: MessageNoServerCopy, NoServerCopy: true}, nil
	}

	c.store.HydrateFromServer(*resp.Budget, resp.UpdatedAt)
	return Outcome{Status: models.SyncStatusSynced, Message: MessagePulled, At: c.store.State().LastSyncedAt}, nil
}
