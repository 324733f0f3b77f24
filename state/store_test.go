package state

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestStore 固定时钟（每次调用前进 1 秒）和递增 ID
func newTestStore(t *testing.T, p Persister) *Store {
	t.Helper()
	var mu sync.Mutex
	tick := 0
	seq := 0
	s := New(p,
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick++
			return baseTime.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("snap-%02d", seq)
		}),
	)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNew_InitialState(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	st := s.State()
	assert.Equal(t, models.BudgetFields{}, st.Budget)
	assert.Equal(t, models.SyncStatusLocalOnly, st.SyncStatus)
	assert.Nil(t, st.LastUpdatedAt)
	assert.Nil(t, st.LastSyncedAt)
	assert.Empty(t, st.History)
}

func TestUpdateField(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())

	require.NoError(t, s.UpdateField(models.FieldIncome, 50000))
	require.NoError(t, s.UpdateField(models.FieldFood, 25000))
	st := s.State()
	assert.Equal(t, 50000.0, st.Budget.Income)
	assert.Equal(t, 25000.0, st.Budget.Food)
	require.NotNil(t, st.LastUpdatedAt)

	// 不校验取值范围
	require.NoError(t, s.UpdateField(models.FieldTransport, -10))
	assert.Equal(t, -10.0, s.Budget().Transport)

	// 未知字段
	err := s.UpdateField(models.Field("rent"), 1)
	assert.ErrorIs(t, err, models.ErrUnknownField)
}

func TestUpdateField_StatusTransitions(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())

	// 仅本地 -> 仅本地
	require.NoError(t, s.UpdateField(models.FieldFood, 1))
	assert.Equal(t, models.SyncStatusLocalOnly, s.Status())

	// 已同步 -> 待同步
	s.MarkSynced(baseTime)
	require.NoError(t, s.UpdateField(models.FieldFood, 2))
	assert.Equal(t, models.SyncStatusPending, s.Status())

	// 待同步 -> 待同步
	require.NoError(t, s.UpdateField(models.FieldFood, 3))
	assert.Equal(t, models.SyncStatusPending, s.Status())
}

func TestSetSyncStatus(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())

	require.NoError(t, s.SetSyncStatus(models.SyncStatusPending))
	require.NoError(t, s.SetSyncStatus(models.SyncStatusLocalOnly))
	require.NoError(t, s.SetSyncStatus(models.SyncStatusSynced))

	// 已同步不能直接回到仅本地
	err := s.SetSyncStatus(models.SyncStatusLocalOnly)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, models.SyncStatusSynced, s.Status())

	err = s.SetSyncStatus(models.SyncStatus("archived"))
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestMarkSynced(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	at := baseTime.Add(time.Hour)
	s.MarkSynced(at)
	st := s.State()
	assert.Equal(t, models.SyncStatusSynced, st.SyncStatus)
	require.NotNil(t, st.LastSyncedAt)
	assert.True(t, at.Equal(*st.LastSyncedAt))
}

func TestHydrateFromServer(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	require.NoError(t, s.UpdateField(models.FieldFood, 999))

	server := models.BudgetFields{Income: 1000, MonthlyBills: 200}
	at := baseTime.Add(48 * time.Hour)
	s.HydrateFromServer(server, &at)

	st := s.State()
	// 整体覆盖，本地未保存的修改被丢弃
	assert.Equal(t, server, st.Budget)
	assert.Equal(t, models.SyncStatusSynced, st.SyncStatus)
	assert.True(t, at.Equal(*st.LastSyncedAt))

	// 未提供时间时使用当前时间
	s.HydrateFromServer(server, nil)
	require.NotNil(t, s.State().LastSyncedAt)
	assert.True(t, s.State().LastSyncedAt.After(baseTime))
}

func TestAddSnapshot_Truncates(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	for i := 1; i <= 25; i++ {
		require.NoError(t, s.UpdateField(models.FieldIncome, float64(i)))
		s.AddSnapshot()
	}

	history := s.State().History
	require.Len(t, history, models.MaxSnapshots)
	// 最新的在前，最早的 5 条被淘汰
	assert.Equal(t, "snap-25", history[0].ID)
	assert.Equal(t, 25.0, history[0].Budget.Income)
	assert.Equal(t, "snap-06", history[len(history)-1].ID)
	assert.Equal(t, 6.0, history[len(history)-1].Budget.Income)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Timestamp.After(history[i].Timestamp))
	}
}

func TestAddSnapshot_IsCopy(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	require.NoError(t, s.UpdateField(models.FieldFood, 100))
	snap := s.AddSnapshot()
	require.NoError(t, s.UpdateField(models.FieldFood, 200))

	assert.Equal(t, 100.0, snap.Budget.Food)
	assert.Equal(t, 100.0, s.State().History[0].Budget.Food)
}

func TestRestoreSnapshot(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	require.NoError(t, s.UpdateField(models.FieldIncome, 3000))
	snap := s.AddSnapshot()
	require.NoError(t, s.UpdateField(models.FieldIncome, 9000))
	s.MarkSynced(baseTime)

	// 不存在的 ID 不做修改
	before := s.State()
	assert.False(t, s.RestoreSnapshot("missing"))
	assert.Equal(t, before, s.State())

	assert.True(t, s.RestoreSnapshot(snap.ID))
	st := s.State()
	assert.Equal(t, snap.Budget, st.Budget)
	assert.Equal(t, models.SyncStatusLocalOnly, st.SyncStatus)
}

func TestIdentityAndLogout(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	s.SetIdentity("demo@budgetpilot.app", "tok")
	assert.Equal(t, models.UserIdentity{Email: "demo@budgetpilot.app", Token: "tok"}, s.Identity())

	s.Logout()
	assert.Equal(t, models.UserIdentity{Email: "demo@budgetpilot.app"}, s.Identity())
}

func TestReset(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	require.NoError(t, s.UpdateField(models.FieldFood, 10))
	s.AddSnapshot()
	s.MarkSynced(baseTime)

	s.Reset()
	st := s.State()
	assert.Equal(t, models.BudgetFields{}, st.Budget)
	assert.Equal(t, models.SyncStatusPending, st.SyncStatus)
	assert.Len(t, st.History, 1)
}

func TestSummary(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	require.NoError(t, s.UpdateField(models.FieldIncome, 50000))
	require.NoError(t, s.UpdateField(models.FieldFood, 25000))
	summary := s.Summary()
	assert.True(t, summary.Has(metrics.WarningFood))
	assert.Equal(t, 25000.0, summary.Totals.Savings)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())

	var got []models.BudgetState
	unsubscribe := s.Subscribe(func(st models.BudgetState) {
		got = append(got, st)
	})

	require.NoError(t, s.UpdateField(models.FieldFood, 10))
	s.AddSnapshot()
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].Budget.Food)
	assert.Len(t, got[1].History, 1)

	// 失败的修改不通知
	_ = s.UpdateField(models.Field("nope"), 1)
	assert.Len(t, got, 2)

	unsubscribe()
	require.NoError(t, s.UpdateField(models.FieldFood, 20))
	assert.Len(t, got, 2)
}

func TestPersistence_Memory(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)
	require.NoError(t, s.UpdateField(models.FieldIncome, 4200))
	s.SetIdentity("demo@budgetpilot.app", "")
	s.AddSnapshot()
	s.Flush()

	doc, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, 4200.0, doc.State.Budget.Income)
	assert.Equal(t, "demo@budgetpilot.app", doc.State.User.Email)
	assert.Len(t, doc.State.History, 1)
	assert.GreaterOrEqual(t, p.Saves(), 1)
}

func TestPersistence_SQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "budget.db")
	p, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	doc, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	s := New(p)
	require.NoError(t, s.UpdateField(models.FieldIncome, 10000))
	require.NoError(t, s.UpdateField(models.FieldTransport, 1500))
	s.MarkSynced(baseTime)
	require.NoError(t, s.UpdateField(models.FieldFood, 800))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, p)
	require.NoError(t, err)
	defer reopened.Close()

	st := reopened.State()
	assert.Equal(t, models.BudgetFields{Income: 10000, Transport: 1500, Food: 800}, st.Budget)
	assert.Equal(t, models.SyncStatusPending, st.SyncStatus)
	require.NotNil(t, st.LastSyncedAt)
	assert.True(t, baseTime.Equal(*st.LastSyncedAt))
}

func TestOpen_MigratesVersionZero(t *testing.T) {
	p := NewMemoryPersister()
	require.NoError(t, p.Save(context.Background(), Document{
		State: models.BudgetState{Budget: models.BudgetFields{Income: 77}},
	}))

	s, err := Open(context.Background(), p)
	require.NoError(t, err)
	defer s.Close()

	st := s.State()
	assert.Equal(t, 77.0, st.Budget.Income)
	assert.Equal(t, models.SyncStatusLocalOnly, st.SyncStatus)
	assert.NotNil(t, st.History)
}

func TestOpen_RejectsNewerVersion(t *testing.T) {
	p := NewMemoryPersister()
	require.NoError(t, p.Save(context.Background(), Document{Version: DocumentVersion + 1}))

	_, err := Open(context.Background(), p)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
