package cli

import (
	"math"
	"testing"
	"time"

	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1200", 1200},
		{" 12.5 ", 12.5},
		{"$1,234.56", 1234.56},
		{"-40", -40},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e400", 0},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.in)
		assert.Equalf(t, tt.want, got, "ParseAmount(%q)", tt.in)
		assert.False(t, math.IsNaN(got))
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "999.50", FormatAmount(999.5))
	assert.Equal(t, "1,000.00", FormatAmount(1000))
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.891))
	assert.Equal(t, "-200.00", FormatAmount(-200))
}

func TestFormatRateAndTime(t *testing.T) {
	assert.Equal(t, "0.85 (85%)", FormatRate(0.85))
	assert.Equal(t, "never", FormatTime(nil))
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-05-01 08:00:00", FormatTime(&ts))
}

func TestRenderState(t *testing.T) {
	st := models.NewBudgetState()
	st.Budget = models.BudgetFields{Income: 3000, MonthlyBills: 1500, Food: 1300, Subscriptions: 400}
	st.SyncStatus = models.SyncStatusPending
	st.User = models.UserIdentity{Email: "demo@budgetpilot.app"}

	out := RenderState(st)
	assert.Contains(t, out, "BudgetPilot")
	assert.Contains(t, out, "sync-pending")
	assert.Contains(t, out, "demo@budgetpilot.app (no token)")
	assert.Contains(t, out, "Monthly bills")
	assert.Contains(t, out, "3,000.00")
	assert.Contains(t, out, "3,200.00")
	assert.Contains(t, out, "-200.00")
	assert.Contains(t, out, "Expenses higher than income this month.")
}

func TestRenderWarnings_None(t *testing.T) {
	assert.Contains(t, RenderWarnings(nil), "No warnings")
	out := RenderWarnings([]metrics.Warning{{Code: metrics.WarningFood, Message: "food"}, {Code: metrics.WarningOverspend, Message: "over"}})
	assert.Contains(t, out, "! food")
	assert.Contains(t, out, "! over")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "No snapshots yet")

	out := RenderHistory([]models.BudgetSnapshot{
		{ID: "snap-02", Timestamp: time.Now(), Budget: models.BudgetFields{Income: 100, Food: 30}},
		{ID: "snap-01", Timestamp: time.Now(), Budget: models.BudgetFields{Income: 50}},
	})
	assert.Contains(t, out, "History (2/20)")
	assert.Contains(t, out, "snap-02")
	assert.Contains(t, out, "70.00")
}
