package metrics

import (
	"math"
	"testing"

	"budgetpilot/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	b := models.BudgetFields{
		Income:        50000,
		MonthlyBills:  12000,
		Food:          8000,
		Transport:     3000,
		Subscriptions: 1200,
		Miscellaneous: 2500,
	}
	totals := ComputeTotals(b)
	assert.Equal(t, 26700.0, totals.Expenses)
	assert.InDelta(t, 26700.0/50000.0, totals.BurnRate, 1e-12)
	assert.Equal(t, 23300.0, totals.Savings)
	assert.Equal(t, totals.Savings, totals.MonthEndPrediction)
}

func TestComputeTotals_ZeroIncome(t *testing.T) {
	totals := ComputeTotals(models.BudgetFields{Food: 300, Transport: 200})
	assert.Equal(t, 0.0, totals.BurnRate)
	assert.Equal(t, 500.0, totals.Expenses)
	assert.Equal(t, -500.0, totals.Savings)
}

func TestComputeTotals_ExactSums(t *testing.T) {
	// 浮点直接相加为 0.30000000000000004
	totals := ComputeTotals(models.BudgetFields{Income: 1, Food: 0.1, Transport: 0.2})
	assert.Equal(t, 0.3, totals.Expenses)
	assert.Equal(t, 0.7, totals.Savings)
}

func TestComputeTotals_NonFinite(t *testing.T) {
	totals := ComputeTotals(models.BudgetFields{Income: math.NaN(), Food: math.Inf(1), Transport: 100})
	assert.Equal(t, 100.0, totals.Expenses)
	assert.Equal(t, 0.0, totals.BurnRate)
	assert.Equal(t, -100.0, totals.Savings)
}

func TestBurnRateProperty(t *testing.T) {
	cases := []models.BudgetFields{
		{Income: 1000, MonthlyBills: 250},
		{Income: 3000, Food: 1000, Transport: 1000, Miscellaneous: 1500},
		{Income: 7, Subscriptions: 3},
		{Income: 3, Food: 2},
		{Income: 30000, MonthlyBills: 20000},
		{Income: 3e12, Miscellaneous: 1},
		{Income: 1e17, Transport: 1},
		{Income: 0, Food: 10},
		{Income: -100, Food: 10},
	}
	for _, b := range cases {
		totals := ComputeTotals(b)
		if b.Income > 0 {
			assert.Equal(t, totals.Expenses/b.Income, totals.BurnRate, "%+v", b)
		} else {
			assert.Equal(t, 0.0, totals.BurnRate, "%+v", b)
		}
		assert.InDelta(t, b.Income-totals.Expenses, totals.Savings, 1e-9, "%+v", b)
	}
}

func TestComputeWarnings_FoodShare(t *testing.T) {
	s := Calculate(models.BudgetFields{Income: 50000, Food: 25000})
	assert.True(t, s.Has(WarningFood))
	assert.False(t, s.Has(WarningSubscriptions))
	assert.False(t, s.Has(WarningOverspend))
	assert.False(t, s.Has(WarningBurnRate))
}

func TestComputeWarnings_Overspend(t *testing.T) {
	s := Calculate(models.BudgetFields{
		Income:       10000,
		MonthlyBills: 6000,
		Food:         3000,
		Transport:    3000,
	})
	assert.Equal(t, -2000.0, s.Totals.Savings)
	assert.InDelta(t, 1.2, s.Totals.BurnRate, 1e-12)
	assert.True(t, s.Has(WarningOverspend))
	assert.True(t, s.Has(WarningBurnRate))
	assert.Contains(t, s.Warnings[len(s.Warnings)-2].Message, "Expenses higher than income")
	assert.Contains(t, s.Warnings[len(s.Warnings)-1].Message, "Burn rate above 1.0")
}

func TestComputeWarnings_ZeroIncomeSuppressesRatios(t *testing.T) {
	s := Calculate(models.BudgetFields{Food: 90000, Subscriptions: 90000})
	assert.False(t, s.Has(WarningFood))
	assert.False(t, s.Has(WarningSubscriptions))
	// 收入为 0 时消耗率为 0，只有超支预警
	assert.True(t, s.Has(WarningOverspend))
	assert.False(t, s.Has(WarningBurnRate))
}

func TestComputeWarnings_Order(t *testing.T) {
	s := Calculate(models.BudgetFields{Income: 100, Food: 50, Subscriptions: 40, MonthlyBills: 20})
	codes := make([]string, 0, len(s.Warnings))
	for _, w := range s.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{WarningFood, WarningSubscriptions, WarningOverspend, WarningBurnRate}, codes)
}

func TestComputeWarnings_Boundaries(t *testing.T) {
	// 恰好 40% / 30% 不触发
	s := Calculate(models.BudgetFields{Income: 1000, Food: 400, Subscriptions: 300})
	assert.False(t, s.Has(WarningFood))
	assert.False(t, s.Has(WarningSubscriptions))

	// 收支相等：结余 0，消耗率 1，均不触发
	s = Calculate(models.BudgetFields{Income: 1000, MonthlyBills: 1000})
	assert.False(t, s.Has(WarningOverspend))
	assert.False(t, s.Has(WarningBurnRate))

	// 空预算无预警
	assert.Empty(t, ComputeWarnings(models.BudgetFields{}))
}
