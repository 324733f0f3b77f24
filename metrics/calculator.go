// Package metrics 预算衍生指标计算（纯函数，无状态）
package metrics

import (
	"math"

	"budgetpilot/models"

	"github.com/shopspring/decimal"
)

// 预警代码
const (
	WarningFood          = "food"
	WarningSubscriptions = "subscriptions"
	WarningOverspend     = "overspend"
	WarningBurnRate      = "burn_rate"
)

var (
	foodShareLimit         = decimal.NewFromFloat(0.4)
	subscriptionShareLimit = decimal.NewFromFloat(0.3)
)

// Totals 月度汇总
type Totals struct {
	Expenses           float64 `json:"expenses"`
	BurnRate           float64 `json:"burnRate"`
	Savings            float64 `json:"savings"`
	MonthEndPrediction float64 `json:"monthEndPrediction"`
}

// Warning 支出预警
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary 汇总 + 预警
type Summary struct {
	Totals   Totals    `json:"totals"`
	Warnings []Warning `json:"warnings"`
}

type amounts struct {
	income, expenses, savings decimal.Decimal
	food, subscriptions       decimal.Decimal
	// burnRate 与 float64 的 expenses/income 逐位一致
	burnRate float64
}

// toDecimal NaN / ±Inf 按 0 处理（decimal 无法表示）
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func compute(b models.BudgetFields) amounts {
	a := amounts{
		income:        toDecimal(b.Income),
		food:          toDecimal(b.Food),
		subscriptions: toDecimal(b.Subscriptions),
	}
	a.expenses = decimal.Sum(
		toDecimal(b.MonthlyBills),
		a.food,
		toDecimal(b.Transport),
		a.subscriptions,
		toDecimal(b.Miscellaneous),
	)
	a.savings = a.income.Sub(a.expenses)
	if a.income.IsPositive() {
		a.burnRate = a.expenses.InexactFloat64() / b.Income
	}
	return a
}

// ComputeTotals 计算总支出、消耗率、结余和月末预测
func ComputeTotals(b models.BudgetFields) Totals {
	a := compute(b)
	savings := a.savings.InexactFloat64()
	return Totals{
		Expenses:           a.expenses.InexactFloat64(),
		BurnRate:           a.burnRate,
		Savings:            savings,
		MonthEndPrediction: savings,
	}
}

// ComputeWarnings 逐条独立判断预警规则，按规则顺序返回命中的预警
// 收入不大于 0 时跳过收入占比类规则
func ComputeWarnings(b models.BudgetFields) []Warning {
	a := compute(b)
	warnings := []Warning{}

	if a.income.IsPositive() {
		if a.food.Div(a.income).GreaterThan(foodShareLimit) {
			warnings = append(warnings, Warning{
				Code:    WarningFood,
				Message: "Food spend is above 40% of income. Review dining out and groceries.",
			})
		}
		if a.subscriptions.Div(a.income).GreaterThan(subscriptionShareLimit) {
			warnings = append(warnings, Warning{
				Code:    WarningSubscriptions,
				Message: "Subscriptions are above 30% of income. Cancel the ones you do not use.",
			})
		}
	}
	if a.savings.IsNegative() {
		warnings = append(warnings, Warning{
			Code:    WarningOverspend,
			Message: "Expenses higher than income this month.",
		})
	}
	if a.burnRate > 1 {
		warnings = append(warnings, Warning{
			Code:    WarningBurnRate,
			Message: "Burn rate above 1.0: you are spending faster than you earn.",
		})
	}
	return warnings
}

// Calculate 计算汇总和预警
func Calculate(b models.BudgetFields) Summary {
	return Summary{
		Totals:   ComputeTotals(b),
		Warnings: ComputeWarnings(b),
	}
}

// Has 是否包含指定预警
func (s Summary) Has(code string) bool {
	for _, w := range s.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
