package models

import (
	"errors"
	"time"
)

// ErrUnknownField 未知的预算字段
var ErrUnknownField = errors.New("unknown budget field")

// Field 预算字段名
type Field string

// 预算字段常量（与 JSON 键保持一致）
const (
	FieldIncome        Field = "income"
	FieldMonthlyBills  Field = "monthlyBills"
	FieldFood          Field = "food"
	FieldTransport     Field = "transport"
	FieldSubscriptions Field = "subscriptions"
	FieldMiscellaneous Field = "miscellaneous"
)

// GetFields 获取所有预算字段（收入在前，支出类别按展示顺序）
func GetFields() []Field {
	return []Field{
		FieldIncome,
		FieldMonthlyBills,
		FieldFood,
		FieldTransport,
		FieldSubscriptions,
		FieldMiscellaneous,
	}
}

// ParseField 解析字段名
func ParseField(name string) (Field, error) {
	for _, f := range GetFields() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// Label 展示名称
func (f Field) Label() string {
	switch f {
	case FieldIncome:
		return "Income"
	case FieldMonthlyBills:
		return "Monthly bills"
	case FieldFood:
		return "Food"
	case FieldTransport:
		return "Transport"
	case FieldSubscriptions:
		return "Subscriptions"
	case FieldMiscellaneous:
		return "Miscellaneous"
	}
	return string(f)
}

// BudgetFields 月度预算字段
// 所有字段默认 0，存储层不校验取值范围
type BudgetFields struct {
	Income        float64 `json:"income" example:"50000"`
	MonthlyBills  float64 `json:"monthlyBills" example:"12000"`
	Food          float64 `json:"food" example:"8000"`
	Transport     float64 `json:"transport" example:"3000"`
	Subscriptions float64 `json:"subscriptions" example:"1200"`
	Miscellaneous float64 `json:"miscellaneous" example:"2500"`
}

// Get 读取单个字段
func (b BudgetFields) Get(f Field) (float64, error) {
	switch f {
	case FieldIncome:
		return b.Income, nil
	case FieldMonthlyBills:
		return b.MonthlyBills, nil
	case FieldFood:
		return b.Food, nil
	case FieldTransport:
		return b.Transport, nil
	case FieldSubscriptions:
		return b.Subscriptions, nil
	case FieldMiscellaneous:
		return b.Miscellaneous, nil
	}
	return 0, ErrUnknownField
}

// Set 设置单个字段
func (b *BudgetFields) Set(f Field, value float64) error {
	switch f {
	case FieldIncome:
		b.Income = value
	case FieldMonthlyBills:
		b.MonthlyBills = value
	case FieldFood:
		b.Food = value
	case FieldTransport:
		b.Transport = value
	case FieldSubscriptions:
		b.Subscriptions = value
	case FieldMiscellaneous:
		b.Miscellaneous = value
	default:
		return ErrUnknownField
	}
	return nil
}

// BudgetRecord 服务端预算记录，每个邮箱仅保留一条
type BudgetRecord struct {
	Email     string       `json:"email" gorm:"primaryKey;size:191"`
	Budget    BudgetFields `json:"budget" gorm:"serializer:json;type:text;not null"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TableName 设置表名
func (BudgetRecord) TableName() string {
	return "budget_records"
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"demo@budgetpilot.app"`
	Password string `json:"password" binding:"required" example:"demo1234"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// SyncRequest 同步请求，budget 为空视为缺失
type SyncRequest struct {
	Budget *BudgetFields `json:"budget"`
	Email  string        `json:"email" example:"demo@budgetpilot.app"`
}

// SyncResponse 同步响应
type SyncResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// LatestResponse 最新预算响应，无记录时两个字段均为 null
type LatestResponse struct {
	Budget    *BudgetFields `json:"budget"`
	UpdatedAt *time.Time    `json:"updatedAt"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}
