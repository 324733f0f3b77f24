package api

import (
	"budgetpilot/config"
)

// SafeErrorMessage release 模式下隐藏存储层错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
