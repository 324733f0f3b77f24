// Package cli 终端输出的格式化与渲染
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseAmount 解析用户输入的金额，允许千分位逗号和货币符号
// 无法解析或结果非有限数时返回 0
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatAmount 金额，两位小数并带千分位
func FormatAmount(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatRate 燃烧率，如 0.85 -> "0.85 (85%)"
func FormatRate(r float64) string {
	return fmt.Sprintf("%.2f (%.0f%%)", r, r*100)
}

// FormatTime 时间戳，空值显示 never
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
