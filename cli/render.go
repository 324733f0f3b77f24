package cli

import (
	"fmt"
	"strings"

	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorYellow    = lipgloss.Color("#D0A215")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// RenderTitle 居中标题栏
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(44).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// renderTable 带标题的圆角表格，最后一列右对齐
func renderTable(title string, headers []string, rows [][]string) string {
	last := len(headers) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(headerStyle)
			}
			if col == last {
				return s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	if title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	return b.String()
}

// RenderBudget 预算字段
func RenderBudget(b models.BudgetFields) string {
	rows := make([][]string, 0, len(models.GetFields()))
	for _, f := range models.GetFields() {
		v, _ := b.Get(f)
		rows = append(rows, []string{f.Label(), string(f), FormatAmount(v)})
	}
	return renderTable("Budget", []string{"Category", "Field", "Amount"}, rows)
}

// RenderTotals 月度汇总
func RenderTotals(t metrics.Totals) string {
	savings := FormatAmount(t.Savings)
	prediction := FormatAmount(t.MonthEndPrediction)
	if t.Savings < 0 {
		savings = badStyle.Render(savings)
		prediction = badStyle.Render(prediction)
	}
	rate := FormatRate(t.BurnRate)
	switch {
	case t.BurnRate > 1:
		rate = badStyle.Render(rate)
	case t.BurnRate > 0.8:
		rate = warnStyle.Render(rate)
	}

	rows := [][]string{
		{"Expenses", FormatAmount(t.Expenses)},
		{"Burn rate", rate},
		{"Savings", savings},
		{"Month-end prediction", prediction},
	}
	return renderTable("Totals", []string{"Metric", "Value"}, rows)
}

// RenderWarnings 预警列表
func RenderWarnings(warnings []metrics.Warning) string {
	if len(warnings) == 0 {
		return "  " + goodStyle.Render("✓ No warnings")
	}
	var b strings.Builder
	for i, w := range warnings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("! " + w.Message))
	}
	return b.String()
}

// RenderStatus 同步状态行
func RenderStatus(st models.BudgetState) string {
	var status string
	switch st.SyncStatus {
	case models.SyncStatusSynced:
		status = goodStyle.Render("● synced")
	case models.SyncStatusPending:
		status = lipgloss.NewStyle().Foreground(ColorYellow).Render("● sync-pending")
	default:
		status = mutedStyle.Render("○ local-only")
	}

	user := "not logged in"
	if st.User.Email != "" {
		user = st.User.Email
		if st.User.Token == "" {
			user += " (no token)"
		}
	}

	lines := []string{
		fmt.Sprintf("  Status:       %s", status),
		fmt.Sprintf("  User:         %s", user),
		fmt.Sprintf("  Last edit:    %s", FormatTime(st.LastUpdatedAt)),
		fmt.Sprintf("  Last synced:  %s", FormatTime(st.LastSyncedAt)),
	}
	return strings.Join(lines, "\n")
}

// RenderHistory 快照列表（最新在前）
func RenderHistory(history []models.BudgetSnapshot) string {
	if len(history) == 0 {
		return "  " + mutedStyle.Render("No snapshots yet. Run `budgetctl snapshot` to save one.")
	}
	rows := make([][]string, 0, len(history))
	for _, snap := range history {
		totals := metrics.ComputeTotals(snap.Budget)
		rows = append(rows, []string{
			snap.ID,
			snap.Timestamp.Local().Format("2006-01-02 15:04"),
			FormatAmount(snap.Budget.Income),
			FormatAmount(totals.Savings),
		})
	}
	return renderTable(
		fmt.Sprintf("History (%d/%d)", len(history), models.MaxSnapshots),
		[]string{"ID", "Saved", "Income", "Savings"},
		rows,
	)
}

// RenderState 完整视图：状态、预算、汇总、预警
func RenderState(st models.BudgetState) string {
	summary := metrics.Calculate(st.Budget)
	return strings.Join([]string{
		RenderTitle("BudgetPilot"),
		RenderStatus(st),
		"",
		RenderBudget(st.Budget),
		"",
		RenderTotals(summary.Totals),
		"",
		RenderWarnings(summary.Warnings),
	}, "\n")
}
