package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"budgetpilot/database"
	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	sheetBudget   = "预算"
	sheetWarnings = "预警"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	repo database.BudgetRepository
}

// NewExportHandler 创建导出处理器
func NewExportHandler(repo database.BudgetRepository) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// load 读取 ?email= 对应的记录；返回 nil 时已写出错误响应
func (h *ExportHandler) load(c *gin.Context) *models.BudgetRecord {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		BadRequest(c, "Email is required")
		return nil
	}
	record, err := h.repo.Latest(c.Request.Context(), email)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to load budget"))
		return nil
	}
	if record == nil {
		NotFound(c, "No budget stored for this email")
		return nil
	}
	return record
}

// budgetRows 导出行：各字段 + 汇总
func budgetRows(b models.BudgetFields, totals metrics.Totals) [][2]interface{} {
	rows := make([][2]interface{}, 0, len(models.GetFields())+4)
	for _, f := range models.GetFields() {
		v, _ := b.Get(f)
		rows = append(rows, [2]interface{}{f.Label(), v})
	}
	rows = append(rows,
		[2]interface{}{"Expenses", totals.Expenses},
		[2]interface{}{"Burn rate", totals.BurnRate},
		[2]interface{}{"Savings", totals.Savings},
		[2]interface{}{"Month-end prediction", totals.MonthEndPrediction},
	)
	return rows
}

// ExportCSV 导出预算为 CSV
// @Summary 导出预算 CSV
// @Tags 导出
// @Produce text/csv
// @Param email query string true "邮箱"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} models.ErrorResponse "缺少邮箱"
// @Failure 404 {object} models.ErrorResponse "无服务端预算"
// @Router /budget/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	record := h.load(c)
	if record == nil {
		return
	}
	summary := metrics.Calculate(record.Budget)

	buf := new(bytes.Buffer)
	// BOM，Excel 打开时不乱码
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	lines := [][]string{{"Item", "Amount"}}
	for _, row := range budgetRows(record.Budget, summary.Totals) {
		lines = append(lines, []string{row[0].(string), fmt.Sprintf("%.2f", row[1].(float64))})
	}
	for _, w := range summary.Warnings {
		lines = append(lines, []string{"Warning", w.Message})
	}
	lines = append(lines, []string{"Updated at", record.UpdatedAt.Format("2006-01-02 15:04:05")})

	if err := writer.WriteAll(lines); err != nil {
		InternalError(c, "Failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("budget_%s.csv", record.UpdatedAt.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出预算为 Excel
// @Summary 导出预算 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param email query string true "邮箱"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} models.ErrorResponse "缺少邮箱"
// @Failure 404 {object} models.ErrorResponse "无服务端预算"
// @Router /budget/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	record := h.load(c)
	if record == nil {
		return
	}

	f, err := buildWorkbook(record)
	if err != nil {
		InternalError(c, "Failed to generate Excel")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("budget_%s.xlsx", record.UpdatedAt.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "Failed to generate Excel")
		return
	}
}

// buildWorkbook 生成两页工作簿：预算明细与预警
func buildWorkbook(record *models.BudgetRecord) (*excelize.File, error) {
	summary := metrics.Calculate(record.Budget)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetBudget); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(sheetWarnings); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	numFmt := "#,##0.00"
	dataStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Border:       border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		CustomNumFmt: &numFmt,
		Border:       border,
	})

	f.SetColWidth(sheetBudget, "A", "A", 24)
	f.SetColWidth(sheetBudget, "B", "B", 16)
	f.SetCellValue(sheetBudget, "A1", "Item")
	f.SetCellValue(sheetBudget, "B1", "Amount")
	f.SetCellStyle(sheetBudget, "A1", "B1", headerStyle)

	fieldCount := len(models.GetFields())
	for i, row := range budgetRows(record.Budget, summary.Totals) {
		r := i + 2
		f.SetCellValue(sheetBudget, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(sheetBudget, fmt.Sprintf("B%d", r), row[1])
		style := dataStyle
		if i >= fieldCount {
			style = summaryStyle
		}
		f.SetCellStyle(sheetBudget, fmt.Sprintf("A%d", r), fmt.Sprintf("B%d", r), style)
	}

	f.SetColWidth(sheetWarnings, "A", "A", 16)
	f.SetColWidth(sheetWarnings, "B", "B", 72)
	f.SetCellValue(sheetWarnings, "A1", "Code")
	f.SetCellValue(sheetWarnings, "B1", "Message")
	f.SetCellStyle(sheetWarnings, "A1", "B1", headerStyle)
	for i, w := range summary.Warnings {
		r := i + 2
		f.SetCellValue(sheetWarnings, fmt.Sprintf("A%d", r), w.Code)
		f.SetCellValue(sheetWarnings, fmt.Sprintf("B%d", r), w.Message)
	}

	return f, nil
}
