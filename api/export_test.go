package api

import (
	"bytes"
	"context"
	"testing"

	"budgetpilot/database"
	"budgetpilot/metrics"
	"budgetpilot/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := database.NewMemoryRepository()
	require.NoError(t, repo.Save(context.Background(), models.BudgetRecord{
		Email:     "demo@budgetpilot.app",
		Budget:    models.BudgetFields{Income: 5000, MonthlyBills: 1200, Food: 2500},
		UpdatedAt: fixedNow,
	}))

	h := NewExportHandler(repo)
	router := gin.New()
	router.GET("/budget/export/csv", h.ExportCSV)
	router.GET("/budget/export/excel", h.ExportExcel)
	return router
}

func TestExportHandler_ExportCSV(t *testing.T) {
	router := setupExportRouter(t)

	w := doJSON(router, "GET", "/budget/export/csv?email=demo@budgetpilot.app", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "budget_20240501.csv")

	body := w.Body.String()
	assert.Contains(t, body, "Item,Amount")
	assert.Contains(t, body, "Income,5000.00")
	assert.Contains(t, body, "Expenses,3700.00")
	assert.Contains(t, body, "Savings,1300.00")
	// 餐饮占比 50%
	assert.Contains(t, body, "Food spend is above 40% of income")
}

func TestExportHandler_ExportExcel(t *testing.T) {
	router := setupExportRouter(t)

	w := doJSON(router, "GET", "/budget/export/excel?email=demo@budgetpilot.app", "", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetBudget, sheetWarnings}, f.GetSheetList())

	label, err := f.GetCellValue(sheetBudget, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Income", label)

	income, err := f.GetCellValue(sheetBudget, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "5000", income)

	code, err := f.GetCellValue(sheetWarnings, "A2")
	require.NoError(t, err)
	assert.Equal(t, metrics.WarningFood, code)
}

func TestExportHandler_Errors(t *testing.T) {
	router := setupExportRouter(t)

	for _, path := range []string{"/budget/export/csv", "/budget/export/excel"} {
		w := doJSON(router, "GET", path, "", nil)
		assert.Equal(t, 400, w.Code, path)

		w = doJSON(router, "GET", path+"?email=nobody@budgetpilot.app", "", nil)
		assert.Equal(t, 404, w.Code, path)
	}
}
