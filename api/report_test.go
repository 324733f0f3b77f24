package api

import (
	"context"
	"testing"

	"budgetpilot/config"
	"budgetpilot/database"
	"budgetpilot/middleware"
	"budgetpilot/models"
	"budgetpilot/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func setupReportRouter(t *testing.T, enabled bool) (*gin.Engine, *middleware.TokenRegistry, *[]*gomail.Message) {
	gin.SetMode(gin.TestMode)
	newTestConfig()
	t.Cleanup(func() { config.GlobalConfig = nil })

	repo := database.NewMemoryRepository()
	require.NoError(t, repo.Save(context.Background(), models.BudgetRecord{
		Email:     "demo@budgetpilot.app",
		Budget:    models.BudgetFields{Income: 5000, Food: 1000},
		UpdatedAt: fixedNow,
	}))

	var sent []*gomail.Message
	emailService := service.NewEmailService(&config.EmailConfig{Enabled: enabled}).
		WithSender(func(m *gomail.Message) error {
			sent = append(sent, m)
			return nil
		})

	registry := middleware.NewTokenRegistry()
	router := gin.New()
	router.POST("/budget/report", NewReportHandler(repo, registry, emailService).Send)
	return router, registry, &sent
}

func issueToken(t *testing.T, registry *middleware.TokenRegistry, email string) string {
	token, err := middleware.GenerateToken(email)
	require.NoError(t, err)
	registry.Register(token, email)
	return token
}

func TestReportHandler_Send(t *testing.T) {
	router, registry, sent := setupReportRouter(t, true)
	token := issueToken(t, registry, "demo@budgetpilot.app")

	w := doJSON(router, "POST", "/budget/report", token, ReportRequest{Email: "demo@budgetpilot.app"})
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"sent":true}`, w.Body.String())
	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"demo@budgetpilot.app"}, (*sent)[0].GetHeader("To"))
}

func TestReportHandler_RequiresToken(t *testing.T) {
	router, registry, sent := setupReportRouter(t, true)
	other := issueToken(t, registry, "other@budgetpilot.app")

	// 未携带令牌（与 /budget/sync 不同，这里严格校验）
	w := doJSON(router, "POST", "/budget/report", "", ReportRequest{Email: "demo@budgetpilot.app"})
	assert.Equal(t, 401, w.Code)

	// 他人令牌
	w = doJSON(router, "POST", "/budget/report", other, ReportRequest{Email: "demo@budgetpilot.app"})
	assert.Equal(t, 401, w.Code)

	assert.Empty(t, *sent)
}

func TestReportHandler_Disabled(t *testing.T) {
	router, registry, sent := setupReportRouter(t, false)
	token := issueToken(t, registry, "demo@budgetpilot.app")

	w := doJSON(router, "POST", "/budget/report", token, ReportRequest{Email: "demo@budgetpilot.app"})
	assert.Equal(t, 503, w.Code)
	assert.Empty(t, *sent)
}

func TestReportHandler_NoRecord(t *testing.T) {
	router, registry, _ := setupReportRouter(t, true)
	token := issueToken(t, registry, "nobody@budgetpilot.app")

	w := doJSON(router, "POST", "/budget/report", token, ReportRequest{Email: "nobody@budgetpilot.app"})
	assert.Equal(t, 404, w.Code)
}
