package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"budgetpilot/database"
	"budgetpilot/middleware"
	"budgetpilot/service"

	"github.com/gin-gonic/gin"
)

// ReportRequest 报告请求
type ReportRequest struct {
	Email string `json:"email" binding:"required" example:"demo@budgetpilot.app"`
}

// ReportHandler 预算报告处理器
type ReportHandler struct {
	repo     database.BudgetRepository
	registry *middleware.TokenRegistry
	email    *service.EmailService
}

// NewReportHandler 创建预算报告处理器
func NewReportHandler(repo database.BudgetRepository, registry *middleware.TokenRegistry, email *service.EmailService) *ReportHandler {
	return &ReportHandler{repo: repo, registry: registry, email: email}
}

// Send 发送预算报告邮件
// @Summary 发送预算报告
// @Description 将服务端保存的预算与预警以邮件发送给本人。必须携带该邮箱登录获得的令牌
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReportRequest true "邮箱"
// @Success 200 {object} map[string]bool "发送成功"
// @Failure 400 {object} models.ErrorResponse "缺少邮箱"
// @Failure 401 {object} models.ErrorResponse "令牌无效"
// @Failure 404 {object} models.ErrorResponse "无服务端预算"
// @Failure 503 {object} models.ErrorResponse "邮件服务未启用"
// @Router /budget/report [post]
func (h *ReportHandler) Send(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Email is required")
		return
	}
	email := strings.TrimSpace(req.Email)

	if !h.registry.Verify(middleware.BearerToken(c), email) {
		Unauthorized(c, "A valid token for this email is required")
		return
	}
	if !h.email.Enabled() {
		ServiceUnavailable(c, "Email delivery is disabled")
		return
	}

	record, err := h.repo.Latest(c.Request.Context(), email)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to load budget"))
		return
	}
	if record == nil {
		NotFound(c, "No budget stored for this email")
		return
	}

	if err := h.email.SendBudgetReport(email, *record); err != nil {
		if errors.Is(err, service.ErrEmailDisabled) {
			ServiceUnavailable(c, "Email delivery is disabled")
			return
		}
		log.Printf("发送预算报告失败 (%s): %v", email, err)
		InternalError(c, SafeErrorMessage(err, "Failed to send report"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}
