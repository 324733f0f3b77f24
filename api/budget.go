package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"budgetpilot/database"
	"budgetpilot/metrics"
	"budgetpilot/middleware"
	"budgetpilot/models"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算同步处理器
type BudgetHandler struct {
	repo     database.BudgetRepository
	registry *middleware.TokenRegistry
	now      func() time.Time
}

// NewBudgetHandler 创建预算同步处理器
func NewBudgetHandler(repo database.BudgetRepository, registry *middleware.TokenRegistry) *BudgetHandler {
	return &BudgetHandler{
		repo:     repo,
		registry: registry,
		now:      time.Now,
	}
}

// MetricsResponse 服务端计算的预算指标
type MetricsResponse struct {
	Email     string              `json:"email"`
	Budget    models.BudgetFields `json:"budget"`
	Totals    metrics.Totals      `json:"totals"`
	Warnings  []metrics.Warning   `json:"warnings"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Sync 上传预算
// @Summary 上传预算
// @Description 覆盖保存该邮箱的预算（后写覆盖先写）。携带令牌且服务端已签发过令牌时，令牌必须属于该邮箱
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SyncRequest true "预算数据"
// @Success 200 {object} models.SyncResponse "同步成功"
// @Failure 400 {object} models.ErrorResponse "缺少邮箱或预算"
// @Failure 403 {object} models.ErrorResponse "令牌与邮箱不匹配"
// @Failure 500 {object} models.ErrorResponse "保存失败"
// @Router /budget/sync [post]
func (h *BudgetHandler) Sync(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Budget == nil {
		BadRequest(c, "Email and budget are required")
		return
	}

	if !h.registry.Authorize(middleware.BearerToken(c), email) {
		Forbidden(c, "Token does not match email")
		return
	}

	record := models.BudgetRecord{
		Email:     email,
		Budget:    *req.Budget,
		UpdatedAt: h.now().UTC(),
	}
	if err := h.repo.Save(c.Request.Context(), record); err != nil {
		log.Printf("保存预算失败 (%s): %v", email, err)
		InternalError(c, SafeErrorMessage(err, "Failed to save budget"))
		return
	}

	c.JSON(http.StatusOK, models.SyncResponse{Success: true, Timestamp: record.UpdatedAt})
}

// Latest 获取最新预算
// @Summary 获取最新预算
// @Description 无记录时 budget 与 updatedAt 均为 null
// @Tags 预算
// @Produce json
// @Param email query string true "邮箱"
// @Success 200 {object} models.LatestResponse
// @Failure 400 {object} models.ErrorResponse "缺少邮箱"
// @Failure 500 {object} models.ErrorResponse "查询失败"
// @Router /budget/latest [get]
func (h *BudgetHandler) Latest(c *gin.Context) {
	record, ok := h.lookup(c)
	if !ok {
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, models.LatestResponse{})
		return
	}

	budget := record.Budget
	updatedAt := record.UpdatedAt
	c.JSON(http.StatusOK, models.LatestResponse{Budget: &budget, UpdatedAt: &updatedAt})
}

// Metrics 获取服务端预算指标
// @Summary 预算指标
// @Description 基于服务端保存的预算计算支出、燃烧率、结余和预警
// @Tags 预算
// @Produce json
// @Param email query string true "邮箱"
// @Success 200 {object} MetricsResponse
// @Failure 400 {object} models.ErrorResponse "缺少邮箱"
// @Failure 404 {object} models.ErrorResponse "无服务端预算"
// @Router /budget/metrics [get]
func (h *BudgetHandler) Metrics(c *gin.Context) {
	record, ok := h.lookup(c)
	if !ok {
		return
	}
	if record == nil {
		NotFound(c, "No budget stored for this email")
		return
	}

	summary := metrics.Calculate(record.Budget)
	c.JSON(http.StatusOK, MetricsResponse{
		Email:     record.Email,
		Budget:    record.Budget,
		Totals:    summary.Totals,
		Warnings:  summary.Warnings,
		UpdatedAt: record.UpdatedAt,
	})
}

// lookup 读取 ?email= 对应的记录；返回 false 时已写出错误响应
func (h *BudgetHandler) lookup(c *gin.Context) (*models.BudgetRecord, bool) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		BadRequest(c, "Email is required")
		return nil, false
	}

	record, err := h.repo.Latest(c.Request.Context(), email)
	if err != nil {
		log.Printf("查询预算失败 (%s): %v", email, err)
		InternalError(c, SafeErrorMessage(err, "Failed to load budget"))
		return nil, false
	}
	return record, true
}
