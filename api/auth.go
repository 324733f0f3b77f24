package api

import (
	"log"
	"net/http"
	"strings"

	"budgetpilot/config"
	"budgetpilot/middleware"
	"budgetpilot/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 认证处理器（单一演示账号）
type AuthHandler struct {
	demoEmail string
	demoHash  []byte
	registry  *middleware.TokenRegistry
}

// NewAuthHandler 创建认证处理器，演示密码在启动时做 bcrypt 哈希，内存中不保留明文
func NewAuthHandler(cfg *config.Config, registry *middleware.TokenRegistry) *AuthHandler {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		// 仅在密码超过 72 字节时出错，此时任何登录都会失败
		log.Printf("警告: 演示密码哈希失败: %v", err)
	}
	return &AuthHandler{
		demoEmail: strings.TrimSpace(cfg.Auth.DemoEmail),
		demoHash:  hash,
		registry:  registry,
	}
}

// Login 登录
// @Summary 登录
// @Description 使用演示账号登录，返回不透明的 Bearer 令牌（无过期时间）
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "登录信息"
// @Success 200 {object} models.LoginResponse "登录成功"
// @Failure 400 {object} models.ErrorResponse "请求参数错误"
// @Failure 401 {object} models.ErrorResponse "邮箱或密码错误"
// @Failure 429 {object} models.ErrorResponse "尝试次数过多"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Email and password are required")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email != h.demoEmail || h.demoHash == nil ||
		bcrypt.CompareHashAndPassword(h.demoHash, []byte(req.Password)) != nil {
		Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(email)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to issue token"))
		return
	}
	h.registry.Register(token, email)

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, Email: email})
}
