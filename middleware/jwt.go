package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"budgetpilot/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// ErrInvalidToken 令牌无效
var ErrInvalidToken = errors.New("invalid token")

// Claims 令牌载荷，不设置过期时间
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// InitJWT 初始化 JWT 密钥
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.Auth.JWTSecret)
}

// GenerateToken 为邮箱签发令牌，jti 随机以保证每次登录令牌不同
func GenerateToken(email string) (string, error) {
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", err
	}
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: hex.EncodeToString(jti),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 解析并校验令牌签名
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken 读取 Authorization: Bearer <token>，未提供时返回空串
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// TokenRegistry 令牌 -> 邮箱 映射（仅内存，重启后清空）
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenRegistry 创建令牌表
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{tokens: make(map[string]string)}
}

// Register 记录令牌对应的邮箱
func (r *TokenRegistry) Register(token, email string) {
	r.mu.Lock()
	r.tokens[token] = email
	r.mu.Unlock()
}

// Lookup 查询令牌对应的邮箱
func (r *TokenRegistry) Lookup(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email, ok := r.tokens[token]
	return email, ok
}

// Len 已签发令牌数量
func (r *TokenRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Authorize 同步接口的授权规则：
// 仅当请求携带令牌且令牌表非空时，要求令牌对应的邮箱与请求邮箱一致；否则直接放行。
// 服务重启后令牌表为空，此时携带令牌的请求也会放行。
func (r *TokenRegistry) Authorize(token, email string) bool {
	if token == "" || r.Len() == 0 {
		return true
	}
	mapped, _ := r.Lookup(token)
	return mapped == email
}

// Verify 严格校验：令牌必须已签发、签名有效且对应该邮箱
func (r *TokenRegistry) Verify(token, email string) bool {
	if token == "" {
		return false
	}
	mapped, ok := r.Lookup(token)
	if !ok || mapped != email {
		return false
	}
	claims, err := ParseToken(token)
	return err == nil && claims.Email == email
}
