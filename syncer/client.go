package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetpilot/models"
)

const (
	// DefaultTimeout 默认单次请求超时
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrOffline 网络不可用或服务无响应
	ErrOffline = errors.New("working offline")
	// ErrAuthentication 认证失败（账号密码错误或令牌与邮箱不匹配）
	ErrAuthentication = errors.New("authentication failed")
)

// APIError 服务端非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is 401/403 视为认证错误
func (e *APIError) Is(target error) bool {
	return target == ErrAuthentication &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Remote 远程预算服务
type Remote interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Sync(ctx context.Context, token string, req models.SyncRequest) (*models.SyncResponse, error)
	Latest(ctx context.Context, email string) (*models.LatestResponse, error)
}

// HTTPClient 基于 HTTP 的远程预算服务客户端
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient 创建客户端，timeout 为 0 表示不超时
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login 登录获取令牌
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sync 上传当前预算
func (c *HTTPClient) Sync(ctx context.Context, token string, req models.SyncRequest) (*models.SyncResponse, error) {
	var resp models.SyncResponse
	if err := c.do(ctx, http.MethodPost, "/budget/sync", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Latest 获取服务端最新预算
func (c *HTTPClient) Latest(ctx context.Context, email string) (*models.LatestResponse, error) {
	var resp models.LatestResponse
	path := "/budget/latest?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrOffline, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e models.ErrorResponse
		_ = json.Unmarshal(data, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
