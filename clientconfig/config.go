// Package clientconfig 终端客户端配置（TOML，XDG 目录）
package clientconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appName = "budgetpilot"

	// EnvServerURL 覆盖服务地址
	EnvServerURL = "BUDGETPILOT_SERVER_URL"

	// DefaultServerURL 默认服务地址
	DefaultServerURL = "http://localhost:8080"
	// DefaultTimeoutSeconds 默认单次请求超时
	DefaultTimeoutSeconds = 10
)

// Config 客户端配置
type Config struct {
	ServerURL string `toml:"server_url"`
	// Email 最近登录的邮箱，登录成功后写回
	Email     string `toml:"email,omitempty"`
	StatePath string `toml:"state_path,omitempty"`
	// TimeoutSeconds 为 0 表示不超时
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Default 默认配置
func Default() Config {
	return Config{
		ServerURL:      DefaultServerURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Dir XDG 配置目录
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path 配置文件路径
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Exists 配置文件是否存在
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load 读取配置，文件不存在时返回默认值；环境变量优先于文件
func Load() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}

	if u := os.Getenv(EnvServerURL); u != "" {
		cfg.ServerURL = strings.TrimRight(u, "/")
	}
	return cfg, nil
}

// LoadFile 只读取配置文件，不应用环境变量
// 修改后需要 Save 的场景用它，避免把临时的环境变量写进文件
func LoadFile() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.TimeoutSeconds < 0 {
		cfg.TimeoutSeconds = 0
	}
	return cfg, nil
}

// Save 写入配置文件
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Timeout 请求超时
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveStatePath 本地状态数据库路径，未配置时放在配置目录下
func (c Config) ResolveStatePath() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	return filepath.Join(Dir(), "state.db")
}
