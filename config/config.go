package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigYAML 内置默认配置
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Email     EmailConfig     `mapstructure:"email"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	ServiceName string `mapstructure:"service_name"`
}

// AuthConfig 认证配置（单一演示账号）
type AuthConfig struct {
	DemoEmail    string `mapstructure:"demo_email"`
	DemoPassword string `mapstructure:"demo_password"`
	JWTSecret    string `mapstructure:"jwt_secret"`
}

// DatabaseConfig 数据库配置
// driver 为空时按 dsn 自动选择：dsn 为空使用内存存储，postgres:// 使用 Postgres，其余使用 MySQL
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	LoginAttempts int           `mapstructure:"login_attempts"`
	WindowSeconds int           `mapstructure:"window_seconds"`
	Window        time.Duration `mapstructure:"-"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	log.Println("已加载内置默认配置")

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("警告: 无法读取指定配置文件 %s: %v", configPath, err)
		} else {
			log.Printf("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/budgetpilot")
		externalViper.AddConfigPath("$HOME/.budgetpilot")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("警告: 合并外部配置失败: %v", err)
			} else {
				log.Printf("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 环境变量覆盖，例如 BUDGETPILOT_DATABASE_DSN
	v.SetEnvPrefix("BUDGETPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.applyDefaults()

	GlobalConfig = &cfg

	return &cfg, nil
}

// applyDefaults 补齐缺省值
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if !strings.HasPrefix(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	if c.Server.ServiceName == "" {
		c.Server.ServiceName = "budgetpilot"
	}
	if c.RateLimit.LoginAttempts <= 0 {
		c.RateLimit.LoginAttempts = 10
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
	c.RateLimit.Window = time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("配置未初始化，请先调用 LoadConfig")
	}
	return GlobalConfig
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("当前配置:")
	log.Printf("  服务器: %s (模式: %s, 服务名: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode, GlobalConfig.Server.ServiceName)
	log.Printf("  存储: %s", GlobalConfig.Database.Describe())
	log.Printf("  演示账号: %s", GlobalConfig.Auth.DemoEmail)
	log.Printf("  登录限流: %d 次 / %s", GlobalConfig.RateLimit.LoginAttempts, GlobalConfig.RateLimit.Window)
	log.Printf("  邮件服务: %v", GlobalConfig.Email.Enabled)
}

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ResolveDriver 解析实际使用的存储驱动
func (d DatabaseConfig) ResolveDriver() string {
	switch strings.ToLower(d.Driver) {
	case DriverMemory:
		return DriverMemory
	case DriverMySQL:
		return DriverMySQL
	case DriverPostgres, "postgresql", "pgx":
		return DriverPostgres
	}
	dsn := strings.TrimSpace(d.DSN)
	switch {
	case dsn == "":
		return DriverMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	default:
		return DriverMySQL
	}
}

// MySQLDSN 构建 MySQL 连接串；dsn 已配置时直接使用
func (d DatabaseConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	charset := d.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		charset,
	)
}

// Describe 存储描述（不含密码）
func (d DatabaseConfig) Describe() string {
	switch d.ResolveDriver() {
	case DriverMySQL:
		if d.DSN != "" {
			return "mysql (dsn)"
		}
		return fmt.Sprintf("mysql %s@%s:%s/%s", d.Username, d.Host, d.Port, d.DBName)
	case DriverPostgres:
		return "postgres (dsn)"
	default:
		return "memory (重启后数据丢失)"
	}
}
