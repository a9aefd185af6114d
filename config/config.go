package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "config/config.yaml"

// Config 应用配置
// 加载顺序：内置默认值 → YAML 文件 → .env → 环境变量（优先级依次升高）
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" env:"SERVER_IDLE_TIMEOUT"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"` // mysql / postgres / sqlite
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Username string `yaml:"username" env:"DB_USERNAME"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_DATABASE"` // sqlite 时为文件路径或 :memory:
	Charset  string `yaml:"charset" env:"DB_CHARSET"`
	MaxIdle  int    `yaml:"maxIdle" env:"DB_MAX_IDLE"`
	MaxOpen  int    `yaml:"maxOpen" env:"DB_MAX_OPEN"`
	LogLevel string `yaml:"logLevel" env:"DB_LOG_LEVEL"` // silent / error / warn / info
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	ExpireTime time.Duration `yaml:"expireTime" env:"JWT_EXPIRE_TIME"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Filename   string `yaml:"filename" env:"LOG_FILENAME"`
	MaxSize    int    `yaml:"maxSize" env:"LOG_MAX_SIZE"`       // MB
	MaxBackups int    `yaml:"maxBackups" env:"LOG_MAX_BACKUPS"` // 保留的旧文件数
	MaxAge     int    `yaml:"maxAge" env:"LOG_MAX_AGE"`         // 天
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
	Console    bool   `yaml:"console" env:"LOG_CONSOLE"` // 同时输出到控制台
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"WS_PING_INTERVAL"`
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"WS_READ_TIMEOUT"` // 超过该时长未收到任何数据则断开
}

// RateLimitConfig 按用户限流配置（好友申请、聊天消息）
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond" env:"RATE_LIMIT_RPS"` // <=0 表示不限流
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	FriendTTL time.Duration `yaml:"friendTTL" env:"FRIEND_CACHE_TTL"`
}

// LoadConfig 从默认路径加载配置
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigPath)
}

// LoadConfigFrom 从指定路径加载配置，文件不存在时使用默认值
func LoadConfigFrom(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", filePath, err)
	default:
		// 在默认配置之上解析，文件中缺失的字段保留默认值
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filePath, err)
		}
	}

	// .env 不存在则忽略，且不覆盖已存在的环境变量
	_ = godotenv.Load()

	// 只覆盖设置了的环境变量
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default 内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "social_user",
			Database: "social_system",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
			LogLevel: "warn",
		},
		JWT: JWTConfig{
			Secret:     "your-secret-key",
			ExpireTime: 24 * time.Hour,
			Issuer:     "social-system",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Cache: CacheConfig{
			FriendTTL: 10 * time.Minute,
		},
	}
}
