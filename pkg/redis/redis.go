// Package redis 可选的 Redis 旁路存储：在线状态、好友ID缓存与离线通知。
// 未初始化时所有操作返回 ErrNotInitialized，调用方据此降级。
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-system/config"

	"github.com/redis/go-redis/v9"
)

// 单次操作超时，Redis 变慢时不拖住请求
const opTimeout = time.Second

var client *redis.Client

// ErrNotInitialized Redis 未启用或未初始化
var ErrNotInitialized = errors.New("redis客户端未初始化")

// NewClient 按配置创建客户端（不做连通性检查）
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// InitRedis 连接 Redis，Ping 成功后才启用全局客户端
func InitRedis(cfg config.RedisConfig) error {
	c := NewClient(cfg)

	ctx, cancel := opContext()
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis连接失败: %w", err)
	}

	client = c
	return nil
}

// UseClient 替换全局客户端（测试时注入 miniredis）
func UseClient(c *redis.Client) {
	client = c
}

// Enabled Redis 是否可用
func Enabled() bool {
	return client != nil
}

// Close 关闭并停用全局客户端
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// HealthCheck 检查Redis健康状态
func HealthCheck() error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis连接异常: %w", err)
	}
	return nil
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// del 删除若干键
func del(keys ...string) error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()
	return client.Del(ctx, keys...).Err()
}
