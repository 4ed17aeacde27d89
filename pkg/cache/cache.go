package cache

import (
	"context"
	"fmt"
	"time"

	"compliancehub/pkg/config"
	"compliancehub/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Client Redis缓存客户端。缓存不可用时所有操作降级为未命中，
// 调用方直接回源数据库，不影响请求成功与否。
type Client struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New 创建缓存客户端
func New(cfg *config.RedisConfig) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    5 * time.Minute,
	}
}

func (c *Client) key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get 读取缓存，未命中或Redis不可用返回false
func (c *Client) Get(ctx context.Context, parts ...string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, c.key(parts...)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().WithError(err).Debug("cache get failed, falling through to database")
		}
		return nil, false
	}
	return val, true
}

// Set 写入缓存，失败仅记录日志
func (c *Client) Set(ctx context.Context, val []byte, parts ...string) {
	if err := c.rdb.Set(ctx, c.key(parts...), val, c.ttl).Err(); err != nil {
		logger.GetLogger().WithError(err).Debug("cache set failed")
	}
}

// Delete 删除缓存项，用于租户开通/停用后的失效
func (c *Client) Delete(ctx context.Context, keys ...[]string) {
	full := make([]string, 0, len(keys))
	for _, parts := range keys {
		full = append(full, c.key(parts...))
	}
	if len(full) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		logger.GetLogger().WithError(err).Debug("cache delete failed")
	}
}

// Close 关闭Redis连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping 探测Redis可用性，仅用于启动日志
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
