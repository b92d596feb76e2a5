package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"techmart/pkg/logger"
)

// Cache redis 读穿缓存的薄封装
// client 为 nil 时所有操作退化为未命中，不影响主流程
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache 创建缓存。addr 为空返回可用但永不命中的实例
func NewCache(addr, password string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return &Cache{}
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// GetJSON 读缓存并反序列化，未启用/未命中/解析失败都返回 false
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.L.Warn("缓存内容解析失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON 写缓存，尽力而为
func (c *Cache) SetJSON(ctx context.Context, key string, val interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.L.Warn("缓存写入失败", zap.String("key", key), zap.Error(err))
	}
}

// Delete 删除缓存键
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.L.Warn("缓存删除失败", zap.Strings("keys", keys), zap.Error(err))
	}
}
