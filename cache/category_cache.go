package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zencms/logger"
	"zencms/model"

	"github.com/go-redis/redis/v8"
)

const (
	categoryListKey = keyPrefix + "categories:all"
	categoryListTTL = 10 * time.Minute
)

// CategoryCache 分类列表缓存，任何分类写入后整体失效
type CategoryCache struct {
	client *redis.Client
}

// NewCategoryCache 使用全局客户端创建分类缓存
func NewCategoryCache() *CategoryCache {
	return &CategoryCache{client: RedisClient}
}

// NewCategoryCacheWithClient 使用指定客户端创建分类缓存
func NewCategoryCacheWithClient(client *redis.Client) *CategoryCache {
	return &CategoryCache{client: client}
}

// Get 读取缓存的分类列表，未命中时 ok 为 false
func (c *CategoryCache) Get(ctx context.Context) ([]*model.Category, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, categoryListKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var categories []*model.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached categories: %w", err)
	}
	return categories, true, nil
}

// Set 写入分类列表
func (c *CategoryCache) Set(ctx context.Context, categories []*model.Category) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	return c.client.Set(ctx, categoryListKey, data, categoryListTTL).Err()
}

// Invalidate 使分类列表缓存失效
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, categoryListKey).Err(); err != nil {
		logger.Warn("分类缓存失效失败", logger.ErrorField(err))
	}
}
