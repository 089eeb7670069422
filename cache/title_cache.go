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
	currentTitleKey = keyPrefix + "titles:current"
	currentTitleTTL = time.Minute
)

// currentTitleEntry 缓存内容，Title 为空表示该分钟没有匹配的标题
type currentTitleEntry struct {
	Minute int          `json:"minute"`
	Title  *model.Title `json:"title"`
}

// TitleCache 当前标题缓存，只对同一分钟内的查询生效
type TitleCache struct {
	client *redis.Client
}

// NewTitleCache 使用全局客户端创建标题缓存
func NewTitleCache() *TitleCache {
	return &TitleCache{client: RedisClient}
}

// NewTitleCacheWithClient 使用指定客户端创建标题缓存
func NewTitleCacheWithClient(client *redis.Client) *TitleCache {
	return &TitleCache{client: client}
}

// GetCurrent 读取 minute 对应的当前标题
func (c *TitleCache) GetCurrent(ctx context.Context, minute int) (*model.Title, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, currentTitleKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entry currentTitleEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached title: %w", err)
	}
	if entry.Minute != minute {
		return nil, false, nil
	}
	return entry.Title, true, nil
}

// SetCurrent 缓存 minute 对应的当前标题
func (c *TitleCache) SetCurrent(ctx context.Context, minute int, title *model.Title) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(currentTitleEntry{Minute: minute, Title: title})
	if err != nil {
		return fmt.Errorf("failed to marshal title: %w", err)
	}
	return c.client.Set(ctx, currentTitleKey, data, currentTitleTTL).Err()
}

// Invalidate 标题写入后调用
func (c *TitleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, currentTitleKey).Err(); err != nil {
		logger.Warn("标题缓存失效失败", logger.ErrorField(err))
	}
}
