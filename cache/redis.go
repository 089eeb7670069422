package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"zencms/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient 是全局Redis客户端，为 nil 时缓存和变更广播全部降级为空操作
var RedisClient *redis.Client

// keyPrefix 所有键的公共前缀
const keyPrefix = "zencms:"

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	RedisClient = client
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RedisClient != nil {
		err := RedisClient.Close()
		RedisClient = nil
		return err
	}
	return nil
}

// ProbeRedis 写入、读取并删除一个探测键，验证连接可用
func ProbeRedis(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	key := keyPrefix + "probe"
	want := fmt.Sprintf("probe-%d", time.Now().UnixNano())

	if err := RedisClient.Set(ctx, key, want, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}

	got, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if got != want {
		return fmt.Errorf("unexpected value from Redis: got %s", got)
	}

	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}
	return nil
}
