package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"zencms/logger"
	"zencms/model"

	"github.com/go-redis/redis/v8"
)

// ChangesChannel 变更事件的发布频道
const ChangesChannel = keyPrefix + "changes"

// EventBus 通过 Redis 发布订阅在多个服务实例之间传递变更事件
type EventBus struct {
	client *redis.Client
}

// NewEventBus 使用全局客户端创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{client: RedisClient}
}

// NewEventBusWithClient 使用指定客户端创建事件总线
func NewEventBusWithClient(client *redis.Client) *EventBus {
	return &EventBus{client: client}
}

// Notify 发布变更事件，失败只记录日志
func (b *EventBus) Notify(ctx context.Context, evt model.ChangeEvent) {
	if err := b.publish(ctx, evt); err != nil {
		logger.Warn("发布变更事件失败",
			logger.String("collection", evt.Collection),
			logger.String("action", evt.Action),
			logger.ErrorField(err))
	}
}

func (b *EventBus) publish(ctx context.Context, evt model.ChangeEvent) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	return b.client.Publish(ctx, ChangesChannel, data).Err()
}

// Subscribe 订阅变更事件并逐条交给 handler，直到 ctx 结束
func (b *EventBus) Subscribe(ctx context.Context, handler func(model.ChangeEvent)) error {
	return b.subscribe(ctx, nil, handler)
}

// subscribe 订阅确认后调用 ready
func (b *EventBus) subscribe(ctx context.Context, ready func(), handler func(model.ChangeEvent)) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	pubsub := b.client.Subscribe(ctx, ChangesChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", ChangesChannel, err)
	}
	logger.Info("已订阅变更频道", logger.String("channel", ChangesChannel))
	if ready != nil {
		ready()
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				logger.Warn("无效的变更事件", logger.ErrorField(err))
				continue
			}
			handler(evt)
		}
	}
}

// LocalSink 本实例内接收变更事件的一方，通常是变更推送 Hub
type LocalSink interface {
	Notify(ctx context.Context, evt model.ChangeEvent)
}

// Relay 把服务层的变更经 Redis 广播给所有实例，再转给本地 Hub。
// 订阅不可用时事件直接交给本地 Hub，并每隔 retry 重新订阅。
type Relay struct {
	bus   *EventBus
	local LocalSink
	retry time.Duration
	live  atomic.Bool
}

// NewRelay 创建中继，Run 之前事件只在本地投递
func NewRelay(bus *EventBus, local LocalSink, retry time.Duration) *Relay {
	return &Relay{bus: bus, local: local, retry: retry}
}

// Notify 订阅正常时经 Redis 发布，否则或发布失败时直接投递给本地
func (r *Relay) Notify(ctx context.Context, evt model.ChangeEvent) {
	if r.live.Load() {
		err := r.bus.publish(ctx, evt)
		if err == nil {
			return
		}
		logger.Warn("发布变更事件失败，改为本地投递",
			logger.String("collection", evt.Collection),
			logger.String("action", evt.Action),
			logger.ErrorField(err))
	}
	r.local.Notify(ctx, evt)
}

// Live 订阅当前是否可用
func (r *Relay) Live() bool {
	return r.live.Load()
}

// Run 维持订阅直到 ctx 结束，订阅中断后按 retry 间隔重连
func (r *Relay) Run(ctx context.Context) {
	for {
		err := r.bus.subscribe(ctx,
			func() { r.live.Store(true) },
			func(evt model.ChangeEvent) { r.local.Notify(ctx, evt) })
		r.live.Store(false)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("变更频道订阅中断，暂时改为本地投递",
			logger.Duration("retry", r.retry),
			logger.ErrorField(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry):
		}
	}
}
