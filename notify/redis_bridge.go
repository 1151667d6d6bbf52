package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const notificationsChannel = "tournament:notifications"

// RedisBridge разносит уведомления между инстансами через Redis pub/sub.
type RedisBridge struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBridge(client *redis.Client, logger *slog.Logger) *RedisBridge {
	return &RedisBridge{client: client, logger: logger}
}

func (b *RedisBridge) Publish(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return b.client.Publish(ctx, notificationsChannel, body).Err()
}

// Subscribe подписывается на общий канал уведомлений и вызывает handler
// для каждого события. Горутина подписки живёт до закрытия клиента Redis.
func (b *RedisBridge) Subscribe(handler func(n Notification)) error {
	ctx := context.Background()
	pubsub := b.client.Subscribe(ctx, notificationsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", notificationsChannel, err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for msg := range ch {
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Warn("dropping malformed notification payload", slog.Any("error", err))
				continue
			}
			handler(n)
		}
	}()
	return nil
}
