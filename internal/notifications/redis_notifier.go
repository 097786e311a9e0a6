package notifications

import (
	"context"
	"encoding/json"
	"fmt"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Ping(ctx context.Context) error
}

// RedisNotifier publishes each notification as JSON on a pub/sub channel so
// other processes (a desktop helper, a bot) can show it.
type RedisNotifier struct {
	pub     Publisher
	channel string
}

func NewRedisNotifier(pub Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{pub: pub, channel: channel}
}

func (n *RedisNotifier) Send(ctx context.Context, in Notification) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := n.pub.Publish(ctx, n.channel, b); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// RequestPermission grants when Redis answers a ping.
func (n *RedisNotifier) RequestPermission(ctx context.Context) Permission {
	if err := n.pub.Ping(ctx); err != nil {
		return PermissionDenied
	}
	return PermissionGranted
}
