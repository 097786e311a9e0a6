package listener

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/redis/go-redis/v9"
)

// Subscriber is satisfied by *redisclient.Client.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

// Handler gets every decoded notification. It runs on the listener goroutine.
type Handler func(ctx context.Context, n notifications.Notification)

type Config struct {
	Channel string
}

// Listener follows the notification channel and hands each message to a Handler,
// resubscribing with backoff when the connection drops.
type Listener struct {
	cfg    Config
	sub    Subscriber
	handle Handler
	log    *slog.Logger

	ready        atomic.Bool
	shuttingDown atomic.Bool
	received     atomic.Uint64
}

func New(cfg Config, sub Subscriber, handle Handler, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{cfg: cfg, sub: sub, handle: handle, log: log}
}

func (l *Listener) Run(ctx context.Context) error {
	defer l.shuttingDown.Store(true)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		ps := l.sub.Subscribe(ctx, l.cfg.Channel)
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			l.ready.Store(false)

			delay := ExponentialBackoff(attempt)
			attempt++
			l.log.Warn("subscribe failed", "channel", l.cfg.Channel, "err", err, "retry_in", delay)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}

		attempt = 0
		l.ready.Store(true)
		l.log.Info("listening for notifications", "channel", l.cfg.Channel)

		l.Consume(ctx, ps.Channel())
		_ = ps.Close()
		l.ready.Store(false)
	}
}

// Consume drains msgs until the channel closes or ctx is done.
func (l *Listener) Consume(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var n notifications.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				l.log.Warn("bad notification payload", "channel", msg.Channel, "err", err)
				continue
			}

			l.received.Add(1)
			l.handle(ctx, n)
		}
	}
}

func (l *Listener) Ready() bool {
	return l.ready.Load() && !l.shuttingDown.Load()
}

func (l *Listener) Received() uint64 {
	return l.received.Load()
}

// LogHandler prints notifications the way a desktop popup would show them.
func LogHandler(log *slog.Logger) Handler {
	return func(ctx context.Context, n notifications.Notification) {
		log.InfoContext(ctx, n.Title,
			"body", n.Body,
			"kind", n.Kind,
			"audience", n.Audience,
			"notification_id", n.ID,
		)
	}
}
