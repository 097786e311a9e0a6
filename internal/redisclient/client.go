package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// NewFromRedis wraps an already configured go-redis client.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{redisdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// Publish sends payload on a pub/sub channel. The number of receivers is not
// checked: nobody listening is not an error.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.redisdb.Publish(ctx, channel, payload).Err()
}

// Subscribe is used by the notification listener command and by tests.
func (c *Client) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.redisdb.Subscribe(ctx, channel)
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}
