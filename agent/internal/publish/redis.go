package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smokesignal/smokesignal/agent/internal/config"
	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/pkg/wire"
)

const redisWriteTimeout = 5 * time.Second

// redisSetter is the subset of *redis.Client the publisher needs.
type redisSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisPublisher stores the status.json document under a single key.
type RedisPublisher struct {
	client redisSetter
	key    string
	ttl    time.Duration
}

// NewRedisPublisher parses the configured URL and builds a client. No
// connection is made until the first Publish.
func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, error) {
	url := cfg.ResolvedURL()
	if url == "" {
		return nil, fmt.Errorf("publish: redis url is empty (url_env %q unset?)", cfg.URLEnv)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("publish: parse redis url: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.WriteTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second

	return &RedisPublisher{
		client: redis.NewClient(opts),
		key:    cfg.Key,
		ttl:    cfg.TTL,
	}, nil
}

// Name implements Publisher.
func (r *RedisPublisher) Name() string { return "redis" }

// Publish SETs the encoded snapshot, replacing any previous value.
func (r *RedisPublisher) Publish(ctx context.Context, _ time.Time, snap types.Snapshot) error {
	data, err := wire.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisWriteTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("publish: redis set %q: %w", r.key, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
