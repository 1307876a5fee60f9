package cache

import (
	"context"
	"fmt"
	"time"

	"printshop/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	webhookKeyPrefix = "webhook:event:"
	// 配送IDを覚えておく期間
	DefaultEventTTL = 24 * time.Hour
)

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// 処理済みの配送IDをTTLつきで覚える
type RedisEventDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisEventDeduper(rdb *redis.Client, ttl time.Duration) *RedisEventDeduper {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &RedisEventDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, webhookKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("cache/redis: exists %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (d *RedisEventDeduper) Mark(ctx context.Context, eventID string) error {
	if err := d.rdb.Set(ctx, webhookKeyPrefix+eventID, 1, d.ttl).Err(); err != nil {
		return fmt.Errorf("cache/redis: set %s: %w", eventID, err)
	}
	return nil
}

// redisなし（全部初回扱い）
type NoopEventDeduper struct{}

func (NoopEventDeduper) Seen(context.Context, string) (bool, error) { return false, nil }

func (NoopEventDeduper) Mark(context.Context, string) error { return nil }
