package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	feedFirstPageKey = "feed:first_page"
	settingsKey      = "system_settings"

	feedTTL     = 60 * time.Second
	settingsTTL = 5 * time.Minute
)

// Cache wraps the redis client used for hot reads: the anonymous first
// feed page and the system settings map. A nil *Cache (or one built with
// no REDIS_HOST) is a no-op, so callers never branch on availability.
type Cache struct {
	client *redis.Client
}

func New(cfg *config.Config) *Cache {
	if cfg.RedisHost == "" {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("redis connection failed, cache disabled", "error", err)
		return &Cache{}
	}

	slog.Info("redis connected", "addr", cfg.RedisHost+":"+cfg.RedisPort)
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (c *Cache) set(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		slog.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) del(ctx context.Context, keys ...string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Error("cache invalidation failed", "error", err)
	}
}

func (c *Cache) GetFeedFirstPage(ctx context.Context, dest interface{}) bool {
	return c.get(ctx, feedFirstPageKey, dest)
}

func (c *Cache) SetFeedFirstPage(ctx context.Context, page interface{}) {
	c.set(ctx, feedFirstPageKey, page, feedTTL)
}

// InvalidateFeed drops the cached first page; called on every diary write.
func (c *Cache) InvalidateFeed(ctx context.Context) {
	c.del(ctx, feedFirstPageKey)
}

func (c *Cache) GetSettings(ctx context.Context, dest interface{}) bool {
	return c.get(ctx, settingsKey, dest)
}

func (c *Cache) SetSettings(ctx context.Context, settings interface{}) {
	c.set(ctx, settingsKey, settings, settingsTTL)
}

func (c *Cache) InvalidateSettings(ctx context.Context) {
	c.del(ctx, settingsKey)
}
