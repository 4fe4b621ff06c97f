package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/trio-connect/internal/config"
)

// pendingCountTTL bounds how stale a cached inbox count can get if an
// invalidation is lost.
const pendingCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// BrowseSession is the candidate snapshot a user walks through. The position
// inside it travels with the client's browse token.
type BrowseSession struct {
	Filter     string  `json:"filter"`
	Candidates []int64 `json:"candidates"`
}

// KeyForBrowse generates the Redis key for a user's browse snapshot.
func (c *RedisCache) KeyForBrowse(userID int64) string {
	return fmt.Sprintf("browse:session:%d", userID)
}

// SaveBrowse replaces the user's snapshot.
func (c *RedisCache) SaveBrowse(ctx context.Context, userID int64, s BrowseSession, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.KeyForBrowse(userID), raw, ttl).Err()
}

// LoadBrowse returns the snapshot, or ok=false when it expired or never existed.
func (c *RedisCache) LoadBrowse(ctx context.Context, userID int64, ttl time.Duration) (BrowseSession, bool, error) {
	key := c.KeyForBrowse(userID)
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return BrowseSession{}, false, nil
	} else if err != nil {
		return BrowseSession{}, false, err
	}

	var s BrowseSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return BrowseSession{}, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, ttl).Err()
	return s, true, nil
}

// DropBrowse forgets the user's snapshot.
func (c *RedisCache) DropBrowse(ctx context.Context, userID int64) error {
	return c.Client.Del(ctx, c.KeyForBrowse(userID)).Err()
}

// KeyForPendingCount generates the Redis key for a user's pending inbox count.
func (c *RedisCache) KeyForPendingCount(userID int64) string {
	return fmt.Sprintf("requests:pending:%d", userID)
}

func (c *RedisCache) SetPendingCount(ctx context.Context, userID int64, count int64) error {
	return c.Client.Set(ctx, c.KeyForPendingCount(userID), count, pendingCountTTL).Err()
}

// GetPendingCount returns the cached count; ok is false on a cache miss.
func (c *RedisCache) GetPendingCount(ctx context.Context, userID int64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForPendingCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// InvalidatePendingCount drops the cached count so the next read hits the DB.
func (c *RedisCache) InvalidatePendingCount(ctx context.Context, userID int64) error {
	return c.Client.Del(ctx, c.KeyForPendingCount(userID)).Err()
}
