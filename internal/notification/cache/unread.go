// Package cache keeps per-user unread notification counts in Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

const (
	unreadKeyPrefix  = "loanflow:notifications:unread:"
	defaultUnreadTTL = 30 * time.Second
)

// RedisUnreadCache caches unread counts with a short TTL. Writers invalidate
// the affected users instead of updating counts in place.
type RedisUnreadCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

type Option func(*RedisUnreadCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisUnreadCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedisUnreadCache(client redis.Cmdable, opts ...Option) *RedisUnreadCache {
	c := &RedisUnreadCache{client: client, ttl: defaultUnreadTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached count and whether it was present.
func (c *RedisUnreadCache) Get(ctx context.Context, userID id.UserID) (int, bool, error) {
	n, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *RedisUnreadCache) Set(ctx context.Context, userID id.UserID, count int) error {
	return c.client.Set(ctx, unreadKey(userID), count, c.ttl).Err()
}

// Invalidate drops the cached counts for every user in one round trip.
func (c *RedisUnreadCache) Invalidate(ctx context.Context, userIDs ...id.UserID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, u := range userIDs {
		keys = append(keys, unreadKey(u))
	}
	return c.client.Del(ctx, keys...).Err()
}

func unreadKey(userID id.UserID) string {
	return unreadKeyPrefix + userID.String()
}
