package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/config"
)

// CachedUser is the contact snapshot the order flow needs.
type CachedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserCache is a read-through cache in front of UserRepository.
type UserCache interface {
	Get(ctx context.Context, userID string) (*CachedUser, error)
	Put(ctx context.Context, user *CachedUser) error
}

// RedisUserCache keeps CachedUser entries as JSON under "user:<id>".
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUserCache creates a new RedisUserCache.
func NewRedisUserCache(cfg config.RedisConfig) *RedisUserCache {
	return &RedisUserCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.UserTTL,
	}
}

func (c *RedisUserCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns ErrNotFound on a cache miss.
func (c *RedisUserCache) Get(ctx context.Context, userID string) (*CachedUser, error) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("user %s not cached: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached user %s: %w", userID, err)
	}
	var user CachedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user %s: %w", userID, err)
	}
	return &user, nil
}

func (c *RedisUserCache) Put(ctx context.Context, user *CachedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, userKey(user.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache user %s: %w", user.ID, err)
	}
	return nil
}

func (c *RedisUserCache) Close() error {
	return c.client.Close()
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}
