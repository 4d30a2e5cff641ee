package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrCacheDisabled = errors.New("cache disabled")

// Cache keys prefixes
const (
	RevokedTokenPrefix = "auth:revoked:"
)

// RedisCache holds short-lived auth state. A disabled cache accepts every
// write and reports nothing as revoked.
type RedisCache struct {
	client  *redis.Client
	enabled bool
	logger  *logrus.Logger
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(addr, password string, db, maxRetries, poolSize, minIdleConns int, logger *logrus.Logger, enabled bool) (*RedisCache, error) {
	if !enabled {
		logger.Info("Redis cache is disabled")
		return &RedisCache{
			enabled: false,
			logger:  logger,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   maxRetries,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Error("Failed to connect to Redis")
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"addr": addr,
		"db":   db,
	}).Info("Redis cache connected successfully")

	return &RedisCache{
		client:  client,
		enabled: true,
		logger:  logger,
	}, nil
}

// IsEnabled returns whether cache is enabled
func (c *RedisCache) IsEnabled() bool {
	return c.enabled
}

// Ping reports whether Redis is reachable. A disabled cache is always healthy.
func (c *RedisCache) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}

	c.logger.Info("Closing Redis connection")
	return c.client.Close()
}

func revokedTokenKey(tokenID string) string {
	return RevokedTokenPrefix + tokenID
}

// RevokeToken marks an access token id as logged out for ttl
func (c *RedisCache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}

	if err := c.client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("token_id", tokenID).Error("Failed to revoke token in cache")
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"token_id": tokenID,
		"ttl":      ttl,
	}).Debug("Revoked access token")
	return nil
}

// IsTokenRevoked reports whether the access token id was revoked
func (c *RedisCache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	n, err := c.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
