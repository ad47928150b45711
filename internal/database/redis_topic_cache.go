package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisTopicCache implements TopicCache
var _ interfaces.TopicCache = (*redisTopicCache)(nil)

const latestTopicsKeyPrefix = "forum:latest_topics:"

type redisTopicCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTopicCache creates a Redis-backed cache for latest-topic listings.
func NewRedisTopicCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.TopicCache {
	return &redisTopicCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisTopicCache"),
	}
}

func latestTopicsKey(limit int) string {
	return fmt.Sprintf("%s%d", latestTopicsKeyPrefix, limit)
}

func (c *redisTopicCache) GetLatest(ctx context.Context, limit int) ([]*models.TopicData, bool, error) {
	raw, err := c.client.Get(ctx, latestTopicsKey(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read latest topics from redis: %w", err)
	}

	var topics []*models.TopicData
	if err := json.Unmarshal(raw, &topics); err != nil {
		c.logger.Warn("Dropping undecodable latest topics entry", zap.Int("limit", limit), zap.Error(err))
		_ = c.client.Del(ctx, latestTopicsKey(limit)).Err()
		return nil, false, nil
	}
	return topics, true, nil
}

func (c *redisTopicCache) SetLatest(ctx context.Context, limit int, topics []*models.TopicData) error {
	raw, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("failed to encode latest topics: %w", err)
	}
	if err := c.client.Set(ctx, latestTopicsKey(limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write latest topics to redis: %w", err)
	}
	return nil
}

// Invalidate removes every cached limit variant.
func (c *redisTopicCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, latestTopicsKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan latest topics keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate latest topics: %w", err)
	}
	c.logger.Debug("Latest topics cache invalidated", zap.Int("keys", len(keys)))
	return nil
}
