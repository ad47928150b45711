package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisTokenRepository implements TokenRepository
var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func accessTokenKey(tokenID string) string {
	return fmt.Sprintf("forum:access_token:%s", tokenID)
}

func userTokensKey(userID int64) string {
	return fmt.Sprintf("forum:user_tokens:%d", userID)
}

// SetToken stores tokenID -> userID with the token's remaining lifetime and
// indexes the id in the user's token set.
func (r *redisTokenRepository) SetToken(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	key := accessTokenKey(tokenID)
	setKey := userTokensKey(userID)
	r.logger.Debug("Setting token in Redis", zap.Int64("userID", userID), zap.String("tokenID", tokenID), zap.Duration("ttl", ttl))

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, strconv.FormatInt(userID, 10), ttl)
	pipe.SAdd(ctx, setKey, tokenID)
	// Tokens share one TTL, so the newest one outlives the rest of the set.
	pipe.Expire(ctx, setKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to set token in redis", zap.Int64("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to set token in redis: %w", err)
	}
	return nil
}

// GetUserIDByTokenID resolves a live token id to its user.
func (r *redisTokenRepository) GetUserIDByTokenID(ctx context.Context, tokenID string) (int64, error) {
	val, err := r.client.Get(ctx, accessTokenKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.String("tokenID", tokenID), zap.Error(err))
		return 0, fmt.Errorf("failed to get token from redis: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		r.logger.Error("Corrupted user id stored for token", zap.String("tokenID", tokenID), zap.String("value", val))
		return 0, fmt.Errorf("invalid user id stored for token %s: %w", tokenID, err)
	}
	return userID, nil
}

// DeleteToken revokes tokenID.
func (r *redisTokenRepository) DeleteToken(ctx context.Context, tokenID string) (int64, error) {
	key := accessTokenKey(tokenID)
	owner, err := r.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to read token owner from redis", zap.String("tokenID", tokenID), zap.Error(err))
		return 0, fmt.Errorf("failed to read token from redis: %w", err)
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, key)
	if userID, parseErr := strconv.ParseInt(owner, 10, 64); parseErr == nil {
		pipe.SRem(ctx, userTokensKey(userID), tokenID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete token from redis", zap.String("tokenID", tokenID), zap.Error(err))
		return 0, fmt.Errorf("failed to delete token from redis: %w", err)
	}
	r.logger.Debug("Token deleted from Redis", zap.String("tokenID", tokenID), zap.Int64("deleted", del.Val()))
	return del.Val(), nil
}

// DeleteTokensByUserID revokes every token issued to userID.
func (r *redisTokenRepository) DeleteTokensByUserID(ctx context.Context, userID int64) (int64, error) {
	log := r.logger.With(zap.Int64("userID", userID))
	setKey := userTokensKey(userID)

	tokenIDs, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error("Failed to list user tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to list tokens for user %d: %w", userID, err)
	}
	if len(tokenIDs) == 0 {
		log.Debug("No tokens to revoke")
		return 0, nil
	}

	keys := make([]string, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		keys = append(keys, accessTokenKey(id))
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.Del(ctx, setKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("Failed to revoke user tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to revoke tokens for user %d: %w", userID, err)
	}
	log.Info("User tokens revoked", zap.Int64("deleted", del.Val()))
	return del.Val(), nil
}
