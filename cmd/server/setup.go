package main

import (
	"context"
	"fmt"
	"time"

	"forum-server/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectRetries    = 30
	connectRetryDelay = 2 * time.Second
)

// retry calls fn until it succeeds or the attempts run out.
func retry(log *zap.Logger, what string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			log.Info("Connected", zap.String("service", what), zap.Int("attempt", attempt))
			return nil
		}
		log.Warn("Connection failed, retrying...",
			zap.String("service", what),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectRetries),
			zap.Error(lastErr),
		)
		if attempt < connectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return fmt.Errorf("failed to connect to %s after %d attempts: %w", what, connectRetries, lastErr)
}

func setupPostgres(cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var pool *pgxpool.Pool
	err = retry(log, "postgres", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

func setupRedis(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	var client *redis.Client
	err := retry(log, "redis", func() error {
		c := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return err
		}
		client = c
		return nil
	})
	return client, err
}
