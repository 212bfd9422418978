package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/config"
	"github.com/drafte-app/drafte-backend/internal/storage/postgres"
)

func OpenDB(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("db", postgres.Describe(cfg.DSN)), zap.Int32("max_conns", pool.Config().MaxConns))
	return pool, nil
}

// OpenRedis returns nil, nil when no address is configured.
func OpenRedis(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("redis disabled, using in-process locks")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis connected", zap.String("addr", cfg.Addr))
	return client, nil
}
