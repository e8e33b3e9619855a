package upsell

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis stores impressions as SETNX keys. A zero ttl keeps them forever.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger.Named("upsell_repo")}
}

func (r *redisRepo) key(visitorKey string) string {
	return fmt.Sprintf("upsell:shown:%s", visitorKey)
}

func (r *redisRepo) MarkShown(ctx context.Context, visitorKey string) (bool, error) {
	created, err := r.client.SetNX(ctx, r.key(visitorKey), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		r.logger.Error("mark shown failed", zap.Error(err))
		return false, err
	}
	return created, nil
}
