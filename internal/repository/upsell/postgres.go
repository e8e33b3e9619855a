package upsell

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("upsell_repo")}
}

func (r *postgresRepo) MarkShown(ctx context.Context, visitorKey string) (bool, error) {
	const q = `
INSERT INTO upsell_impressions (visitor_key)
VALUES ($1)
ON CONFLICT (visitor_key) DO NOTHING
`
	tag, err := r.pool.Exec(ctx, q, visitorKey)
	if err != nil {
		r.logger.Error("mark shown failed", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
