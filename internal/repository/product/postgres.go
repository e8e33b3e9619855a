package product

import (
	"context"
	"fmt"

	"bundle-checkout/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
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
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const selectColumns = `sku, title, type, msrp::text, sort_order, visible, counts_toward_threshold`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p    domain.Product
		typ  string
		msrp string
	)
	if err := row.Scan(&p.SKU, &p.Title, &typ, &msrp, &p.SortOrder, &p.Visible, &p.CountsTowardThreshold); err != nil {
		return domain.Product{}, err
	}
	amount, err := decimal.NewFromString(msrp)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: parse msrp %q: %w", p.SKU, msrp, err)
	}
	p.Type = domain.ProductType(typ)
	p.MSRP = amount
	return p, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + ` FROM products ORDER BY sku`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("listed products", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (sku, title, type, msrp, sort_order, visible, counts_toward_threshold)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
ON CONFLICT (sku) DO UPDATE SET
    title = EXCLUDED.title,
    type = EXCLUDED.type,
    msrp = EXCLUDED.msrp,
    sort_order = EXCLUDED.sort_order,
    visible = EXCLUDED.visible,
    counts_toward_threshold = EXCLUDED.counts_toward_threshold,
    updated_at = now()
RETURNING ` + selectColumns

	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.SKU,
		product.Title,
		string(product.Type),
		product.MSRP.String(),
		product.SortOrder,
		product.Visible,
		product.CountsTowardThreshold,
	))
	if err != nil {
		r.logger.Error("upsert failed", zap.String("sku", product.SKU), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted product", zap.String("sku", res.SKU))
	return &res, nil
}
