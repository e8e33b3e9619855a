package product

import (
	"context"

	"bundle-checkout/internal/domain"
)

type Repository interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
