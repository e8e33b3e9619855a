package seed

import (
	"context"
	"fmt"

	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	SKU       string
	Title     string
	Type      domain.ProductType
	MSRP      string
	SortOrder *int
	Visible   bool
	Counts    *bool
}

func order(n int) *int { return &n }

func flag(b bool) *bool { return &b }

var demoCatalog = []productSeed{
	{SKU: "COURSE-GO-101", Title: "Go Fundamentals", Type: domain.ProductCourse, MSRP: "100.00", SortOrder: order(1), Visible: true},
	{SKU: "COURSE-GO-201", Title: "Concurrency in Practice", Type: domain.ProductCourse, MSRP: "80.00", SortOrder: order(2), Visible: true},
	{SKU: "COURSE-SQL-101", Title: "SQL for Services", Type: domain.ProductCourse, MSRP: "60.00", SortOrder: order(3), Visible: true},
	{SKU: "COURSE-OPS-101", Title: "Shipping to Production", Type: domain.ProductCourse, MSRP: "90.00", SortOrder: order(4), Visible: true},
	{SKU: "COURSE-PREVIEW", Title: "Free Preview Lesson", Type: domain.ProductCourse, MSRP: "0.00", SortOrder: order(5), Visible: true, Counts: flag(false)},
	{SKU: "ADDON-WORKBOOK", Title: "Printed Workbook", Type: domain.ProductAddon, MSRP: "25.00", SortOrder: order(10), Visible: true},
	{SKU: "ADDON-MENTOR", Title: "1:1 Mentor Session", Type: domain.ProductAddon, MSRP: "49.00", SortOrder: order(11), Visible: false},
	{SKU: "GIFT-CHEATSHEET", Title: "Cheat Sheet Pack", Type: domain.ProductGift, MSRP: "20.00"},
	{SKU: "GIFT-TEMPLATES", Title: "Project Templates", Type: domain.ProductGift, MSRP: "30.00"},
	{SKU: "GIFT-COMMUNITY", Title: "Community Access (1 year)", Type: domain.ProductGift, MSRP: "40.00"},
}

// Products returns the demo bundle catalog.
func Products() []domain.Product {
	out := make([]domain.Product, 0, len(demoCatalog))
	for _, s := range demoCatalog {
		out = append(out, domain.Product{
			SKU:                   s.SKU,
			Title:                 s.Title,
			Type:                  s.Type,
			MSRP:                  decimal.RequireFromString(s.MSRP),
			SortOrder:             s.SortOrder,
			Visible:               s.Visible,
			CountsTowardThreshold: s.Counts,
		})
	}
	return out
}

// Apply upserts the demo catalog. It is idempotent.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	products := Products()
	if err := catalog.ValidateProducts(products); err != nil {
		return 0, err
	}
	for i, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}
	return len(products), nil
}
