package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// ProductType classifies catalog entries for discounting and ordering.
type ProductType string

const (
	ProductCourse ProductType = "course"
	ProductAddon  ProductType = "addon"
	ProductGift   ProductType = "gift"
)

// UnsortedRank is the rank of products without an explicit sort order.
const UnsortedRank = math.MaxInt32

// Product is an immutable catalog entry.
type Product struct {
	SKU                   string          `json:"sku" yaml:"sku"`
	Title                 string          `json:"title" yaml:"title"`
	Type                  ProductType     `json:"type" yaml:"type"`
	MSRP                  decimal.Decimal `json:"msrp" yaml:"msrp"`
	SortOrder             *int            `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Visible               bool            `json:"visible" yaml:"visible"`
	CountsTowardThreshold *bool           `json:"countsTowardThreshold,omitempty" yaml:"countsTowardThreshold,omitempty"`
}

// CountsAsCourse reports whether one unit of p counts toward a tier's
// minimum course threshold. Courses count unless explicitly opted out.
func (p Product) CountsAsCourse() bool {
	if p.Type != ProductCourse {
		return false
	}
	return p.CountsTowardThreshold == nil || *p.CountsTowardThreshold
}

// Rank is the display/tie-break position; missing sort orders go last.
func (p Product) Rank() int {
	if p.SortOrder == nil {
		return UnsortedRank
	}
	return *p.SortOrder
}
