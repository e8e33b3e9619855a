// Package pricing computes tiered bundle discounts for a cart.
//
// The engine is total over arbitrary SKU lists: unknown SKUs, gifts outside
// the pool and gifts over the cap are dropped rather than reported. Only a
// malformed catalog (validated at load time) can make it fail.
package pricing

import (
	"sort"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"

	"github.com/shopspring/decimal"
)

// Result is a full pricing computation. Audit projects the signable subset.
type Result struct {
	LineItems        []domain.LineItem
	Totals           domain.Totals
	Tier             int
	Scope            domain.Scope
	PercentOff       int
	CourseCount      int
	GiftCountAllowed int
	GiftPoolSKUs     []string
	RuleVersion      string
	// SelectedGifts are the requested gifts that survived pool and cap checks.
	SelectedGifts []string
}

// Engine prices carts against one read-only catalog snapshot. It holds no
// mutable state and may be shared across goroutines.
type Engine struct {
	bySKU map[string]domain.Product
	cfg   domain.PricingConfig
	mode  money.RoundingMode
}

// NewEngine indexes products by SKU. mode overrides cfg.RoundingMode when set;
// with neither set the engine rounds half up.
func NewEngine(products []domain.Product, cfg domain.PricingConfig, mode money.RoundingMode) *Engine {
	bySKU := make(map[string]domain.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}
	if mode == "" {
		mode = cfg.RoundingMode
	}
	if mode == "" {
		mode = money.HalfUp
	}
	return &Engine{bySKU: bySKU, cfg: cfg, mode: mode}
}

// Price is the one-shot form of Engine.Price.
func Price(catalog []domain.Product, cfg domain.PricingConfig, mode money.RoundingMode, items, selectedGifts []string) Result {
	return NewEngine(catalog, cfg, mode).Price(items, selectedGifts)
}

// RoundingMode reports the mode the engine rounds with.
func (e *Engine) RoundingMode() money.RoundingMode { return e.mode }

type pricedLine struct {
	item     domain.LineItem
	group    int
	rank     int
	price    decimal.Decimal
	discount decimal.Decimal
}

const (
	groupCourse = iota
	groupOther
	groupGift
)

// Price computes line items, totals and tier metadata for a cart.
func (e *Engine) Price(items, selectedGifts []string) Result {
	products := make([]domain.Product, 0, len(items))
	courseCount := 0
	for _, sku := range items {
		p, ok := e.bySKU[sku]
		if !ok {
			continue
		}
		products = append(products, p)
		if p.CountsAsCourse() {
			courseCount++
		}
	}

	tierIdx, tier := e.applicableTier(courseCount)
	res := Result{
		Tier:          tierIdx,
		CourseCount:   courseCount,
		RuleVersion:   e.cfg.RuleVersion,
		GiftPoolSKUs:  []string{},
		SelectedGifts: []string{},
	}
	if tier != nil {
		res.Scope = tier.Scope
		res.PercentOff = tier.PercentOff
		res.GiftCountAllowed = tier.GiftCount
		res.GiftPoolSKUs = append(res.GiftPoolSKUs, tier.GiftPoolSKUs...)
		res.SelectedGifts = e.validGifts(selectedGifts, tier)
	}

	lines := make([]pricedLine, 0, len(products)+len(res.SelectedGifts))
	for _, p := range products {
		discount := decimal.Zero
		if tier != nil && tier.Applies(p.Type) {
			discount = money.MustRound(money.Percent(p.MSRP, tier.PercentOff), e.mode)
		}
		group := groupOther
		if p.Type == domain.ProductCourse {
			group = groupCourse
		}
		lines = append(lines, pricedLine{
			item: domain.LineItem{
				SKU:      p.SKU,
				Title:    p.Title,
				Type:     string(p.Type),
				MSRP:     e.format(p.MSRP),
				Price:    e.format(p.MSRP),
				Discount: e.format(discount),
				Net:      e.format(p.MSRP.Sub(discount)),
				Badges:   []string{badgeFor(p.Type)},
			},
			group:    group,
			rank:     p.Rank(),
			price:    p.MSRP,
			discount: discount,
		})
	}

	for _, sku := range res.SelectedGifts {
		p := e.bySKU[sku]
		lines = append(lines, pricedLine{
			item: domain.LineItem{
				SKU:      p.SKU,
				Title:    p.Title,
				Type:     string(domain.ProductGift),
				MSRP:     e.format(p.MSRP),
				Price:    e.format(decimal.Zero),
				Discount: e.format(p.MSRP),
				Net:      e.format(decimal.Zero),
				IsGift:   true,
				Badges:   []string{"Gift"},
			},
			group:    groupGift,
			price:    decimal.Zero,
			discount: p.MSRP,
		})
	}

	// Gifts all share rank 0, so the stable sort keeps their selection order.
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].group != lines[j].group {
			return lines[i].group < lines[j].group
		}
		return lines[i].rank < lines[j].rank
	})

	prices := make([]decimal.Decimal, 0, len(lines))
	discounts := make([]decimal.Decimal, 0, len(lines))
	res.LineItems = make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		if !l.item.IsGift {
			prices = append(prices, l.price)
		}
		discounts = append(discounts, l.discount)
		res.LineItems = append(res.LineItems, l.item)
	}
	subtotal, discountTotal := money.Sum(prices...), money.Sum(discounts...)
	res.Totals = domain.Totals{
		Subtotal: e.format(subtotal),
		Discount: e.format(discountTotal),
		// Gift MSRPs are part of the discount but not the subtotal, so the
		// difference can go below zero.
		Total: money.Format(money.RoundSigned(subtotal.Sub(discountTotal), e.mode)),
	}
	return res
}

// applicableTier picks the tier with the highest minCourses not above
// courseCount. On equal thresholds the earlier row wins. The returned index
// is 1-based; 0 means no tier applies.
func (e *Engine) applicableTier(courseCount int) (int, *domain.Tier) {
	best := -1
	for i, t := range e.cfg.Tiers {
		if t.MinCourses > courseCount {
			continue
		}
		if best < 0 || t.MinCourses > e.cfg.Tiers[best].MinCourses {
			best = i
		}
	}
	if best < 0 {
		return 0, nil
	}
	t := e.cfg.Tiers[best]
	return best + 1, &t
}

// validGifts keeps requested gifts that are in the pool and the catalog,
// drops repeats, and truncates to the tier's gift count.
func (e *Engine) validGifts(requested []string, tier *domain.Tier) []string {
	out := []string{}
	if tier.GiftCount <= 0 {
		return out
	}
	pool := make(map[string]struct{}, len(tier.GiftPoolSKUs))
	for _, sku := range tier.GiftPoolSKUs {
		pool[sku] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	for _, sku := range requested {
		if len(out) == tier.GiftCount {
			break
		}
		if _, ok := pool[sku]; !ok {
			continue
		}
		if _, dup := seen[sku]; dup {
			continue
		}
		if _, known := e.bySKU[sku]; !known {
			continue
		}
		seen[sku] = struct{}{}
		out = append(out, sku)
	}
	return out
}

func (e *Engine) format(amount decimal.Decimal) string {
	return money.Format(money.MustRound(amount, e.mode))
}

func badgeFor(t domain.ProductType) string {
	switch t {
	case domain.ProductCourse:
		return "Course"
	case domain.ProductAddon:
		return "Add-on"
	case domain.ProductGift:
		return "Gift"
	default:
		return "Item"
	}
}
