// Package catalog loads the product list and bundle rules, validates them,
// and serves an immutable snapshot that is swapped atomically on reload.
package catalog

import (
	"fmt"
	"sort"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"
	"bundle-checkout/internal/pricing"
)

// Snapshot is one internally consistent view of catalog and rules. It is
// never mutated after construction.
type Snapshot struct {
	products []domain.Product
	rules    Rules
	engine   *pricing.Engine
}

// NewSnapshot validates products and rules together and builds the pricing
// engine. roundingOverride wins over the rule file when set.
func NewSnapshot(products []domain.Product, rules Rules, roundingOverride money.RoundingMode) (*Snapshot, error) {
	if err := ValidateProducts(products); err != nil {
		return nil, err
	}
	if err := validateReferences(rules, products); err != nil {
		return nil, err
	}
	if rules.Config.RuleVersion == "" {
		return nil, fmt.Errorf("%w: ruleVersion is required", ErrInvalidConfig)
	}

	mode := roundingOverride
	if mode == "" {
		mode = rules.Flags.RoundingMode
	}
	if mode == "" {
		mode = money.HalfUp
	}
	rules.Config.RoundingMode = mode
	rules.Flags.RoundingMode = mode

	engineCfg := rules.Config
	if !rules.Flags.BundlePromoEnabled {
		engineCfg.Tiers = nil
	}

	owned := append([]domain.Product(nil), products...)
	return &Snapshot{
		products: owned,
		rules:    rules,
		engine:   pricing.NewEngine(owned, engineCfg, mode),
	}, nil
}

// Engine prices carts against this snapshot.
func (s *Snapshot) Engine() *pricing.Engine { return s.engine }

// Config returns the pricing configuration as loaded.
func (s *Snapshot) Config() domain.PricingConfig { return s.rules.Config }

func (s *Snapshot) Flags() domain.Flags { return s.rules.Flags }

func (s *Snapshot) Upsell() domain.Upsell { return s.rules.Upsell }

// Products returns a copy of every catalog entry.
func (s *Snapshot) Products() []domain.Product {
	return append([]domain.Product(nil), s.products...)
}

// VisibleProducts lists storefront-visible products by sort order.
func (s *Snapshot) VisibleProducts() []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Visible {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() < out[j].Rank()
	})
	return out
}
