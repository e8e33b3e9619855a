package domain

import (
	"bundle-checkout/internal/money"

	"github.com/shopspring/decimal"
)

// Scope decides which paid items a tier discounts.
type Scope string

const (
	ScopeCoursesOnly Scope = "courses_only"
	ScopeEntireCart  Scope = "entire_cart"
)

// Tier is one row of the bundle rule table.
type Tier struct {
	MinCourses   int      `json:"minCourses" yaml:"minCourses"`
	Scope        Scope    `json:"scope" yaml:"scope"`
	PercentOff   int      `json:"percentOff" yaml:"percentOff"`
	GiftCount    int      `json:"giftCount" yaml:"giftCount"`
	GiftPoolSKUs []string `json:"giftPoolSkus" yaml:"giftPoolSkus"`
}

// Applies reports whether the tier discounts a product of type pt.
func (t Tier) Applies(pt ProductType) bool {
	switch t.Scope {
	case ScopeEntireCart:
		return true
	case ScopeCoursesOnly:
		return pt == ProductCourse
	default:
		return false
	}
}

// PricingConfig is the tier table plus the settings echoed into audits.
type PricingConfig struct {
	Tiers        []Tier             `json:"tiers"`
	RoundingMode money.RoundingMode `json:"roundingMode"`
	RuleVersion  string             `json:"ruleVersion"`
}

// Flags toggles storefront features.
type Flags struct {
	BundlePromoEnabled bool               `json:"bundlePromoEnabled"`
	OTOEnabled         bool               `json:"otoEnabled"`
	RoundingMode       money.RoundingMode `json:"roundingMode"`
}

// Upsell describes the one-time post-checkout offer.
type Upsell struct {
	Enabled      bool            `json:"enabled"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	TimerMinutes int             `json:"timerMinutes"`
}
