package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig wraps every catalog or rule validation failure.
var ErrInvalidConfig = errors.New("invalid bundle configuration")

// Rules is the parsed rule file: tier table, flags and upsell offer.
type Rules struct {
	Config domain.PricingConfig
	Flags  domain.Flags
	Upsell domain.Upsell
}

type rawRules struct {
	RuleVersion any        `json:"ruleVersion" yaml:"ruleVersion"`
	Tiers       []rawTier  `json:"tiers" yaml:"tiers"`
	Flags       rawFlags   `json:"flags" yaml:"flags"`
	Upsell      *rawUpsell `json:"upsell" yaml:"upsell"`
}

type rawTier struct {
	MinCourses   *int     `json:"minCourses" yaml:"minCourses"`
	Scope        *string  `json:"scope" yaml:"scope"`
	PercentOff   *int     `json:"percentOff" yaml:"percentOff"`
	GiftCount    *int     `json:"giftCount" yaml:"giftCount"`
	GiftPoolSKUs []string `json:"giftPoolSkus" yaml:"giftPoolSkus"`
}

type rawFlags struct {
	BundlePromoEnabled *bool  `json:"bundlePromoEnabled" yaml:"bundlePromoEnabled"`
	OTOEnabled         *bool  `json:"otoEnabled" yaml:"otoEnabled"`
	RoundingMode       string `json:"roundingMode" yaml:"roundingMode"`
}

type rawUpsell struct {
	Enabled      bool             `json:"enabled" yaml:"enabled"`
	SKU          string           `json:"sku" yaml:"sku"`
	Price        *decimal.Decimal `json:"price" yaml:"price"`
	TimerMinutes int              `json:"timerMinutes" yaml:"timerMinutes"`
}

type rawProduct struct {
	SKU                   string           `json:"sku" yaml:"sku"`
	Title                 string           `json:"title" yaml:"title"`
	Type                  string           `json:"type" yaml:"type"`
	MSRP                  *decimal.Decimal `json:"msrp" yaml:"msrp"`
	SortOrder             *int             `json:"sortOrder" yaml:"sortOrder"`
	Visible               *bool            `json:"visible" yaml:"visible"`
	CountsTowardThreshold *bool            `json:"countsTowardThreshold" yaml:"countsTowardThreshold"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (r rawRules) toRules() (Rules, error) {
	version, err := ruleVersionString(r.RuleVersion)
	if err != nil {
		return Rules{}, err
	}

	mode, err := money.ParseRoundingMode(r.Flags.RoundingMode)
	if err != nil {
		return Rules{}, invalid("flags.roundingMode: %v", err)
	}

	tiers := make([]domain.Tier, 0, len(r.Tiers))
	seen := make(map[int]int, len(r.Tiers))
	for i, rt := range r.Tiers {
		t, err := rt.toTier(i)
		if err != nil {
			return Rules{}, err
		}
		if prev, dup := seen[t.MinCourses]; dup {
			return Rules{}, invalid("tiers[%d]: minCourses %d already used by tiers[%d]", i, t.MinCourses, prev)
		}
		seen[t.MinCourses] = i
		tiers = append(tiers, t)
	}

	out := Rules{
		Config: domain.PricingConfig{
			Tiers:        tiers,
			RoundingMode: mode,
			RuleVersion:  version,
		},
		Flags: domain.Flags{
			BundlePromoEnabled: boolOr(r.Flags.BundlePromoEnabled, true),
			OTOEnabled:         boolOr(r.Flags.OTOEnabled, true),
			RoundingMode:       mode,
		},
	}
	if r.Upsell != nil {
		u := domain.Upsell{
			Enabled:      r.Upsell.Enabled,
			SKU:          strings.TrimSpace(r.Upsell.SKU),
			TimerMinutes: r.Upsell.TimerMinutes,
		}
		if r.Upsell.Price != nil {
			u.Price = *r.Upsell.Price
		}
		if u.Enabled {
			if u.SKU == "" {
				return Rules{}, invalid("upsell.sku is required when upsell is enabled")
			}
			if r.Upsell.Price == nil || u.Price.IsNegative() {
				return Rules{}, invalid("upsell.price must be a non-negative amount")
			}
			if u.TimerMinutes < 0 {
				return Rules{}, invalid("upsell.timerMinutes must not be negative")
			}
		}
		out.Upsell = u
	}
	return out, nil
}

func (rt rawTier) toTier(i int) (domain.Tier, error) {
	if rt.MinCourses == nil {
		return domain.Tier{}, invalid("tiers[%d].minCourses is required", i)
	}
	if rt.Scope == nil {
		return domain.Tier{}, invalid("tiers[%d].scope is required", i)
	}
	if rt.PercentOff == nil {
		return domain.Tier{}, invalid("tiers[%d].percentOff is required", i)
	}
	t := domain.Tier{
		MinCourses:   *rt.MinCourses,
		Scope:        domain.Scope(*rt.Scope),
		PercentOff:   *rt.PercentOff,
		GiftPoolSKUs: []string{},
	}
	if rt.GiftCount != nil {
		t.GiftCount = *rt.GiftCount
	}
	t.GiftPoolSKUs = append(t.GiftPoolSKUs, rt.GiftPoolSKUs...)

	switch {
	case t.MinCourses < 0:
		return domain.Tier{}, invalid("tiers[%d].minCourses must not be negative", i)
	case t.Scope != domain.ScopeCoursesOnly && t.Scope != domain.ScopeEntireCart:
		return domain.Tier{}, invalid("tiers[%d].scope %q is not courses_only or entire_cart", i, t.Scope)
	case t.PercentOff < 0 || t.PercentOff > 100:
		return domain.Tier{}, invalid("tiers[%d].percentOff %d outside 0-100", i, t.PercentOff)
	case t.GiftCount < 0:
		return domain.Tier{}, invalid("tiers[%d].giftCount must not be negative", i)
	}
	return t, nil
}

func (rp rawProduct) toProduct(i int) (domain.Product, error) {
	sku := strings.TrimSpace(rp.SKU)
	if sku == "" {
		return domain.Product{}, invalid("products[%d].sku is required", i)
	}
	if strings.TrimSpace(rp.Type) == "" {
		return domain.Product{}, invalid("product %s: type is required", sku)
	}
	if rp.MSRP == nil {
		return domain.Product{}, invalid("product %s: msrp is required", sku)
	}
	if err := validateMSRP(sku, *rp.MSRP); err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		SKU:                   sku,
		Title:                 rp.Title,
		Type:                  domain.ProductType(strings.TrimSpace(rp.Type)),
		MSRP:                  *rp.MSRP,
		SortOrder:             rp.SortOrder,
		Visible:               boolOr(rp.Visible, false),
		CountsTowardThreshold: rp.CountsTowardThreshold,
	}, nil
}

func validateMSRP(sku string, msrp decimal.Decimal) error {
	if msrp.IsNegative() {
		return invalid("product %s: msrp %s is negative", sku, msrp.String())
	}
	if !msrp.Equal(msrp.Truncate(money.Scale)) {
		return invalid("product %s: msrp %s has more than %d fractional digits", sku, msrp.String(), money.Scale)
	}
	return nil
}

// ValidateProducts checks catalog-wide invariants on already-typed products,
// such as those read from the database.
func ValidateProducts(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.SKU) == "" {
			return invalid("products[%d].sku is required", i)
		}
		if _, dup := seen[p.SKU]; dup {
			return invalid("duplicate sku %s", p.SKU)
		}
		seen[p.SKU] = struct{}{}
		if p.Type == "" {
			return invalid("product %s: type is required", p.SKU)
		}
		if err := validateMSRP(p.SKU, p.MSRP); err != nil {
			return err
		}
	}
	return nil
}

// validateReferences checks that every SKU the rules mention exists.
func validateReferences(rules Rules, products []domain.Product) error {
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.SKU] = struct{}{}
	}
	for i, t := range rules.Config.Tiers {
		for _, sku := range t.GiftPoolSKUs {
			if _, ok := known[sku]; !ok {
				return invalid("tiers[%d].giftPoolSkus references unknown sku %s", i, sku)
			}
		}
	}
	return nil
}

func ruleVersionString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", invalid("ruleVersion is required")
	case string:
		if strings.TrimSpace(t) == "" {
			return "", invalid("ruleVersion is required")
		}
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case time.Time:
		// YAML resolves unquoted dates to timestamps.
		return t.Format(time.DateOnly), nil
	default:
		return "", invalid("ruleVersion has unsupported type %T", v)
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
