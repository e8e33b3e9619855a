package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileLoaderJSON(t *testing.T) {
	snap, err := FileLoader{RulesPath: "testdata/config.json", ProductsPath: "testdata/products.json"}.Load(context.Background())
	require.NoError(t, err)

	cfg := snap.Config()
	assert.Equal(t, "2025-09-01", cfg.RuleVersion)
	assert.Equal(t, money.HalfUp, cfg.RoundingMode)
	require.Len(t, cfg.Tiers, 2)
	assert.Equal(t, domain.ScopeEntireCart, cfg.Tiers[1].Scope)

	assert.True(t, snap.Flags().BundlePromoEnabled)
	assert.True(t, snap.Flags().OTOEnabled)
	assert.Equal(t, "OTO", snap.Upsell().SKU)
	assert.True(t, snap.Upsell().Price.Equal(decimal.RequireFromString("27")))

	var visible []string
	for _, p := range snap.VisibleProducts() {
		visible = append(visible, p.SKU)
	}
	assert.Equal(t, []string{"A", "B", "OTO"}, visible)

	res := snap.Engine().Price([]string{"A", "B"}, []string{"G"})
	assert.Equal(t, "142.00", res.Totals.Total)
}

func TestFileLoaderYAML(t *testing.T) {
	snap, err := FileLoader{RulesPath: "testdata/config.yaml", ProductsPath: "testdata/products.yaml"}.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "7", snap.Config().RuleVersion)
	assert.Equal(t, money.HalfEven, snap.Config().RoundingMode)
	assert.False(t, snap.Upsell().Enabled)
	res := snap.Engine().Price([]string{"A"}, nil)
	assert.Equal(t, "5.00", res.Totals.Discount)
}

func TestRoundingOverrideWins(t *testing.T) {
	snap, err := FileLoader{
		RulesPath:        "testdata/config.json",
		ProductsPath:     "testdata/products.json",
		RoundingOverride: money.HalfEven,
	}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, money.HalfEven, snap.Engine().RoundingMode())
	assert.Equal(t, money.HalfEven, snap.Config().RoundingMode)
}

func TestBundlePromoDisabledPricesWithoutTiers(t *testing.T) {
	rules := writeFile(t, "config.json", `{
		"ruleVersion": 3,
		"tiers": [{"minCourses": 1, "scope": "entire_cart", "percentOff": 50}],
		"flags": {"bundlePromoEnabled": false}
	}`)
	snap, err := FileLoader{RulesPath: rules, ProductsPath: "testdata/products.json"}.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3", snap.Config().RuleVersion)
	assert.Len(t, snap.Config().Tiers, 1)
	res := snap.Engine().Price([]string{"A"}, nil)
	assert.Equal(t, 0, res.Tier)
	assert.Equal(t, "0.00", res.Totals.Discount)
}

func TestRulesValidation(t *testing.T) {
	cases := map[string]string{
		"missing version":   `{"tiers": []}`,
		"missing scope":     `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "percentOff": 5}]}`,
		"missing percent":   `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "entire_cart"}]}`,
		"missing min":       `{"ruleVersion": "1", "tiers": [{"scope": "entire_cart", "percentOff": 5}]}`,
		"bad scope":         `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "everything", "percentOff": 5}]}`,
		"percent too high":  `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "entire_cart", "percentOff": 101}]}`,
		"negative gifts":    `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "entire_cart", "percentOff": 5, "giftCount": -1}]}`,
		"duplicate minimum": `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "entire_cart", "percentOff": 5}, {"minCourses": 1, "scope": "courses_only", "percentOff": 7}]}`,
		"bad rounding":      `{"ruleVersion": "1", "flags": {"roundingMode": "up"}}`,
		"unknown gift":      `{"ruleVersion": "1", "tiers": [{"minCourses": 1, "scope": "entire_cart", "percentOff": 5, "giftCount": 1, "giftPoolSkus": ["NOPE"]}]}`,
		"upsell no sku":     `{"ruleVersion": "1", "upsell": {"enabled": true, "price": 5}}`,
		"malformed":         `{"ruleVersion": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rules := writeFile(t, "config.json", body)
			_, err := FileLoader{RulesPath: rules, ProductsPath: "testdata/products.json"}.Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestProductValidation(t *testing.T) {
	cases := map[string]string{
		"missing sku":    `[{"title": "x", "type": "course", "msrp": 1}]`,
		"missing type":   `[{"sku": "A", "msrp": 1}]`,
		"missing msrp":   `[{"sku": "A", "type": "course"}]`,
		"negative msrp":  `[{"sku": "A", "type": "course", "msrp": -1}]`,
		"sub-cent msrp":  `[{"sku": "A", "type": "course", "msrp": "1.005"}]`,
		"duplicate skus": `[{"sku": "A", "type": "course", "msrp": 1}, {"sku": "A", "type": "addon", "msrp": 2}]`,
	}
	rules := writeFile(t, "config.json", `{"ruleVersion": "1"}`)
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			products := writeFile(t, "products.json", body)
			_, err := FileLoader{RulesPath: rules, ProductsPath: products}.Load(context.Background())
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

type stubLister struct {
	products []domain.Product
	err      error
}

func (s *stubLister) ListAll(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func TestRepositoryLoader(t *testing.T) {
	lister := &stubLister{products: []domain.Product{
		{SKU: "A", Title: "A", Type: domain.ProductCourse, MSRP: decimal.RequireFromString("100")},
		{SKU: "B", Title: "B", Type: domain.ProductCourse, MSRP: decimal.RequireFromString("80")},
		{SKU: "G", Title: "G", Type: domain.ProductGift, MSRP: decimal.RequireFromString("20")},
		{SKU: "G2", Title: "G2", Type: domain.ProductGift, MSRP: decimal.RequireFromString("15")},
	}}
	snap, err := RepositoryLoader{RulesPath: "testdata/config.json", Products: lister}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Products(), 4)

	lister.err = errors.New("db down")
	_, err = RepositoryLoader{RulesPath: "testdata/config.json", Products: lister}.Load(context.Background())
	require.ErrorContains(t, err, "db down")
}

type sequenceLoader struct {
	snaps []*Snapshot
	errs  []error
	calls int
}

func (l *sequenceLoader) Load(_ context.Context) (*Snapshot, error) {
	i := l.calls
	l.calls++
	return l.snaps[i], l.errs[i]
}

func mustSnapshot(t *testing.T, version string) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(nil, Rules{
		Config: domain.PricingConfig{RuleVersion: version},
		Flags:  domain.Flags{BundlePromoEnabled: true},
	}, "")
	require.NoError(t, err)
	return snap
}

func TestStoreReloadSwapsAndKeepsPreviousOnError(t *testing.T) {
	loader := &sequenceLoader{
		snaps: []*Snapshot{mustSnapshot(t, "v1"), mustSnapshot(t, "v2"), nil},
		errs:  []error{nil, nil, errors.New("broken file")},
	}
	store, err := NewStore(context.Background(), loader, nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", store.Current().Config().RuleVersion)

	require.NoError(t, store.Reload(context.Background()))
	assert.Equal(t, "v2", store.Current().Config().RuleVersion)

	require.Error(t, store.Reload(context.Background()))
	assert.Equal(t, "v2", store.Current().Config().RuleVersion)
}

func TestNewStoreFailsOnInvalidCatalog(t *testing.T) {
	loader := &sequenceLoader{snaps: []*Snapshot{nil}, errs: []error{ErrInvalidConfig}}
	_, err := NewStore(context.Background(), loader, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStaticStore(t *testing.T) {
	store := NewStaticStore(mustSnapshot(t, "fixed"))
	require.NoError(t, store.Reload(context.Background()))
	assert.Equal(t, "fixed", store.Current().Config().RuleVersion)
}
