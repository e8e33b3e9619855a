package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
)

// ErrNothingToCharge is returned when an audit has no paid line items.
var ErrNothingToCharge = errors.New("no paid line items")

// StripeSessions is the slice of the Stripe Checkout API the creator uses.
type StripeSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeConfig configures the Stripe Checkout creator.
type StripeConfig struct {
	SecretKey       string
	SuccessURL      string
	CancelURL       string
	DefaultCurrency string
}

// StripeCreator opens Stripe Checkout sessions. Paid items are charged at
// their net price; gifts ride along in metadata.
type StripeCreator struct {
	sessions StripeSessions
	cfg      StripeConfig
}

// NewStripeCreator builds a creator backed by the live Stripe API.
func NewStripeCreator(cfg StripeConfig) *StripeCreator {
	client := session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey}
	return NewStripeCreatorWith(client, cfg)
}

// NewStripeCreatorWith uses the given sessions client.
func NewStripeCreatorWith(sessions StripeSessions, cfg StripeConfig) *StripeCreator {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "usd"
	}
	return &StripeCreator{sessions: sessions, cfg: cfg}
}

func (c *StripeCreator) CreateSession(ctx context.Context, audit domain.Audit, opts Options) (Session, error) {
	params, err := c.params(audit, opts)
	if err != nil {
		return Session{}, err
	}
	params.Context = ctx

	sess, err := c.sessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return Session{ID: sess.ID, RedirectURL: sess.URL}, nil
}

func (c *StripeCreator) params(audit domain.Audit, opts Options) (*stripe.CheckoutSessionParams, error) {
	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = c.cfg.DefaultCurrency
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.cfg.SuccessURL),
		CancelURL:  stripe.String(c.cfg.CancelURL),
	}
	if opts.Locale != "" {
		params.Locale = stripe.String(opts.Locale)
	}

	var (
		gifts   []string
		charged []decimal.Decimal
	)
	for _, it := range audit.Items {
		if it.IsGift {
			gifts = append(gifts, it.SKU)
			continue
		}
		net, err := money.Parse(it.Net)
		if err != nil {
			return nil, fmt.Errorf("line item %s: %w", it.SKU, err)
		}
		charged = append(charged, net)
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(it.Title),
					Metadata: map[string]string{"sku": it.SKU},
				},
				UnitAmount: stripe.Int64(money.MinorUnits(net)),
			},
			Quantity: stripe.Int64(1),
		})
	}
	if len(params.LineItems) == 0 {
		return nil, ErrNothingToCharge
	}

	params.AddMetadata("rule_version", audit.RuleVersion)
	params.AddMetadata("tier", strconv.Itoa(audit.Tier))
	// Gift MSRPs lower the quoted total but are not refunded from paid
	// lines, so the two can differ.
	params.AddMetadata("quoted_total", audit.Totals.Total)
	params.AddMetadata("charged_total", money.Format(money.Sum(charged...)))
	if len(gifts) > 0 {
		params.AddMetadata("gift_skus", strings.Join(gifts, ","))
	}
	return params, nil
}
