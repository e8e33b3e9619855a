// Package checkout issues signed price quotes and revalidates them before a
// checkout session is opened.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"bundle-checkout/internal/canonical"
	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/payment"
	"bundle-checkout/internal/pricing"

	"go.uber.org/zap"
)

var (
	ErrInvalidSignature = errors.New("invalid pricing signature")
	ErrPricingMismatch  = errors.New("pricing mismatch on revalidation")
)

type snapshotSource interface {
	Current() *catalog.Snapshot
}

type auditSigner interface {
	Sign(payload any) (string, error)
	Verify(payload any, signature string) bool
}

type Service struct {
	catalog  snapshotSource
	signer   auditSigner
	sessions payment.SessionCreator
	logger   *zap.Logger
}

func New(store snapshotSource, sg auditSigner, sessions payment.SessionCreator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: store, signer: sg, sessions: sessions, logger: logger}
}

// CartInput is a client cart: paid SKUs plus requested gifts.
type CartInput struct {
	Items         []string `json:"items"`
	SelectedGifts []string `json:"selectedGifts"`
}

// Quote prices the cart against the current catalog and signs the audit.
func (s *Service) Quote(_ context.Context, in CartInput) (domain.SignedAudit, error) {
	audit := s.catalog.Current().Engine().Price(in.Items, in.SelectedGifts).Audit()
	sig, err := s.signer.Sign(audit)
	if err != nil {
		return domain.SignedAudit{}, fmt.Errorf("sign audit: %w", err)
	}
	return domain.SignedAudit{Audit: audit, Signature: sig}, nil
}

// GiftOptions reports which requested gifts the cart's tier offers.
func (s *Service) GiftOptions(_ context.Context, in CartInput) pricing.GiftOptions {
	return s.catalog.Current().Engine().Price(in.Items, in.SelectedGifts).GiftOptions(in.SelectedGifts)
}

// Revalidate checks a client-held quote and opens a checkout session. The
// signature must verify and a fresh computation against the current catalog
// must encode identically; either failure aborts before any side effect.
func (s *Service) Revalidate(ctx context.Context, signed domain.SignedAudit, opts payment.Options) (payment.Session, error) {
	claimed := signed.Audit
	paid, gifts := claimed.SplitSKUs()

	if !s.signer.Verify(claimed, signed.Signature) {
		s.logger.Warn("checkout rejected", zap.String("stage", "signature"))
		return payment.Session{}, ErrInvalidSignature
	}

	snap := s.catalog.Current()
	fresh := snap.Engine().Price(paid, gifts).Audit()
	if !sameAudit(claimed, fresh) {
		s.logger.Warn("checkout rejected",
			zap.String("stage", "recompute"),
			zap.String("rule_version", snap.Config().RuleVersion),
		)
		return payment.Session{}, ErrPricingMismatch
	}

	sess, err := s.sessions.CreateSession(ctx, fresh, opts)
	if err != nil {
		return payment.Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	s.logger.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int("tier", fresh.Tier),
		zap.String("total", fresh.Totals.Total),
	)
	return sess, nil
}

func sameAudit(a, b domain.Audit) bool {
	ea, err := canonical.Encode(a)
	if err != nil {
		return false
	}
	eb, err := canonical.Encode(b)
	if err != nil {
		return false
	}
	return ea == eb
}
