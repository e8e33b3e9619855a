// Package upsell decides whether a visitor sees the one-time offer.
package upsell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/money"

	"go.uber.org/zap"
)

const (
	StatusEligible    = "eligible"
	StatusNotEligible = "not_eligible"
	StatusAdded       = "added"
)

var ErrSessionRequired = errors.New("sessionId required")

// ImpressionStore records that a visitor has been shown the offer. MarkShown
// reports true only for the call that created the record.
type ImpressionStore interface {
	MarkShown(ctx context.Context, visitorKey string) (bool, error)
}

type snapshotSource interface {
	Current() *catalog.Snapshot
}

type Service struct {
	catalog snapshotSource
	store   ImpressionStore
	logger  *zap.Logger
}

func New(src snapshotSource, store ImpressionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: src, store: store, logger: logger}
}

type Offer struct {
	Status       string `json:"status"`
	SKU          string `json:"sku,omitempty"`
	Price        string `json:"price,omitempty"`
	TimerMinutes int    `json:"timerMinutes,omitempty"`
}

type AddResult struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
}

// Show returns the offer the first time a visitor key is seen while the
// offer is enabled. An empty key is never eligible.
func (s *Service) Show(ctx context.Context, visitorID string) (Offer, error) {
	snap := s.catalog.Current()
	offer := snap.Upsell()
	if !offer.Enabled || !snap.Flags().OTOEnabled {
		return Offer{Status: StatusNotEligible}, nil
	}
	key := strings.TrimSpace(visitorID)
	if key == "" {
		return Offer{Status: StatusNotEligible}, nil
	}

	first, err := s.store.MarkShown(ctx, key)
	if err != nil {
		return Offer{}, fmt.Errorf("record upsell impression: %w", err)
	}
	if !first {
		return Offer{Status: StatusNotEligible}, nil
	}
	s.logger.Debug("upsell offered", zap.String("sku", offer.SKU))
	return Offer{
		Status:       StatusEligible,
		SKU:          offer.SKU,
		Price:        money.Format(offer.Price),
		TimerMinutes: offer.TimerMinutes,
	}, nil
}

// Add acknowledges the offer for a checkout session. Attaching the SKU to
// the provider session is left to the payment integration.
func (s *Service) Add(_ context.Context, sessionID string) (AddResult, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return AddResult{}, ErrSessionRequired
	}
	s.logger.Info("upsell accepted", zap.String("session_id", id))
	return AddResult{Status: StatusAdded, SessionID: id}, nil
}
