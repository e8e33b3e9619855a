package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Store hands out the current snapshot. Reload swaps the pointer in one step,
// so readers see either the old or the new snapshot, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
	loader  Loader
	logger  *zap.Logger
}

// NewStore performs the initial load. A failure here is a startup error.
func NewStore(ctx context.Context, loader Loader, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{loader: loader, logger: logger}
	snap, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.current.Store(snap)
	s.logLoaded("catalog loaded", snap)
	return s, nil
}

// NewStaticStore wraps a fixed snapshot; Reload is a no-op.
func NewStaticStore(snap *Snapshot) *Store {
	s := &Store{logger: zap.NewNop()}
	s.current.Store(snap)
	return s
}

// Current returns the snapshot in effect.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload loads a fresh snapshot. On error the previous snapshot stays active.
func (s *Store) Reload(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("catalog reload failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("reload catalog: %w", err)
	}
	s.current.Store(snap)
	s.logLoaded("catalog reloaded", snap)
	return nil
}

func (s *Store) logLoaded(msg string, snap *Snapshot) {
	cfg := snap.Config()
	s.logger.Info(msg,
		zap.String("rule_version", cfg.RuleVersion),
		zap.Int("products", len(snap.products)),
		zap.Int("tiers", len(cfg.Tiers)),
		zap.String("rounding_mode", string(cfg.RoundingMode)),
		zap.Bool("bundle_promo_enabled", snap.Flags().BundlePromoEnabled),
	)
}
