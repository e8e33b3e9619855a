// Package payment creates hosted checkout sessions for revalidated carts.
package payment

import (
	"context"
	"fmt"

	"bundle-checkout/internal/domain"

	"github.com/google/uuid"
)

// Session identifies a created checkout session and where to send the buyer.
type Session struct {
	ID          string `json:"sessionId"`
	RedirectURL string `json:"redirectUrl"`
}

// Options carries per-request presentation hints.
type Options struct {
	Currency string
	Locale   string
}

// SessionCreator opens a checkout session for an audit that already passed
// revalidation.
type SessionCreator interface {
	CreateSession(ctx context.Context, audit domain.Audit, opts Options) (Session, error)
}

// LocalCreator issues random session ids and an in-app redirect path. It is
// used when no payment provider is configured.
type LocalCreator struct {
	RedirectBase string
}

func NewLocalCreator() *LocalCreator {
	return &LocalCreator{RedirectBase: "/checkout/redirect/"}
}

func (c *LocalCreator) CreateSession(_ context.Context, _ domain.Audit, _ Options) (Session, error) {
	id := uuid.NewString()
	return Session{ID: id, RedirectURL: fmt.Sprintf("%s%s", c.RedirectBase, id)}, nil
}
