// Package upsell persists which visitors have already been shown the
// one-time offer.
package upsell

import "context"

// Repository records first impressions. MarkShown returns true only for the
// call that created the record for visitorKey.
type Repository interface {
	MarkShown(ctx context.Context, visitorKey string) (bool, error)
}
