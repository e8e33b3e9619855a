package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/payment"
	"bundle-checkout/internal/pricing"
	"bundle-checkout/internal/service/checkout"
	upsellsvc "bundle-checkout/internal/service/upsell"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type catalogSource interface {
	Current() *catalog.Snapshot
}

type checkoutService interface {
	Quote(ctx context.Context, in checkout.CartInput) (domain.SignedAudit, error)
	GiftOptions(ctx context.Context, in checkout.CartInput) pricing.GiftOptions
	Revalidate(ctx context.Context, signed domain.SignedAudit, opts payment.Options) (payment.Session, error)
}

type upsellService interface {
	Show(ctx context.Context, visitorID string) (upsellsvc.Offer, error)
	Add(ctx context.Context, sessionID string) (upsellsvc.AddResult, error)
}

// Deps are the collaborators the routes need.
type Deps struct {
	Catalog  catalogSource
	Checkout checkoutService
	Upsell   upsellService

	CORSAllowedOrigins    []string
	CheckoutRatePerMinute int
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Checkout == nil || deps.Upsell == nil {
		return nil, errors.New("httpserver: catalog, checkout and upsell are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := newMetrics()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), m.middleware())
	if len(deps.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSAllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Catalog))
	router.GET("/metrics", gin.WrapH(m.handler()))

	h := &handlers{deps: deps, metrics: m, logger: logger}
	limiter := newIPLimiter(deps.CheckoutRatePerMinute, time.Now)

	api := router.Group("/api")
	api.GET("/catalog", h.catalog)
	api.POST("/cart/price", h.price)
	api.POST("/cart/gifts", h.gifts)
	api.POST("/checkout/session", limiter.middleware(), h.checkoutSession)
	api.POST("/upsell/show", h.upsellShow)
	api.POST("/upsell/add", h.upsellAdd)

	return router, nil
}
