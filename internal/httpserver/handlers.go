package httpserver

import (
	"errors"
	"net/http"

	"bundle-checkout/internal/domain"
	"bundle-checkout/internal/money"
	"bundle-checkout/internal/payment"
	"bundle-checkout/internal/service/checkout"
	upsellsvc "bundle-checkout/internal/service/upsell"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlers struct {
	deps    Deps
	metrics *metrics
	logger  *zap.Logger
}

type productView struct {
	SKU                   string `json:"sku"`
	Title                 string `json:"title"`
	Type                  string `json:"type"`
	MSRP                  string `json:"msrp"`
	SortOrder             *int   `json:"sortOrder,omitempty"`
	Visible               bool   `json:"visible"`
	CountsTowardThreshold *bool  `json:"countsTowardThreshold,omitempty"`
}

type upsellView struct {
	Enabled      bool   `json:"enabled"`
	SKU          string `json:"sku,omitempty"`
	Price        string `json:"price,omitempty"`
	TimerMinutes int    `json:"timerMinutes,omitempty"`
}

type catalogConfigView struct {
	Tiers       []domain.Tier `json:"tiers"`
	Upsell      upsellView    `json:"upsell"`
	Flags       domain.Flags  `json:"flags"`
	RuleVersion string        `json:"ruleVersion"`
}

type catalogResponse struct {
	Products []productView     `json:"products"`
	Config   catalogConfigView `json:"config"`
}

type checkoutRequest struct {
	Currency string             `json:"currency"`
	Locale   string             `json:"locale"`
	Payload  domain.SignedAudit `json:"payload"`
}

type upsellShowRequest struct {
	VisitorID string `json:"visitorId"`
}

type upsellAddRequest struct {
	SessionID string `json:"sessionId"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (h *handlers) catalog(c *gin.Context) {
	snap := h.deps.Catalog.Current()
	visible := snap.VisibleProducts()
	products := make([]productView, 0, len(visible))
	for _, p := range visible {
		products = append(products, productView{
			SKU:                   p.SKU,
			Title:                 p.Title,
			Type:                  string(p.Type),
			MSRP:                  money.Format(p.MSRP),
			SortOrder:             p.SortOrder,
			Visible:               p.Visible,
			CountsTowardThreshold: p.CountsTowardThreshold,
		})
	}

	cfg := snap.Config()
	tiers := cfg.Tiers
	if tiers == nil {
		tiers = []domain.Tier{}
	}
	up := snap.Upsell()
	view := upsellView{Enabled: up.Enabled}
	if up.Enabled {
		view.SKU = up.SKU
		view.Price = money.Format(up.Price)
		view.TimerMinutes = up.TimerMinutes
	}

	c.JSON(http.StatusOK, catalogResponse{
		Products: products,
		Config: catalogConfigView{
			Tiers:       tiers,
			Upsell:      view,
			Flags:       snap.Flags(),
			RuleVersion: cfg.RuleVersion,
		},
	})
}

func (h *handlers) price(c *gin.Context) {
	var in checkout.CartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	quote, err := h.deps.Checkout.Quote(c.Request.Context(), in)
	if err != nil {
		h.logger.Error("quote failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "could not price cart")
		return
	}
	h.metrics.quotes.Inc()
	c.JSON(http.StatusOK, quote)
}

func (h *handlers) gifts(c *gin.Context) {
	var in checkout.CartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusOK, h.deps.Checkout.GiftOptions(c.Request.Context(), in))
}

func (h *handlers) checkoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.deps.Checkout.Revalidate(c.Request.Context(), req.Payload, payment.Options{
		Currency: req.Currency,
		Locale:   req.Locale,
	})
	switch {
	case err == nil:
		h.metrics.revalidations.WithLabelValues(outcomeAccepted).Inc()
		c.JSON(http.StatusOK, sess)
	case errors.Is(err, checkout.ErrInvalidSignature):
		h.metrics.revalidations.WithLabelValues(outcomeInvalidSignature).Inc()
		errorJSON(c, http.StatusUnprocessableEntity, "Invalid pricing signature")
	case errors.Is(err, checkout.ErrPricingMismatch):
		h.metrics.revalidations.WithLabelValues(outcomePricingMismatch).Inc()
		errorJSON(c, http.StatusUnprocessableEntity, "Pricing mismatch on revalidation")
	case errors.Is(err, payment.ErrNothingToCharge):
		h.metrics.revalidations.WithLabelValues(outcomeEmptyCart).Inc()
		errorJSON(c, http.StatusUnprocessableEntity, "Cart is empty")
	default:
		h.metrics.revalidations.WithLabelValues(outcomeSessionError).Inc()
		h.logger.Error("checkout session failed", zap.Error(err))
		errorJSON(c, http.StatusBadGateway, "Could not create checkout session")
	}
}

func (h *handlers) upsellShow(c *gin.Context) {
	var req upsellShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	offer, err := h.deps.Upsell.Show(c.Request.Context(), req.VisitorID)
	if err != nil {
		h.logger.Error("upsell show failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "could not check upsell eligibility")
		return
	}
	h.metrics.upsellOffers.WithLabelValues(offer.Status).Inc()
	c.JSON(http.StatusOK, offer)
}

func (h *handlers) upsellAdd(c *gin.Context) {
	var req upsellAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.deps.Upsell.Add(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, upsellsvc.ErrSessionRequired) {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("upsell add failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "could not add upsell")
		return
	}
	c.JSON(http.StatusOK, res)
}
