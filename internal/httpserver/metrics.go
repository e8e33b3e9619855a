package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeAccepted         = "accepted"
	outcomeInvalidSignature = "invalid_signature"
	outcomePricingMismatch  = "pricing_mismatch"
	outcomeEmptyCart        = "empty_cart"
	outcomeSessionError     = "session_error"
)

// metrics owns a private registry so several servers can coexist in tests.
type metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	quotes        prometheus.Counter
	revalidations *prometheus.CounterVec
	upsellOffers  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bundle",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bundle",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bundle",
			Name:      "price_quotes_total",
			Help:      "Signed price quotes issued.",
		}),
		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bundle",
			Name:      "checkout_revalidations_total",
			Help:      "Checkout revalidation attempts by outcome.",
		}, []string{"outcome"}),
		upsellOffers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bundle",
			Name:      "upsell_offers_total",
			Help:      "Upsell show requests by resulting status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(m.requests, m.durations, m.quotes, m.revalidations, m.upsellOffers)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.durations.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
