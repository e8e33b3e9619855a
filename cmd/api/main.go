package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bundle-checkout/internal/catalog"
	"bundle-checkout/internal/config"
	"bundle-checkout/internal/db"
	"bundle-checkout/internal/httpserver"
	"bundle-checkout/internal/logging"
	"bundle-checkout/internal/money"
	"bundle-checkout/internal/payment"
	productrepo "bundle-checkout/internal/repository/product"
	upsellrepo "bundle-checkout/internal/repository/upsell"
	checkoutsvc "bundle-checkout/internal/service/checkout"
	upsellsvc "bundle-checkout/internal/service/upsell"
	"bundle-checkout/internal/signer"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	cfg := config.FromEnv()

	logger, err := logging.New("bundle-api", cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.Signing.Fallback {
		logger.Warn("BUNDLE_HMAC_SECRET not set, signing with the development fallback secret")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rounding money.RoundingMode
	if cfg.Catalog.RoundingMode != "" {
		rounding, err = money.ParseRoundingMode(cfg.Catalog.RoundingMode)
		if err != nil {
			logger.Fatal("invalid ROUNDING_MODE", zap.Error(err))
		}
	}

	ctx := context.Background()

	var dbpool *pgxpool.Pool
	if cfg.Catalog.Source == "postgres" || cfg.Upsell.Store == "postgres" {
		dbpool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer dbpool.Close()
	}

	var loader catalog.Loader
	switch cfg.Catalog.Source {
	case "postgres":
		loader = catalog.RepositoryLoader{
			RulesPath:        cfg.Catalog.RulesPath,
			Products:         productrepo.NewPostgres(dbpool, logger),
			RoundingOverride: rounding,
		}
	default:
		loader = catalog.FileLoader{
			RulesPath:        cfg.Catalog.RulesPath,
			ProductsPath:     cfg.Catalog.ProductsPath,
			RoundingOverride: rounding,
		}
	}
	store, err := catalog.NewStore(ctx, loader, logger)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	sg, err := signer.New([]byte(cfg.Signing.Secret))
	if err != nil {
		logger.Fatal("init signer", zap.Error(err))
	}

	var sessions payment.SessionCreator = payment.NewLocalCreator()
	if cfg.Stripe.SecretKey != "" {
		sessions = payment.NewStripeCreator(payment.StripeConfig{
			SecretKey:       cfg.Stripe.SecretKey,
			SuccessURL:      cfg.Stripe.SuccessURL,
			CancelURL:       cfg.Stripe.CancelURL,
			DefaultCurrency: cfg.Stripe.Currency,
		})
		logger.Info("checkout sessions via stripe")
	}

	var impressions upsellrepo.Repository
	switch cfg.Upsell.Store {
	case "redis":
		client, err := db.ConnectRedis(ctx, cfg.Upsell.RedisURL)
		if err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		defer client.Close()
		impressions = upsellrepo.NewRedis(client, cfg.Upsell.TTL, logger)
	default:
		impressions = upsellrepo.NewPostgres(dbpool, logger)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:               store,
		Checkout:              checkoutsvc.New(store, sg, sessions, logger),
		Upsell:                upsellsvc.New(store, impressions, logger),
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		CheckoutRatePerMinute: cfg.CheckoutRatePerMinute,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

wait:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				// Reload logs its own outcome; a failed reload keeps serving.
				_ = store.Reload(ctx)
				continue
			}
			logger.Info("shutting down", zap.String("signal", sig.String()))
			break wait
		case err := <-serverErr:
			logger.Error("server error", zap.Error(err))
			break wait
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
