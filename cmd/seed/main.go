package main

import (
	"context"
	"log"

	"bundle-checkout/internal/config"
	"bundle-checkout/internal/db"
	"bundle-checkout/internal/logging"
	productrepo "bundle-checkout/internal/repository/product"
	"bundle-checkout/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New("bundle-seed", cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied", zap.Int("products", n))
}
