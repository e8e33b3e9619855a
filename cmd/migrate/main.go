package main

import (
	"context"
	"log"

	"bundle-checkout/internal/config"
	"bundle-checkout/internal/db"
	"bundle-checkout/internal/logging"
	"bundle-checkout/internal/migrate"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New("bundle-migrate", cfg.Log.Level, cfg.Log.Encoding)
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

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
}
