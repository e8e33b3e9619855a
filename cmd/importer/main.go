package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bundle-checkout/internal/config"
	"bundle-checkout/internal/db"
	"bundle-checkout/internal/importer"
	"bundle-checkout/internal/logging"
	"bundle-checkout/internal/repository/product"

	"github.com/joho/godotenv"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (sku,title,type,msrp,sortOrder,visible,countsTowardThreshold)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New("bundle-importer", cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
