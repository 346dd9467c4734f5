// Command backfill links custody history written before ledger rows tracked
// their latest entry. It is safe to run repeatedly.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"papertrail/internal/config"
	"papertrail/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	stats, err := postgres.BackfillLinks(ctx, db, batchSize)
	if err != nil {
		return err
	}

	log.Printf("backfill complete in %s: %d history entries linked, %d ledger rows linked, %d ledger rows without a matching entry",
		time.Since(start).Round(time.Millisecond), stats.EntriesLinked, stats.RecordsLinked, stats.RecordsNoMatch)
	return nil
}
