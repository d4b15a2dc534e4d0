package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"agritrade/internal/config"
	"agritrade/internal/seed"
	"agritrade/internal/store"
)

// Seed the database with the reference data set
func main() {
	ctx := context.Background()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set to seed Postgres")
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	// Skip when price data is already present
	observations, err := pg.PriceObservations(ctx)
	if err != nil {
		log.Fatalf("Failed to check price data: %v", err)
	}
	if len(observations) > 0 {
		fmt.Printf("Database already has %d price observations. No need to seed.\n", len(observations))
		os.Exit(0)
	}

	if err := seed.Apply(ctx, pg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Successfully seeded the database!")
}
