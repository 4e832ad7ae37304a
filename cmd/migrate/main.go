// Command migrate applies the dashboard schema and stored procedures to DATABASE_URL.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/lib/pq"

	"github.com/acmelabs/invoice_dashboard/internal/config"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/migrations"
)

func main() {
	list := flag.Bool("list", false, "List migrations without applying them")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New("migrate", cfg.LogLevel, cfg.LogFormat)

	if *list {
		names, err := migrations.Names()
		if err != nil {
			logger.Fatalf("List migrations: %v", err)
		}
		for _, n := range names {
			logger.Info(n)
		}
		return
	}

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Connect database: %v", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		logger.Fatalf("Apply migrations: %v", err)
	}
	logger.Info("Migrations applied")
}
