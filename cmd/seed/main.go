// Command seed loads placeholder users, customers, invoices and revenue through the REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/acmelabs/invoice_dashboard/internal/config"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/seed"
	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

func main() {
	file := flag.String("file", "", "YAML seed file (defaults to the built-in placeholder data)")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New("seed", cfg.LogLevel, cfg.LogFormat)

	if err := cfg.ValidateBackend(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	var d *seed.Data
	if *file != "" {
		d, err = seed.Load(*file)
	} else {
		d, err = seed.Placeholder()
	}
	if err != nil {
		logger.Fatalf("Load seed data: %v", err)
	}

	supa, err := client.New(client.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
	if err != nil {
		logger.Fatalf("Create Supabase client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sum, err := seed.NewSeeder(supa, logger).Seed(ctx, d)
	if err != nil {
		logger.Fatalf("Seed: %v", err)
	}
	fmt.Printf("Seeded %d users, %d customers, %d invoices, %d revenue months\n", sum.Users, sum.Customers, sum.Invoices, sum.Revenue)
}
