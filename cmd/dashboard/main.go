// Command dashboard serves the invoice dashboard API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acmelabs/invoice_dashboard/internal/actions"
	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/config"
	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/httpapi"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/metrics"
	"github.com/acmelabs/invoice_dashboard/internal/middleware"
	"github.com/acmelabs/invoice_dashboard/internal/revalidate"
	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

const serviceName = "dashboard"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(serviceName, cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supa, err := client.New(client.Config{
		URL:      cfg.SupabaseURL,
		APIKey:   cfg.SupabaseKey,
		Observer: metrics.ObserveRemoteCall,
	})
	if err != nil {
		logger.Fatalf("Failed to create Supabase client: %v", err)
	}

	sessions, err := auth.NewSessions([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.SecureCookies)
	if err != nil {
		logger.Fatalf("Failed to create session issuer: %v", err)
	}

	versions := revalidate.NewRegistry()
	var revalidator revalidate.Revalidator = versions
	if cfg.RedisURL != "" {
		broadcaster, err := revalidate.NewRedisBroadcaster(ctx, cfg.RedisURL, cfg.RevalidateChannel, versions, logger)
		if err != nil {
			logger.Fatalf("Failed to connect revalidation broadcaster: %v", err)
		}
		defer broadcaster.Close()
		go func() {
			if err := broadcaster.Listen(ctx); err != nil {
				logger.WithError(err).Error("Revalidation listener stopped")
			}
		}()
		revalidator = broadcaster
		logger.WithField("channel", cfg.RevalidateChannel).Info("Sharing revalidations over Redis")
	}

	store := data.NewStore(supa, logger)
	limiter := middleware.NewRateLimiter(float64(cfg.LoginRatePerSecond), cfg.LoginBurst, logger)
	limiter.StartCleanup(ctx, 5*time.Minute)

	srv := httpapi.NewServer(httpapi.Config{
		Service:        serviceName,
		Queries:        store,
		Mutations:      actions.NewService(store, logger),
		Authorizer:     auth.NewAuthenticator(auth.NewUsers(supa, logger), logger),
		Sessions:       sessions,
		Revalidator:    revalidator,
		Versions:       versions,
		LoginLimiter:   limiter,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("Dashboard listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		os.Exit(1)
	}
	logger.Info("Dashboard stopped")
}
