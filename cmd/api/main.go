package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookclub-membership/internal/auth"
	"bookclub-membership/internal/client"
	"bookclub-membership/internal/config"
	"bookclub-membership/internal/logging"
	"bookclub-membership/internal/metrics"
	"bookclub-membership/internal/repository"
	"bookclub-membership/internal/server"
	"bookclub-membership/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Environment.IsDevelopment())

	db, err := client.InitDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init failed")
	}

	metrics.MustRegister()

	paypalClient := client.NewPaypalClient(&cfg.Paypal, logger)
	if cfg.Paypal.ClientID == "" || cfg.Paypal.ClientSecret == "" {
		logger.Warn().Msg("paypal credentials not set, checkout will fail")
	}

	identity := auth.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	membershipService := service.NewMembershipService(
		paypalClient,
		identity,
		subscriptionRepo,
		service.Options{
			DefaultOrigin:   cfg.BaseURL,
			MatchOrderID:    cfg.Subscription.MatchOrderID,
			CaptureApproved: cfg.Paypal.CaptureApproved,
		},
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(membershipService, logger)

	logger.Info().
		Str("addr", serverAddr).
		Str("paypal_api", cfg.Paypal.BaseApiURL).
		Str("paypal_client_id", logging.Redact(cfg.Paypal.ClientID, cfg.Environment.IsDevelopment())).
		Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown error")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
