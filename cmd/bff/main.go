package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecosystem/web-bff/internal/analytics"
	"github.com/ecosystem/web-bff/internal/auth"
	"github.com/ecosystem/web-bff/internal/config"
	"github.com/ecosystem/web-bff/internal/creditcard"
	"github.com/ecosystem/web-bff/internal/featureflags"
	"github.com/ecosystem/web-bff/internal/server"
	"github.com/ecosystem/web-bff/internal/session"
	"github.com/ecosystem/web-bff/internal/storage"
	memorystore "github.com/ecosystem/web-bff/internal/storage/memory"
	sqlitestore "github.com/ecosystem/web-bff/internal/storage/sqlite"
	"github.com/ecosystem/web-bff/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("web-bff", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := newAccountStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	client := analytics.NewClient(cfg.Services.Analytics.URL)
	sink := analytics.NewSink(client, logger, cfg.Analytics.MaxInFlight)
	emitter := analytics.NewEmitter(sink)

	flags := featureflags.NewProvider(cfg.Features)

	codec := auth.NewDemoCodec()

	srv := server.New(cfg.Server.Port, logger, codec, cfg.Auth.PublicPaths)

	sessionHandler := session.NewHandler(codec, emitter, logger)
	creditCardHandler := creditcard.NewHandler(store, emitter, flags, logger, creditcard.Config{
		PreApprovedLimit:    cfg.CreditCard.PreApprovedLimit,
		RaiseLimitIncrement: cfg.CreditCard.RaiseLimitIncrement,
	})
	analyticsHandler := analytics.NewHandler(sink)

	srv.Router.Get("/api/feature-flags", flags.Handler)
	srv.Router.Post("/api/user/session/login", sessionHandler.Login)
	srv.Router.Post("/api/user/session/logout", sessionHandler.Logout)
	srv.Router.Get("/api/credit-card/account", creditCardHandler.Account)
	srv.Router.Get("/api/credit-card/offer", creditCardHandler.Offer)
	srv.Router.Post("/api/credit-card/actions/simulate-purchase", creditCardHandler.SimulatePurchase)
	srv.Router.Post("/api/credit-card/actions/raise-limit", creditCardHandler.RaiseLimit)
	srv.Router.Post("/api/credit-card/actions/reset", creditCardHandler.Reset)
	srv.Router.Post("/api/credit-card/onboarding/sign", creditCardHandler.SignOnboarding)
	srv.Router.Post("/api/analytics/events", analyticsHandler.PostEvent)
	srv.Router.Post("/api/analytics/events/batch", analyticsHandler.PostBatch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload feature flag defaults when the config file changes.
	if _, statErr := os.Stat(*configPath); statErr == nil {
		if err := config.Watch(ctx, *configPath, logger, func(next *config.Config) {
			flags.Replace(next.Features)
		}); err != nil {
			logger.Error("config watch unavailable", slog.String("error", err.Error()))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newAccountStore(cfg *config.Config) (storage.AccountStore, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return sqlitestore.New(cfg.Storage.SQLite.Path)
	default:
		return memorystore.New(), nil
	}
}
