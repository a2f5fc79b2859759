package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amzmarine/crm/internal/app"
	"github.com/amzmarine/crm/internal/config"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"store_driver", cfg.Store.Driver,
		"storage_type", cfg.Storage.Type,
		"assistant_enabled", cfg.Assistant.APIKey != "",
		"events_enabled", cfg.Events.KafkaBroker != "",
		"seed_demo", cfg.Seed.Demo,
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	// Cancel on interrupt so the server shuts down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crm, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start CRM: %v", err)
	}
	defer func() {
		if err := crm.Close(); err != nil {
			slog.Error("failed to close CRM resources", "error", err)
		}
	}()

	if err := crm.Serve(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		stop()
		_ = crm.Close()
		os.Exit(1)
	}

	slog.Info("server stopped")
}
