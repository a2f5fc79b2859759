// Package app wires configuration into a running CRM: record store, event
// publisher, activity feed, assistant, service and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/assistant"
	"github.com/amzmarine/crm/internal/config"
	"github.com/amzmarine/crm/internal/crm/router"
	"github.com/amzmarine/crm/internal/crm/service"
	"github.com/amzmarine/crm/internal/events"
	"github.com/amzmarine/crm/internal/store"
	"github.com/amzmarine/crm/internal/uploads"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	Config    *config.Config
	Records   store.RecordStore
	Publisher events.Publisher
	Service   *service.CRMService
}

// Open connects the record store and loads the CRM collections.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	records, err := store.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	ai, err := assistant.NewFromConfig(ctx, cfg.Assistant)
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	publisher := events.NewFromConfig(cfg.Events)
	svc := service.NewCRMService(records, service.Options{
		SeedDemo:  cfg.Seed.Demo,
		SalesReps: cfg.Seed.SalesReps,
		Feed:      activity.NewFeed(publisher),
		Assistant: ai,
	})
	if err := svc.Load(ctx); err != nil {
		_ = publisher.Close()
		_ = records.Close()
		return nil, fmt.Errorf("failed to load CRM state: %w", err)
	}

	return &App{Config: cfg, Records: records, Publisher: publisher, Service: svc}, nil
}

// Handler builds the HTTP handler with attachment storage attached.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	driver, err := uploads.NewStorageFromConfig(ctx, a.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attachment storage: %w", err)
	}
	uploadHandler := uploads.NewHTTPHandler(uploads.NewUploadService(driver), a.Service)

	gin.SetMode(a.Config.Server.GinMode)
	health := func(ctx context.Context) error { return store.Ping(ctx, a.Records) }
	return router.NewEngine(router.NewCRMRouter(a.Service, uploadHandler, health), &a.Config.CORS), nil
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	handler, err := a.Handler(ctx)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "port", a.Config.Server.Port, "url", a.Config.Server.ServiceURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
			return err
		}
		slog.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}

// Close flushes pending events and closes the record store.
func (a *App) Close() error {
	var errs []error
	if err := a.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
	}
	if err := a.Records.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close record store: %w", err))
	}
	return errors.Join(errs...)
}
