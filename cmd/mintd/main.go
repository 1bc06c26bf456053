// Package main runs the mint layer server: a payment-gated, supply-capped
// token issuance core with an HTTP API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/MintGate-Network/mint_layer/internal/app"
	"github.com/MintGate-Network/mint_layer/internal/app/httpapi"
	"github.com/MintGate-Network/mint_layer/internal/app/metrics"
	"github.com/MintGate-Network/mint_layer/internal/app/storage/postgres"
	"github.com/MintGate-Network/mint_layer/internal/config"
	"github.com/MintGate-Network/mint_layer/internal/platform/migrations"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

func main() {
	log := logger.NewDefault("mintd")

	if err := run(log); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	application, err := app.New(stores, app.Options{StatsInterval: cfg.StatsInterval}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", limiter.Handler(httpapi.NewHandler(application)))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      metrics.InstrumentHandler(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("service shutdown incomplete")
	}
	return nil
}

// buildStores wires persistence per the configured driver. The memory driver
// returns zero-value stores so the application falls back to its in-memory
// implementation.
func buildStores(ctx context.Context, cfg config.Config, log *logger.Logger) (app.Stores, func(), error) {
	switch cfg.Database.Driver {
	case "", "memory":
		log.Info("using in-memory store")
		return app.Stores{}, func() {}, nil

	case "postgres":
		if cfg.Database.DSN == "" {
			return app.Stores{}, nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return app.Stores{}, nil, fmt.Errorf("ping database: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
		}

		store := postgres.New(db)
		log.Info("using postgres store")
		return app.Stores{
			Collections: store,
			Tokens:      store,
			Treasury:    store,
		}, func() { db.Close() }, nil

	default:
		return app.Stores{}, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
