package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfel/internal/cli"
	apphttp "portfel/internal/http"
	applog "portfel/internal/log"
	"portfel/internal/middleware/ratelimit"
	"portfel/internal/ports"
	"portfel/internal/rates/nbp"
	"portfel/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)
	startCtx := context.Background()
	logger.InfoContext(startCtx, "Starting portfel", "backend", cfg.DataBackend, "home_currency", cfg.HomeCurrency)

	backend := cli.OpenBackend(startCtx, logger, cfg)
	loc := cfg.Location()

	var provider ports.RateProvider
	if cfg.RatesURL != "" {
		provider = nbp.New(cfg.RatesURL, nbp.WithTimeout(cfg.RatesTimeout))
	}
	rates := services.NewRateService(provider, backend.Store, cfg.HomeCurrency, cfg.RatesTTL)

	engineOpts := []services.EngineOption{services.WithLocation(loc)}
	if backend.Publisher != nil {
		engineOpts = append(engineOpts, services.WithPublisher(backend.Publisher))
	}
	engine := services.NewRecurringEngine(backend.Store, engineOpts...)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     services.NewLedgerService(backend.Store),
		Dashboard:  services.NewDashboardService(backend.Store, engine, rates, loc),
		Engine:     engine,
		Rates:      rates,
		Snapshots:  services.NewSnapshotService(backend.Store),
		Logger:     logger,
		Location:   loc,
		SessionTTL: cfg.SessionTTL,
		RateLimit:  ratelimit.DefaultConfig(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), backend.Cleanup())
	})

	// Warm the rate cache; failures fall back to stored rates.
	go func() {
		if _, err := rates.Sync(ctx); err != nil {
			logger.WarnContext(ctx, "Initial exchange rate sync failed", "error", err)
		}
	}()

	go func() {
		logger.InfoContext(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cli.Fatal(logger, "HTTP server failed", err)
		}
	}()

	<-done
}
