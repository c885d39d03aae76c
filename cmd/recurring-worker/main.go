package main

import (
	"context"
	"time"

	"portfel/internal/cli"
	"portfel/internal/config"
	applog "portfel/internal/log"
	"portfel/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentRecurring)
	startCtx := context.Background()
	logger.InfoContext(startCtx, "Starting recurring-worker", "interval", cfg.RecurringInterval)

	if cfg.DataBackend == config.BackendMemory {
		logger.WarnContext(startCtx, "Memory backend is private to this process; subscriptions created elsewhere are not seen")
	}

	backend := cli.OpenBackend(startCtx, logger, cfg)

	opts := []services.EngineOption{services.WithLocation(cfg.Location())}
	if backend.Publisher != nil {
		opts = append(opts, services.WithPublisher(backend.Publisher))
	} else {
		logger.InfoContext(startCtx, "AMQP disabled - rollovers will not reach the ledger worker")
	}
	engine := services.NewRecurringEngine(backend.Store, opts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	run := func(now time.Time) {
		res, err := engine.ProcessDue(ctx, now)
		if err != nil {
			logger.ErrorContext(ctx, "Recurring processing failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "Recurring processing complete",
			"checked", res.Checked,
			"rolled_over", res.RolledOver,
			"failed", res.Failed,
			"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
	}

	run(time.Now())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			if err := backend.Cleanup(); err != nil {
				logger.ErrorContext(startCtx, "Failed to close backend", "error", err)
			}
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
