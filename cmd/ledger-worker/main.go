package main

import (
	"context"
	"errors"
	"os"
	"time"

	"portfel/internal/amqp"
	"portfel/internal/cli"
	applog "portfel/internal/log"
	"portfel/internal/ports"
	gsheet "portfel/internal/sheets/google"
	sheetsmem "portfel/internal/sheets/memory"
	"portfel/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	startCtx := context.Background()
	logger.InfoContext(startCtx, "Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.ErrorContext(startCtx, "AMQP_URL is required for the ledger worker")
		os.Exit(1)
	}

	backend := cli.OpenBackend(startCtx, logger, cfg)

	var ledger ports.LedgerWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(startCtx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Location:        cfg.Location(),
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		ledger = client
	} else {
		logger.InfoContext(startCtx, "Google Sheets disabled - rollovers are kept in memory only")
		ledger = sheetsmem.New()
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	w := worker.NewLedgerWorker(backend.Store, ledger)
	if err := consumer.ConsumeRollovers(ctx, w.HandleRollover); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(startCtx, "Rollover consumption stopped", "error", err)
	}
	<-done
	if err := errors.Join(consumer.Close(), backend.Cleanup()); err != nil {
		logger.ErrorContext(startCtx, "Failed to release resources", "error", err)
	}
}
