package main

import (
	"context"
	"errors"
	"flag"

	"expensemate/internal/amqp"
	"expensemate/internal/cli"
	"expensemate/internal/config"
	applog "expensemate/internal/log"
	"expensemate/internal/sheets"
	gsheet "expensemate/internal/sheets/google"
	memsheet "expensemate/internal/sheets/memory"
	"expensemate/internal/storage"
	"expensemate/internal/worker"
)

func main() {
	resync := flag.String("resync", "", "rewrite every row of this owner before consuming events")
	flag.Parse()

	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Warn("Failed to load .env file", applog.FieldError, err)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if err := run(cfg, logger, *resync); err != nil {
		cli.Fatal(logger, "Worker error", err)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *applog.Logger, resyncOwner string) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required by the sync worker")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}
	w := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)

	if resyncOwner != "" {
		n, err := w.Resync(ctx, resyncOwner)
		if err != nil {
			return err
		}
		logger.Info("Resync complete", applog.FieldOwner, resyncOwner, "rows", n)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue, applog.FieldOperation, applog.OpStartup)
	err = client.ConsumeWithReconnect(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newMirror uses the configured spreadsheet, or an in-memory mirror when
// no spreadsheet is set up.
func newMirror(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.Mirror, error) {
	if !cfg.SheetsConfigured() {
		logger.Warn("Google Sheets not configured, mirroring in memory only")
		return memsheet.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets mirror ready", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return client, nil
}
