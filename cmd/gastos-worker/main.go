package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/backend"
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	memmirror "gastos/internal/sheets/memory"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting gastos-worker", "backend", cfg.DataBackend)

	// The worker only reads the ledger and updates sync status, it never publishes.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is process local, only ledger events will be mirrored")
	}

	mirror, err := newMirror(cfg, logger)
	if err != nil {
		return err
	}
	syncWorker := worker.NewSyncWorker(result.SyncSource, mirror, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	scheduler, err := worker.NewScheduler(ctx, syncWorker, cfg.SyncInterval)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return scheduler.Stop(stopCtx)
	})

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer consumer.Close()

		g.Go(func() error {
			err := consumer.ConsumeLedgerEvents(gctx, syncWorker.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP_URL not set, relying on scheduled reconciliation only")
	}

	if err := g.Wait(); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
	return nil
}

func newMirror(cfg *config.Config, logger *log.Logger) (sheets.ExpenseMirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, mirroring into process memory")
		return memmirror.New(), nil
	}
	client, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Location:        cfg.Location(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
