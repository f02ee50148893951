package main

import (
	"context"
	"errors"
	"os"

	"obra/internal/amqp"
	"obra/internal/backend"
	"obra/internal/cli"
	"obra/internal/config"
	"obra/internal/log"
	"obra/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(config.Load().LogLevel).WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting obra-worker", log.FieldOperation, log.OpStartup)

	if !cfg.JournalEnabled() {
		logger.Error("SQLITE_DB_PATH is required by the worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	shutdownTracing := cli.SetupTracing(context.Background(), logger, "obra-worker", cfg)

	repo := cli.InitJournal(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	mirror, err := backend.NewMirror(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize journal mirror", log.FieldError, err)
		os.Exit(1)
	}
	if mirror == nil {
		logger.Info("Journal mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewJournalWorker(repo, mirror, cfg.MirrorBatchSize)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, shutdownTracing)

	// Rows left unmirrored by a previous run are retried before the first tick.
	go w.Run(ctx, cfg.MirrorInterval)

	if err := amqpClient.ConsumeTransitions(ctx, w.HandleTransition); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
