package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"obra/internal/backend"
	"obra/internal/cli"
	"obra/internal/config"
	apphttp "obra/internal/http"
	"obra/internal/log"
	"obra/internal/services"
	"obra/internal/status"
	"obra/internal/todoist"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cfg = cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	shutdownTracing := cli.SetupTracing(ctx, logger, "obra", cfg)

	ws, err := config.LoadWorkspace(cfg.ConstructionConfig, cfg.ConstructionConfigFile)
	if err != nil {
		logger.Warn("Workspace configuration incomplete, using defaults",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))

	store, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	journal, err := factory.CreateJournal(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize transition journal",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		os.Exit(1)
	}

	deps := apphttp.Deps{
		Views:              services.NewViews(store.Store, ws, cfg.Location()),
		Entries:            services.NewEntries(store.Store, ws),
		Status:             status.NewService(store.Store, journal.Publisher),
		AdminPIN:           cfg.AdminPIN,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready: func(ctx context.Context) error {
			if len(ws.Databases) == 0 {
				return errors.New("no databases configured")
			}
			if journal.Repo != nil {
				return journal.Repo.Ping(ctx)
			}
			return nil
		},
	}
	if journal.Repo != nil {
		deps.Journal = journal.Repo
	}
	if cfg.TodoistToken != "" {
		deps.Tasks = todoist.New(cfg.TodoistBaseURL, cfg.TodoistToken, nil)
	}
	if cfg.AdminPIN == "" {
		logger.Warn("ADMIN_PIN is empty, the API is open to anyone who can reach it",
			log.FieldErrorType, log.ErrorTypeAuth)
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)

	mirrorDone := make(chan struct{})
	runCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		select {
		case <-mirrorDone:
		case <-ctx.Done():
		}
		if journal.Cleanup != nil {
			if err := journal.Cleanup(); err != nil {
				logger.Error("Journal cleanup error", log.FieldError, err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Record store cleanup error", log.FieldError, err)
			}
		}
		shutdownTracing(ctx)
	})

	if journal.Worker != nil {
		go func() {
			defer close(mirrorDone)
			journal.Worker.Run(runCtx, cfg.MirrorInterval)
		}()
	} else {
		close(mirrorDone)
	}

	logger.Info("Starting obra server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"workspace", ws.Branding().Name,
		"journal_enabled", journal.Repo != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
