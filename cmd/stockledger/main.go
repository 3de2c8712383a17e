package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockledger/stockledger/internal/alerts"
	"github.com/stockledger/stockledger/internal/app"
	"github.com/stockledger/stockledger/internal/catalog"
	"github.com/stockledger/stockledger/internal/ledger"
	"github.com/stockledger/stockledger/internal/movement"
	"github.com/stockledger/stockledger/internal/observability"
	"github.com/stockledger/stockledger/internal/platform/cache"
	"github.com/stockledger/stockledger/internal/platform/db"
	"github.com/stockledger/stockledger/internal/sheetsync"
	"github.com/stockledger/stockledger/internal/summary"
	"github.com/stockledger/stockledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), metrics)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	movementService := movement.NewService(movement.NewRepository(pool))
	movementHandler := movement.NewHandler(logger, movementService)

	alertsRepo := alerts.NewRepository(pool)
	alertsService := alerts.NewService(alertsRepo, movementService, alertsRepo)
	alertsHandler := alerts.NewHandler(logger, alertsService)

	summaryService := summary.NewService(summary.NewRepository(pool))
	summaryHandler := summary.NewHandler(logger, summaryService, cfg.Location())

	sheetSyncService := sheetsync.NewService(logger, sheetsync.NewRepository(pool), sheetsync.NewCSVSource(), ledgerService, redisClient)
	sheetSyncHandler := sheetsync.NewHandler(logger, sheetSyncService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		LedgerHandler:    ledgerHandler,
		MovementHandler:  movementHandler,
		AlertsHandler:    alertsHandler,
		SummaryHandler:   summaryHandler,
		SheetSyncHandler: sheetSyncHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
