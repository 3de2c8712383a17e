package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockledger/stockledger/internal/app"
	"github.com/stockledger/stockledger/internal/ledger"
	"github.com/stockledger/stockledger/internal/observability"
	"github.com/stockledger/stockledger/internal/platform/cache"
	"github.com/stockledger/stockledger/internal/platform/db"
	"github.com/stockledger/stockledger/internal/sheetsync"
	"github.com/stockledger/stockledger/internal/summary"
	"github.com/stockledger/stockledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	ledgerService := ledger.NewService(ledger.NewRepository(pool), metrics)
	summaryService := summary.NewService(summary.NewRepository(pool))
	notifier := summary.NewLogNotifier(logger)
	summaryJob := jobs.NewDailySummaryJob(logger, summaryService, notifier, cfg.Location(), metrics)

	sheetSyncService := sheetsync.NewService(logger, sheetsync.NewRepository(pool), sheetsync.NewCSVSource(), ledgerService, redisClient)
	sheetSyncJob := jobs.NewSheetSyncJob(logger, sheetSyncService, metrics)

	summaryTask, err := jobs.NewDailySummaryTask(jobs.DailySummaryPayload{})
	if err != nil {
		logger.Error("build daily summary task", slog.Any("error", err))
		os.Exit(1)
	}
	syncTask, err := jobs.NewSheetSyncTask(time.Now())
	if err != nil {
		logger.Error("build sheet sync task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDailySummary, Handler: summaryJob.Handle},
			{Type: jobs.TaskSheetSync, Handler: sheetSyncJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DailySummaryCron, Task: summaryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.SheetSyncCron, Task: syncTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
