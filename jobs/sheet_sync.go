package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stockledger/stockledger/internal/observability"
	"github.com/stockledger/stockledger/internal/sheetsync"
)

// SheetSyncJob runs the nightly sheet-sourced stock sync.
type SheetSyncJob struct {
	logger  *slog.Logger
	service *sheetsync.Service
	metrics *observability.Metrics
}

// NewSheetSyncJob builds SheetSyncJob.
func NewSheetSyncJob(logger *slog.Logger, service *sheetsync.Service, metrics *observability.Metrics) *SheetSyncJob {
	return &SheetSyncJob{logger: logger, service: service, metrics: metrics}
}

// Handle processes TaskSheetSync tasks.
func (j *SheetSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SheetSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	result, err := j.service.SyncNow(ctx)
	if err != nil {
		// Another run in flight or no sheet configured: nothing to retry.
		if errors.Is(err, sheetsync.ErrSyncInProgress) || errors.Is(err, sheetsync.ErrNotConfigured) {
			j.logger.Warn("sheet sync skipped", slog.Any("reason", err))
			j.metrics.ObserveJobRun(TaskSheetSync, "skipped")
			return nil
		}
		j.metrics.ObserveJobRun(TaskSheetSync, "error")
		return err
	}

	outcome := "ok"
	if result.Status == sheetsync.StatusFailed {
		outcome = "failed"
	}
	j.metrics.ObserveJobRun(TaskSheetSync, outcome)
	j.logger.Info("sheet sync complete",
		slog.String("runId", result.RunID.String()),
		slog.String("status", string(result.Status)),
		slog.Int("itemsUpdated", result.ItemsUpdated),
		slog.Int("notFound", len(result.NotFound)),
	)
	return nil
}
