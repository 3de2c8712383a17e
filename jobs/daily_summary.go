package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockledger/stockledger/internal/observability"
	"github.com/stockledger/stockledger/internal/summary"
)

// DailySummaryJob computes the day's sales rollup and hands it to the
// notifier. Delivery failure is logged, never retried here; the ledger is
// unaffected either way.
type DailySummaryJob struct {
	logger   *slog.Logger
	service  *summary.Service
	notifier summary.Notifier
	loc      *time.Location
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewDailySummaryJob builds DailySummaryJob.
func NewDailySummaryJob(logger *slog.Logger, service *summary.Service, notifier summary.Notifier, loc *time.Location, metrics *observability.Metrics) *DailySummaryJob {
	return &DailySummaryJob{logger: logger, service: service, notifier: notifier, loc: loc, metrics: metrics, now: time.Now}
}

// Handle processes TaskDailySummary tasks.
func (j *DailySummaryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailySummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	date := j.now()
	if payload.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", payload.Date, j.loc)
		if err != nil {
			j.logger.Error("daily summary: bad date in payload", slog.String("date", payload.Date))
			return asynq.SkipRetry
		}
		date = parsed
	}

	result, err := j.service.Summarize(ctx, date, j.loc)
	if err != nil {
		j.metrics.ObserveJobRun(TaskDailySummary, "error")
		return err
	}

	if err := j.notifier.Send(ctx, result); err != nil {
		j.logger.Warn("daily summary: notification failed", slog.Any("error", err))
	}

	j.metrics.ObserveJobRun(TaskDailySummary, "ok")
	j.logger.Info("daily summary complete",
		slog.String("date", result.Date),
		slog.Int("totalItemsSold", result.TotalItemsSold),
		slog.String("totalRevenue", result.TotalRevenue.String()),
	)
	return nil
}
