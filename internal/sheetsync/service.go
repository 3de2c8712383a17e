package sheetsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stockledger/stockledger/internal/ledger"
)

const (
	lockKey = "stockledger:sheetsync:lock"
	lockTTL = 5 * time.Minute
)

// Source fetches the parsed (itemCode, quantity) tuples from the external
// sheet. Credentials, ranges and transport all live behind this port.
type Source interface {
	Fetch(ctx context.Context, cfg SheetConfig) ([]ledger.StockUpdate, error)
}

// Importer routes fetched rows through the stock reconciler.
type Importer interface {
	ImportStock(ctx context.Context, rows []ledger.StockUpdate, notes string) (ledger.ImportReport, error)
}

// Repository persists sheet configuration and sync logs.
type Repository interface {
	GetConfig(ctx context.Context) (SheetConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg SheetConfig) error
	TouchLastSync(ctx context.Context, at time.Time) error
	InsertLog(ctx context.Context, log SyncLog) (SyncLog, error)
	ListLogs(ctx context.Context, limit int) ([]SyncLog, error)
}

// Service runs sheet-sourced stock synchronization under a redis lock.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	source   Source
	importer Importer
	rdb      *redis.Client
	now      func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, repo Repository, source Source, importer Importer, rdb *redis.Client) *Service {
	return &Service{logger: logger, repo: repo, source: source, importer: importer, rdb: rdb, now: time.Now}
}

// GetConfig returns the stored sheet configuration.
func (s *Service) GetConfig(ctx context.Context) (SheetConfig, error) {
	cfg, ok, err := s.repo.GetConfig(ctx)
	if err != nil {
		return SheetConfig{}, err
	}
	if !ok {
		return SheetConfig{}, ErrNotConfigured
	}
	return cfg, nil
}

// UpdateConfig stores the sheet configuration.
func (s *Service) UpdateConfig(ctx context.Context, cfg SheetConfig) error {
	return s.repo.UpsertConfig(ctx, cfg)
}

// ListLogs returns recent sync run records, newest first.
func (s *Service) ListLogs(ctx context.Context, limit int) ([]SyncLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListLogs(ctx, limit)
}

// SyncNow fetches the sheet and routes every row through the reconciler's
// absolute-quantity path. Row failures are independent: unresolved item
// codes are collected, not fatal. The redis lock rejects concurrent runs
// rather than queueing them.
func (s *Service) SyncNow(ctx context.Context) (SyncResult, error) {
	runID := uuid.New()

	ok, err := s.rdb.SetNX(ctx, lockKey, runID.String(), lockTTL).Result()
	if err != nil {
		return SyncResult{}, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.rdb.Del(context.WithoutCancel(ctx), lockKey)

	cfg, found, err := s.repo.GetConfig(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if !found || !cfg.Active {
		return SyncResult{}, ErrNotConfigured
	}

	result := SyncResult{RunID: runID, NotFound: []string{}}

	rows, err := s.source.Fetch(ctx, cfg)
	if err != nil {
		result.Status = StatusFailed
		result.ErrorMessage = err.Error()
		s.record(ctx, result)
		return result, nil
	}

	report, err := s.importer.ImportStock(ctx, rows, "google sheets sync")
	if err != nil {
		result.Status = StatusFailed
		result.ErrorMessage = err.Error()
		s.record(ctx, result)
		return result, nil
	}

	result.Status = StatusSuccess
	result.ItemsUpdated = report.Updated
	result.NotFound = report.NotFound
	s.record(ctx, result)

	if err := s.repo.TouchLastSync(ctx, s.now()); err != nil {
		s.logger.Warn("update last sync time", slog.Any("error", err))
	}
	return result, nil
}

func (s *Service) record(ctx context.Context, result SyncResult) {
	_, err := s.repo.InsertLog(ctx, SyncLog{
		RunID:        result.RunID,
		Status:       result.Status,
		ItemsUpdated: result.ItemsUpdated,
		ErrorMessage: result.ErrorMessage,
		SyncedAt:     s.now(),
	})
	if err != nil {
		s.logger.Error("record sync log", slog.Any("error", err))
	}
}
