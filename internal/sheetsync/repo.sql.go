package sheetsync

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository is the postgres-backed sheetsync store.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetConfig loads the singleton sheet configuration row.
func (r *PGRepository) GetConfig(ctx context.Context) (SheetConfig, bool, error) {
	var cfg SheetConfig
	err := r.pool.QueryRow(ctx, `SELECT spreadsheet_id, sheet_name, is_active, last_sync_at FROM sheet_config WHERE id=1`).
		Scan(&cfg.SpreadsheetID, &cfg.SheetName, &cfg.Active, &cfg.LastSyncAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SheetConfig{}, false, nil
	}
	if err != nil {
		return SheetConfig{}, false, err
	}
	return cfg, true, nil
}

// UpsertConfig writes the singleton sheet configuration row.
func (r *PGRepository) UpsertConfig(ctx context.Context, cfg SheetConfig) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sheet_config (id, spreadsheet_id, sheet_name, is_active, updated_at)
VALUES (1,$1,$2,$3,NOW())
ON CONFLICT (id) DO UPDATE SET spreadsheet_id=EXCLUDED.spreadsheet_id, sheet_name=EXCLUDED.sheet_name,
is_active=EXCLUDED.is_active, updated_at=NOW()`, cfg.SpreadsheetID, cfg.SheetName, cfg.Active)
	return err
}

// TouchLastSync stamps the configuration with the latest successful run.
func (r *PGRepository) TouchLastSync(ctx context.Context, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE sheet_config SET last_sync_at=$1, updated_at=NOW() WHERE id=1`, at)
	return err
}

// InsertLog appends a sync run record.
func (r *PGRepository) InsertLog(ctx context.Context, log SyncLog) (SyncLog, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO sync_logs (run_id, status, items_updated, error_message, synced_at)
VALUES ($1,$2,$3,NULLIF($4,''),$5) RETURNING id`,
		log.RunID, string(log.Status), log.ItemsUpdated, log.ErrorMessage, log.SyncedAt).Scan(&log.ID)
	if err != nil {
		return SyncLog{}, err
	}
	return log, nil
}

// ListLogs returns the newest runs first.
func (r *PGRepository) ListLogs(ctx context.Context, limit int) ([]SyncLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, run_id, status, items_updated, COALESCE(error_message,''), synced_at
FROM sync_logs ORDER BY synced_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []SyncLog{}
	for rows.Next() {
		var l SyncLog
		var status string
		if err := rows.Scan(&l.ID, &l.RunID, &status, &l.ItemsUpdated, &l.ErrorMessage, &l.SyncedAt); err != nil {
			return nil, err
		}
		l.Status = Status(status)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
