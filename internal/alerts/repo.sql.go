package alerts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockledger/stockledger/internal/catalog"
)

// Repository persists alert settings and reads item stock state.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads the settings row. The second return is false when the
// deployment has never been configured.
func (r *Repository) Get(ctx context.Context) (Settings, bool, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT low_stock_threshold, critical_stock_threshold, default_reorder_quantity, email_notifications
FROM alert_settings WHERE id=1`).Scan(&s.LowStockThreshold, &s.CriticalStockThreshold, &s.DefaultReorderQuantity, &s.EmailNotificationsEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, err
	}
	return s, true, nil
}

// Upsert writes the single settings row.
func (r *Repository) Upsert(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO alert_settings (id, low_stock_threshold, critical_stock_threshold, default_reorder_quantity, email_notifications, updated_at)
VALUES (1,$1,$2,$3,$4,NOW())
ON CONFLICT (id) DO UPDATE SET low_stock_threshold=EXCLUDED.low_stock_threshold, critical_stock_threshold=EXCLUDED.critical_stock_threshold,
default_reorder_quantity=EXCLUDED.default_reorder_quantity, email_notifications=EXCLUDED.email_notifications, updated_at=NOW()`,
		s.LowStockThreshold, s.CriticalStockThreshold, s.DefaultReorderQuantity, s.EmailNotificationsEnabled)
	return err
}

// List reads the item stock state considered for alerting.
func (r *Repository) List(ctx context.Context) ([]ItemStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, item_code, name, category, available_qty FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ItemStock{}
	for rows.Next() {
		var it ItemStock
		var cat string
		if err := rows.Scan(&it.ID, &it.ItemCode, &it.Name, &cat, &it.AvailableQty); err != nil {
			return nil, err
		}
		it.Category = catalog.Category(cat)
		items = append(items, it)
	}
	return items, rows.Err()
}
