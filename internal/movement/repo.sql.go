package movement

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads movement aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaleTotals sums sale entries per item since the given instant. An itemID
// of zero covers the whole catalog.
func (r *Repository) SaleTotals(ctx context.Context, since time.Time, itemID int64) ([]SaleTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT item_id, COALESCE(SUM(ABS(quantity_change)),0), COUNT(*)
FROM stock_history
WHERE change_type='sale' AND created_at >= $1 AND ($2 = 0 OR item_id = $2)
GROUP BY item_id`, since, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := []SaleTotal{}
	for rows.Next() {
		var t SaleTotal
		if err := rows.Scan(&t.ItemID, &t.SoldQty, &t.OrderCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Items lists item state for reporting. An itemID of zero lists all items.
func (r *Repository) Items(ctx context.Context, itemID int64) ([]ItemRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, item_code, name, category, available_qty
FROM items WHERE ($1 = 0 OR id = $1) ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ItemRef{}
	for rows.Next() {
		var it ItemRef
		if err := rows.Scan(&it.ID, &it.ItemCode, &it.Name, &it.Category, &it.AvailableQty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
