package summary

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockledger/stockledger/internal/shared"
)

// Repository reads the ledger and item tables for the aggregator.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaleLines returns sale entries in [start, end) joined with their item.
func (r *Repository) SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT sh.item_id, i.name, i.item_code, sh.quantity_change, i.wholesale_price
FROM stock_history sh
JOIN items i ON i.id = sh.item_id
WHERE sh.change_type = 'sale' AND sh.created_at >= $1 AND sh.created_at < $2
ORDER BY sh.created_at`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []SaleLine{}
	for rows.Next() {
		var line SaleLine
		var price *int64
		if err := rows.Scan(&line.ItemID, &line.Name, &line.Code, &line.QuantityChange, &price); err != nil {
			return nil, err
		}
		if price != nil {
			m := shared.Money(*price)
			line.WholesalePrice = &m
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// LowStock returns items under the floor, lowest quantity first.
func (r *Repository) LowStock(ctx context.Context, floor int) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, item_code, available_qty FROM items WHERE available_qty < $1 ORDER BY available_qty`, floor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LowStockItem{}
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.Name, &it.Code, &it.AvailableQty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Items returns every item id/name/code.
func (r *Repository) Items(ctx context.Context) ([]ItemRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, item_code FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ItemRow{}
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.ID, &it.Name, &it.Code); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
