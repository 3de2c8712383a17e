package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockledger/stockledger/internal/platform/db"
)

// Repository persists the stock ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction. Any
// error rolls the whole transaction back, so the ledger append and the item
// quantity update land together or not at all.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// ListHistory returns ledger entries for an item, newest first.
func (r *Repository) ListHistory(ctx context.Context, itemID int64, limit int) ([]StockHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, item_id, change_type, quantity_change, quantity_after, purchase_order_id, COALESCE(notes,''), created_at
FROM stock_history WHERE item_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []StockHistoryEntry{}
	for rows.Next() {
		var e StockHistoryEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.ChangeType, &e.QuantityChange, &e.QuantityAfter, &e.PurchaseOrderID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CurrentQuantity returns the item's available quantity.
func (r *Repository) CurrentQuantity(ctx context.Context, itemID int64) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx, `SELECT available_qty FROM items WHERE id=$1`, itemID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	return qty, err
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, itemID int64) (ItemState, error) {
	return scanItemState(r.tx.QueryRow(ctx, `SELECT id, item_code, available_qty FROM items WHERE id=$1 FOR UPDATE`, itemID))
}

func (r *txRepository) GetItemByCodeForUpdate(ctx context.Context, code string) (ItemState, error) {
	return scanItemState(r.tx.QueryRow(ctx, `SELECT id, item_code, available_qty FROM items WHERE item_code=$1 FOR UPDATE`, code))
}

func scanItemState(row pgx.Row) (ItemState, error) {
	var item ItemState
	err := row.Scan(&item.ID, &item.ItemCode, &item.AvailableQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return ItemState{}, ErrItemNotFound
	}
	return item, err
}

func (r *txRepository) AppendEntry(ctx context.Context, entry StockHistoryEntry) (StockHistoryEntry, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_history (item_id, change_type, quantity_change, quantity_after, purchase_order_id, notes, created_at)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7) RETURNING id`,
		entry.ItemID, string(entry.ChangeType), entry.QuantityChange, entry.QuantityAfter, entry.PurchaseOrderID, entry.Notes, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return StockHistoryEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE items SET available_qty=$2, updated_at=NOW() WHERE id=$1`, itemID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *txRepository) UpdateLastSold(ctx context.Context, itemID int64, at time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE items SET last_sold_at=$2 WHERE id=$1`, itemID, at)
	return err
}
