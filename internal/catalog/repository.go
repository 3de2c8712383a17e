package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockledger/stockledger/internal/shared"
)

// Repository abstracts item persistence for the service.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	GetByCode(ctx context.Context, code string) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
	Delete(ctx context.Context, id int64) error
	LowStock(ctx context.Context, threshold, limit int) ([]Item, error)
	InsertPriceChange(ctx context.Context, change PriceChange) error
	ListPriceChanges(ctx context.Context, itemID int64, limit int) ([]PriceChange, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed item repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, item_code, name, category, purchase_price, wholesale_price, retail_price, opening_stock, available_qty, last_sold_at, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	var purchase, wholesale, retail *int64
	var lastSold *time.Time
	err := row.Scan(&it.ID, &it.ItemCode, &it.Name, &it.Category, &purchase, &wholesale, &retail,
		&it.OpeningStock, &it.AvailableQty, &lastSold, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	it.PurchasePrice = toMoney(purchase)
	it.WholesalePrice = toMoney(wholesale)
	it.RetailPrice = toMoney(retail)
	it.LastSoldAt = lastSold
	return it, nil
}

func toMoney(v *int64) *shared.Money {
	if v == nil {
		return nil
	}
	m := shared.Money(*v)
	return &m
}

func fromMoney(m *shared.Money) *int64 {
	if m == nil {
		return nil
	}
	v := int64(*m)
	return &v
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE item_code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO items (item_code, name, category, purchase_price, wholesale_price, retail_price, opening_stock, available_qty, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		item.ItemCode, item.Name, string(item.Category), fromMoney(item.PurchasePrice), fromMoney(item.WholesalePrice), fromMoney(item.RetailPrice),
		item.OpeningStock, item.AvailableQty).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, mapUniqueViolation(err)
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	tag, err := r.pool.Exec(ctx, `UPDATE items SET item_code=$2, name=$3, category=$4, purchase_price=$5, wholesale_price=$6, retail_price=$7, updated_at=NOW() WHERE id=$1`,
		id, item.ItemCode, item.Name, string(item.Category), fromMoney(item.PurchasePrice), fromMoney(item.WholesalePrice), fromMoney(item.RetailPrice))
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) LowStock(ctx context.Context, threshold, limit int) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE available_qty < $1 AND available_qty > 0 ORDER BY available_qty ASC LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) InsertPriceChange(ctx context.Context, change PriceChange) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO price_history (item_id, purchase_price, wholesale_price, retail_price, changed_at)
VALUES ($1,$2,$3,$4,NOW())`, change.ItemID, fromMoney(change.PurchasePrice), fromMoney(change.WholesalePrice), fromMoney(change.RetailPrice))
	return err
}

func (r *repository) ListPriceChanges(ctx context.Context, itemID int64, limit int) ([]PriceChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT id, item_id, purchase_price, wholesale_price, retail_price, changed_at
FROM price_history WHERE item_id=$1 ORDER BY changed_at DESC LIMIT $2`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	changes := []PriceChange{}
	for rows.Next() {
		var c PriceChange
		var purchase, wholesale, retail *int64
		if err := rows.Scan(&c.ID, &c.ItemID, &purchase, &wholesale, &retail, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.PurchasePrice = toMoney(purchase)
		c.WholesalePrice = toMoney(wholesale)
		c.RetailPrice = toMoney(retail)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// mapUniqueViolation converts 23505 errors on known constraints into the
// duplicate sentinels.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "item_code") {
			return ErrDuplicateCode
		}
		if strings.Contains(pgErr.ConstraintName, "name") {
			return ErrDuplicateName
		}
	}
	return err
}
