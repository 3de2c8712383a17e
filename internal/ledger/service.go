package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ItemState is the slice of item state the reconciler reads and writes
// inside its transaction.
type ItemState struct {
	ID           int64
	ItemCode     string
	AvailableQty int
}

// TxRepository exposes the operations available inside one reconciler
// transaction. The item row is locked for the duration, so two concurrent
// changes against the same item serialise instead of losing an update.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, itemID int64) (ItemState, error)
	GetItemByCodeForUpdate(ctx context.Context, code string) (ItemState, error)
	AppendEntry(ctx context.Context, entry StockHistoryEntry) (StockHistoryEntry, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int) error
	UpdateLastSold(ctx context.Context, itemID int64, at time.Time) error
}

// RepositoryPort abstracts ledger persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListHistory(ctx context.Context, itemID int64, limit int) ([]StockHistoryEntry, error)
	CurrentQuantity(ctx context.Context, itemID int64) (int, error)
}

// Recorder counts applied stock changes for observability. May be nil.
type Recorder interface {
	ObserveStockChange(changeType string)
}

// Service is the reconciler: the only writer of available quantity. Every
// mutation pairs exactly one ledger append with the quantity update inside a
// single transaction.
type Service struct {
	repo    RepositoryPort
	metrics Recorder
	now     func() time.Time
}

// NewService builds Service. metrics may be nil.
func NewService(repo RepositoryPort, metrics Recorder) *Service {
	return &Service{repo: repo, metrics: metrics, now: time.Now}
}

// ApplyChange applies a signed quantity delta to an item and appends the
// matching ledger entry. Fails without partial state when the item is
// missing, the delta is invalid for the change type, or stock would go
// negative.
func (s *Service) ApplyChange(ctx context.Context, input ChangeInput) (StockHistoryEntry, error) {
	if err := validateChange(input.Type, input.Delta); err != nil {
		return StockHistoryEntry{}, err
	}
	var entry StockHistoryEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		applied, err := s.apply(ctx, tx, item, input.Type, input.Delta, input.Notes, input.PurchaseOrderID)
		if err != nil {
			return err
		}
		entry = applied
		return nil
	})
	if err != nil {
		return StockHistoryEntry{}, err
	}
	s.observe(input.Type)
	return entry, nil
}

// SetQuantity moves an item to an absolute target quantity. The delta is
// computed against the locked current quantity inside the transaction, so
// the resulting entry still satisfies the replay invariant.
func (s *Service) SetQuantity(ctx context.Context, itemID int64, target int, changeType ChangeType, notes string) (StockHistoryEntry, error) {
	if !changeType.Valid() {
		return StockHistoryEntry{}, ErrInvalidChangeType
	}
	if target < 0 {
		return StockHistoryEntry{}, ErrInvalidQuantity
	}
	var entry StockHistoryEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		applied, err := s.apply(ctx, tx, item, changeType, target-item.AvailableQty, notes, nil)
		if err != nil {
			return err
		}
		entry = applied
		return nil
	})
	if err != nil {
		return StockHistoryEntry{}, err
	}
	s.observe(changeType)
	return entry, nil
}

// ImportStock applies absolute quantities for a batch of item codes, one
// transaction per row. Unresolved codes are collected into the report; a bad
// row never aborts the rest of the batch.
func (s *Service) ImportStock(ctx context.Context, rows []StockUpdate, notes string) (ImportReport, error) {
	report := ImportReport{NotFound: []string{}}
	for _, row := range rows {
		if row.Quantity < 0 {
			report.NotFound = append(report.NotFound, row.ItemCode)
			continue
		}
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			item, err := tx.GetItemByCodeForUpdate(ctx, row.ItemCode)
			if err != nil {
				return err
			}
			_, err = s.apply(ctx, tx, item, ChangeImport, row.Quantity-item.AvailableQty, notes, nil)
			return err
		})
		switch {
		case err == nil:
			report.Updated++
			s.observe(ChangeImport)
		case isNotFound(err):
			report.NotFound = append(report.NotFound, row.ItemCode)
		default:
			return ImportReport{}, err
		}
	}
	return report, nil
}

// GetHistory returns the most recent ledger entries for an item, newest
// first, along with simple totals for display.
func (s *Service) GetHistory(ctx context.Context, itemID int64, limit int) ([]StockHistoryEntry, HistoryStats, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	current, err := s.repo.CurrentQuantity(ctx, itemID)
	if err != nil {
		return nil, HistoryStats{}, err
	}
	entries, err := s.repo.ListHistory(ctx, itemID, limit)
	if err != nil {
		return nil, HistoryStats{}, err
	}
	stats := HistoryStats{CurrentStock: current}
	for _, e := range entries {
		switch e.ChangeType {
		case ChangeSale:
			stats.TotalSales += abs(e.QuantityChange)
		case ChangePurchase:
			stats.TotalRestocks += abs(e.QuantityChange)
		}
	}
	return entries, stats, nil
}

// apply performs the shared append-and-update step under an already locked
// item row. The entry's quantityAfter snapshots the new available quantity.
func (s *Service) apply(ctx context.Context, tx TxRepository, item ItemState, changeType ChangeType, delta int, notes string, poID *uuid.UUID) (StockHistoryEntry, error) {
	newQty := item.AvailableQty + delta
	if newQty < 0 {
		return StockHistoryEntry{}, ErrInsufficientStock
	}
	now := s.now().UTC()
	entry := StockHistoryEntry{
		ItemID:          item.ID,
		ChangeType:      changeType,
		QuantityChange:  delta,
		QuantityAfter:   newQty,
		PurchaseOrderID: poID,
		Notes:           notes,
		CreatedAt:       now,
	}
	entry, err := tx.AppendEntry(ctx, entry)
	if err != nil {
		return StockHistoryEntry{}, err
	}
	if err := tx.UpdateQuantity(ctx, item.ID, newQty); err != nil {
		return StockHistoryEntry{}, err
	}
	if changeType == ChangeSale && delta < 0 {
		if err := tx.UpdateLastSold(ctx, item.ID, now); err != nil {
			return StockHistoryEntry{}, err
		}
	}
	return entry, nil
}

func (s *Service) observe(t ChangeType) {
	if s.metrics != nil {
		s.metrics.ObserveStockChange(string(t))
	}
}

func validateChange(t ChangeType, delta int) error {
	if !t.Valid() {
		return ErrInvalidChangeType
	}
	if delta == 0 {
		return ErrInvalidQuantity
	}
	switch t {
	case ChangeSale:
		if delta > 0 {
			return ErrInvalidQuantity
		}
	case ChangePurchase, ChangeImport:
		if delta < 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
