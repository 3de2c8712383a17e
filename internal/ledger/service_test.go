package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryItem struct {
	id           int64
	code         string
	openingStock int
	availableQty int
	lastSoldAt   *time.Time
}

type memoryRepo struct {
	items   map[int64]*memoryItem
	byCode  map[string]int64
	entries []StockHistoryEntry
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]*memoryItem{}, byCode: map[string]int64{}}
}

func (r *memoryRepo) addItem(id int64, code string, opening int) {
	r.items[id] = &memoryItem{id: id, code: code, openingStock: opening, availableQty: opening}
	r.byCode[code] = id
}

type memorySnapshot struct {
	items   map[int64]memoryItem
	entries []StockHistoryEntry
}

func (r *memoryRepo) snapshot() memorySnapshot {
	snap := memorySnapshot{items: map[int64]memoryItem{}}
	for id, it := range r.items {
		snap.items[id] = *it
	}
	snap.entries = append(snap.entries, r.entries...)
	return snap
}

func (r *memoryRepo) restore(snap memorySnapshot) {
	r.items = map[int64]*memoryItem{}
	for id, it := range snap.items {
		copied := it
		r.items[id] = &copied
	}
	r.entries = snap.entries
}

type memoryTx struct {
	repo *memoryRepo
}

// WithTx mimics all-or-nothing semantics by restoring a snapshot on error.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memoryRepo) ListHistory(ctx context.Context, itemID int64, limit int) ([]StockHistoryEntry, error) {
	out := []StockHistoryEntry{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].ItemID == itemID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memoryRepo) CurrentQuantity(ctx context.Context, itemID int64) (int, error) {
	item, ok := r.items[itemID]
	if !ok {
		return 0, ErrItemNotFound
	}
	return item.availableQty, nil
}

func (tx *memoryTx) GetItemForUpdate(ctx context.Context, itemID int64) (ItemState, error) {
	item, ok := tx.repo.items[itemID]
	if !ok {
		return ItemState{}, ErrItemNotFound
	}
	return ItemState{ID: item.id, ItemCode: item.code, AvailableQty: item.availableQty}, nil
}

func (tx *memoryTx) GetItemByCodeForUpdate(ctx context.Context, code string) (ItemState, error) {
	id, ok := tx.repo.byCode[code]
	if !ok {
		return ItemState{}, ErrItemNotFound
	}
	return tx.GetItemForUpdate(ctx, id)
}

func (tx *memoryTx) AppendEntry(ctx context.Context, entry StockHistoryEntry) (StockHistoryEntry, error) {
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	tx.repo.entries = append(tx.repo.entries, entry)
	return entry, nil
}

func (tx *memoryTx) UpdateQuantity(ctx context.Context, itemID int64, qty int) error {
	item, ok := tx.repo.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	item.availableQty = qty
	return nil
}

func (tx *memoryTx) UpdateLastSold(ctx context.Context, itemID int64, at time.Time) error {
	item, ok := tx.repo.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	item.lastSoldAt = &at
	return nil
}

// replay folds the ledger for one item and checks every quantityAfter
// snapshot against the running total.
func replay(t *testing.T, repo *memoryRepo, itemID int64, opening int) int {
	t.Helper()
	running := opening
	for _, e := range repo.entries {
		if e.ItemID != itemID {
			continue
		}
		running += e.QuantityChange
		require.Equal(t, running, e.QuantityAfter, "entry %d breaks replay", e.ID)
	}
	return running
}

func TestApplyChangeReconciliation(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 100)
	svc := NewService(repo, nil)
	ctx := context.Background()

	entry, err := svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeSale, Delta: -30})
	require.NoError(t, err)
	require.Equal(t, ChangeSale, entry.ChangeType)
	require.Equal(t, -30, entry.QuantityChange)
	require.Equal(t, 70, entry.QuantityAfter)
	require.Equal(t, 70, repo.items[1].availableQty)
	require.NotNil(t, repo.items[1].lastSoldAt)

	entry, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangePurchase, Delta: 20})
	require.NoError(t, err)
	require.Equal(t, 90, entry.QuantityAfter)
	require.Equal(t, 90, repo.items[1].availableQty)

	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeAdjustment, Delta: -5})
	require.NoError(t, err)

	final := replay(t, repo, 1, 100)
	require.Equal(t, repo.items[1].availableQty, final)
}

func TestSaleRejectedWhenStockInsufficient(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 10)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeSale, Delta: -11})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// No partial state: quantity untouched, ledger empty.
	require.Equal(t, 10, repo.items[1].availableQty)
	require.Empty(t, repo.entries)
	require.Nil(t, repo.items[1].lastSoldAt)
}

func TestApplyChangeValidation(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 10)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeSale, Delta: 5})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangePurchase, Delta: -5})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeAdjustment, Delta: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeType("restock"), Delta: 5})
	require.ErrorIs(t, err, ErrInvalidChangeType)

	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 99, Type: ChangePurchase, Delta: 5})
	require.ErrorIs(t, err, ErrItemNotFound)

	require.Empty(t, repo.entries)
}

func TestSetQuantityComputesDelta(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 40)
	svc := NewService(repo, nil)
	ctx := context.Background()

	entry, err := svc.SetQuantity(ctx, 1, 25, ChangeImport, "sheet sync")
	require.NoError(t, err)
	require.Equal(t, -15, entry.QuantityChange)
	require.Equal(t, 25, entry.QuantityAfter)
	require.Equal(t, 25, repo.items[1].availableQty)

	// Setting to the current value still records an entry with zero change,
	// matching the overwrite semantics of bulk imports.
	entry, err = svc.SetQuantity(ctx, 1, 25, ChangeImport, "")
	require.NoError(t, err)
	require.Equal(t, 0, entry.QuantityChange)

	_, err = svc.SetQuantity(ctx, 1, -1, ChangeImport, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	replay(t, repo, 1, 40)
}

func TestImportStockCollectsNotFound(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 30)
	svc := NewService(repo, nil)
	ctx := context.Background()

	report, err := svc.ImportStock(ctx, []StockUpdate{
		{ItemCode: "A1", Quantity: 50},
		{ItemCode: "ZZZ", Quantity: 10},
	}, "csv upload")
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, []string{"ZZZ"}, report.NotFound)

	require.Len(t, repo.entries, 1)
	require.Equal(t, ChangeImport, repo.entries[0].ChangeType)
	require.Equal(t, 20, repo.entries[0].QuantityChange)
	require.Equal(t, 50, repo.items[1].availableQty)
}

func TestGetHistoryStats(t *testing.T) {
	repo := newMemoryRepo()
	repo.addItem(1, "A1", 100)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeSale, Delta: -30})
	require.NoError(t, err)
	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangePurchase, Delta: 20})
	require.NoError(t, err)
	_, err = svc.ApplyChange(ctx, ChangeInput{ItemID: 1, Type: ChangeSale, Delta: -10})
	require.NoError(t, err)

	entries, stats, err := svc.GetHistory(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 40, stats.TotalSales)
	require.Equal(t, 20, stats.TotalRestocks)
	require.Equal(t, 80, stats.CurrentStock)
	// Newest first.
	require.Equal(t, -10, entries[0].QuantityChange)
}
