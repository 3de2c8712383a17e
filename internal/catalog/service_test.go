package catalog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/shared"
)

type memoryRepo struct {
	nextID  int64
	items   map[int64]Item
	changes []PriceChange
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: map[int64]Item{}}
}

func (m *memoryRepo) List(ctx context.Context) ([]Item, error) {
	out := []Item{}
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := m.items[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memoryRepo) GetByCode(ctx context.Context, code string) (Item, error) {
	for _, item := range m.items {
		if item.ItemCode == code {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (m *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	for _, existing := range m.items {
		if existing.ItemCode == item.ItemCode {
			return Item{}, ErrDuplicateCode
		}
		if existing.Name == item.Name {
			return Item{}, ErrDuplicateName
		}
	}
	item.ID = m.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, item Item) error {
	current, ok := m.items[id]
	if !ok {
		return ErrItemNotFound
	}
	current.ItemCode = item.ItemCode
	current.Name = item.Name
	current.Category = item.Category
	current.PurchasePrice = item.PurchasePrice
	current.WholesalePrice = item.WholesalePrice
	current.RetailPrice = item.RetailPrice
	current.UpdatedAt = time.Now()
	m.items[id] = current
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) LowStock(ctx context.Context, threshold, limit int) ([]Item, error) {
	out := []Item{}
	for _, item := range m.items {
		if item.AvailableQty > 0 && item.AvailableQty < threshold {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvailableQty < out[j].AvailableQty })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) InsertPriceChange(ctx context.Context, change PriceChange) error {
	change.ID = int64(len(m.changes) + 1)
	change.ChangedAt = time.Now()
	m.changes = append(m.changes, change)
	return nil
}

func (m *memoryRepo) ListPriceChanges(ctx context.Context, itemID int64, limit int) ([]PriceChange, error) {
	out := []PriceChange{}
	for i := len(m.changes) - 1; i >= 0 && len(out) < limit; i-- {
		if m.changes[i].ItemID == itemID {
			out = append(out, m.changes[i])
		}
	}
	return out, nil
}

func mustMoney(t *testing.T, s string) *shared.Money {
	t.Helper()
	m, err := shared.ParseMoney(s)
	require.NoError(t, err)
	return &m
}

func validInput(code, name string) CreateInput {
	return CreateInput{ItemCode: code, Name: name, Category: CategorySamsung, OpeningStock: 10}
}

func TestCreateSetsAvailableFromOpeningStock(t *testing.T) {
	svc := NewService(newMemoryRepo())

	item, err := svc.Create(context.Background(), validInput("A1", "Galaxy A1"))
	require.NoError(t, err)
	require.Equal(t, 10, item.OpeningStock)
	require.Equal(t, 10, item.AvailableQty)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput("A1", "Galaxy A1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput("A1", "Other Name"))
	require.ErrorIs(t, err, ErrDuplicateCode)
	_, err = svc.Create(ctx, validInput("B2", "Galaxy A1"))
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Create(ctx, CreateInput{ItemCode: "C3", Name: "Pixel", Category: "Nokia"})
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestBulkCreateCollectsSkips(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput("EXIST", "Existing"))
	require.NoError(t, err)

	result, err := svc.BulkCreate(ctx, []CreateInput{
		validInput("A1", "Galaxy A1"),
		validInput("A1", "Batch Dup Code"),
		validInput("B2", "Galaxy A1"),
		validInput("EXIST", "Fresh Name"),
		validInput("C3", "Galaxy C3"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Skipped, 3)
	require.Equal(t, "duplicate item code in batch", result.Skipped[0].Reason)
	require.Equal(t, "duplicate item name in batch", result.Skipped[1].Reason)
	require.Equal(t, "item code already exists", result.Skipped[2].Reason)
}

func TestUpdateRecordsPriceHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	input := validInput("A1", "Galaxy A1")
	input.WholesalePrice = mustMoney(t, "10.500")
	item, err := svc.Create(ctx, input)
	require.NoError(t, err)

	// Same prices: no history entry.
	err = svc.Update(ctx, item.ID, UpdateInput{
		ItemCode: "A1", Name: "Galaxy A1", Category: CategorySamsung,
		WholesalePrice: mustMoney(t, "10.500"),
	})
	require.NoError(t, err)
	require.Empty(t, repo.changes)

	err = svc.Update(ctx, item.ID, UpdateInput{
		ItemCode: "A1", Name: "Galaxy A1", Category: CategorySamsung,
		WholesalePrice: mustMoney(t, "11.000"),
	})
	require.NoError(t, err)

	history, err := svc.PriceHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "11.000", history[0].WholesalePrice.String())
}

func TestLowStockSortedAscending(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, tc := range []struct {
		code string
		qty  int
	}{{"A1", 8}, {"B2", 2}, {"C3", 0}, {"D4", 50}} {
		input := validInput(tc.code, "Item "+tc.code)
		input.OpeningStock = tc.qty
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}

	items, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	// Zero-quantity and well-stocked items are excluded; lowest first.
	require.Len(t, items, 2)
	require.Equal(t, "B2", items[0].ItemCode)
	require.Equal(t, "A1", items[1].ItemCode)
}
