package movement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/catalog"
)

type fakeReader struct {
	items  []ItemRef
	totals []SaleTotal
	since  time.Time
}

func (f *fakeReader) SaleTotals(ctx context.Context, since time.Time, itemID int64) ([]SaleTotal, error) {
	f.since = since
	if itemID == 0 {
		return f.totals, nil
	}
	out := []SaleTotal{}
	for _, t := range f.totals {
		if t.ItemID == itemID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeReader) Items(ctx context.Context, itemID int64) ([]ItemRef, error) {
	if itemID == 0 {
		return f.items, nil
	}
	out := []ItemRef{}
	for _, it := range f.items {
		if it.ID == itemID {
			out = append(out, it)
		}
	}
	return out, nil
}

func item(id int64, code string) ItemRef {
	return ItemRef{ID: id, ItemCode: code, Name: code, Category: catalog.CategorySamsung, AvailableQty: 10}
}

func TestClassifyBoundaries(t *testing.T) {
	require.Equal(t, CategoryFast, Classify(35, 5))
	require.Equal(t, CategoryMedium, Classify(34, 4.999))
	require.Equal(t, CategoryMedium, Classify(7, 1))
	require.Equal(t, CategorySlow, Classify(6, 0.999))
	require.Equal(t, CategorySlow, Classify(1, 0.01))
	require.Equal(t, CategoryNone, Classify(0, 0))
}

func TestAnalyzeMovement(t *testing.T) {
	reader := &fakeReader{
		items: []ItemRef{item(1, "A1"), item(2, "B2"), item(3, "C3")},
		totals: []SaleTotal{
			{ItemID: 1, SoldQty: 35, OrderCount: 5},
			{ItemID: 2, SoldQty: 7, OrderCount: 2},
		},
	}
	svc := NewService(reader)
	ctx := context.Background()

	stats, err := svc.AnalyzeMovement(ctx, 7, 0)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Sorted by sold quantity descending.
	require.Equal(t, int64(1), stats[0].ItemID)
	require.Equal(t, 35, stats[0].SoldQty)
	require.Equal(t, 5.0, stats[0].AvgPerDay)
	require.Equal(t, CategoryFast, stats[0].Movement)
	require.Equal(t, 5, stats[0].OrderCount)

	require.Equal(t, int64(2), stats[1].ItemID)
	require.Equal(t, 1.0, stats[1].AvgPerDay)
	require.Equal(t, CategoryMedium, stats[1].Movement)

	require.Equal(t, int64(3), stats[2].ItemID)
	require.Equal(t, 0, stats[2].SoldQty)
	require.Equal(t, CategoryNone, stats[2].Movement)
}

func TestAnalyzeMovementTiesBreakOnItemID(t *testing.T) {
	reader := &fakeReader{
		items: []ItemRef{item(2, "B2"), item(1, "A1")},
		totals: []SaleTotal{
			{ItemID: 1, SoldQty: 4},
			{ItemID: 2, SoldQty: 4},
		},
	}
	svc := NewService(reader)

	stats, err := svc.AnalyzeMovement(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats[0].ItemID)
	require.Equal(t, int64(2), stats[1].ItemID)
}

func TestAnalyzeMovementIdempotent(t *testing.T) {
	reader := &fakeReader{
		items:  []ItemRef{item(1, "A1"), item(2, "B2")},
		totals: []SaleTotal{{ItemID: 1, SoldQty: 12, OrderCount: 3}},
	}
	svc := NewService(reader)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	first, err := svc.AnalyzeMovement(ctx, 30, 0)
	require.NoError(t, err)
	second, err := svc.AnalyzeMovement(ctx, 30, 0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAnalyzeMovementSingleItemWindow(t *testing.T) {
	reader := &fakeReader{
		items:  []ItemRef{item(1, "A1"), item(2, "B2")},
		totals: []SaleTotal{{ItemID: 1, SoldQty: 30, OrderCount: 1}, {ItemID: 2, SoldQty: 99}},
	}
	svc := NewService(reader)
	svc.now = func() time.Time { return time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC) }

	stats, err := svc.AnalyzeMovement(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, 30, stats[0].SoldQty)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), reader.since)

	_, err = svc.AnalyzeMovement(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWeeklyVelocity(t *testing.T) {
	reader := &fakeReader{
		totals: []SaleTotal{{ItemID: 1, SoldQty: 30}, {ItemID: 2, SoldQty: 15}},
	}
	svc := NewService(reader)

	velocity, err := svc.WeeklyVelocity(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 7.0, velocity[1], 0.0001)
	require.InDelta(t, 3.5, velocity[2], 0.0001)
	require.NotContains(t, velocity, int64(3))
}
