package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/shared"
)

type fakeReader struct {
	lines    []SaleLine
	lowStock []LowStockItem
	items    []ItemRow
	start    time.Time
	end      time.Time
}

func (f *fakeReader) SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error) {
	f.start, f.end = start, end
	return f.lines, nil
}

func (f *fakeReader) LowStock(ctx context.Context, floor int) ([]LowStockItem, error) {
	return f.lowStock, nil
}

func (f *fakeReader) Items(ctx context.Context) ([]ItemRow, error) {
	return f.items, nil
}

func money(t *testing.T, s string) *shared.Money {
	t.Helper()
	m, err := shared.ParseMoney(s)
	require.NoError(t, err)
	return &m
}

func TestSummarizeDayBounds(t *testing.T) {
	kuwait := time.FixedZone("AST", 3*60*60)
	reader := &fakeReader{}
	svc := NewService(reader)

	// 01:30 Kuwait time on June 2 is still June 1 in UTC; the window must
	// follow the configured zone, not UTC.
	at := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)
	result, err := svc.Summarize(context.Background(), at, kuwait)
	require.NoError(t, err)

	wantStart := time.Date(2024, 6, 2, 0, 0, 0, 0, kuwait)
	require.True(t, reader.start.Equal(wantStart))
	require.True(t, reader.end.Equal(wantStart.AddDate(0, 0, 1)))
	require.Equal(t, "Sunday, June 2, 2024", result.Date)
	require.Equal(t, 0, result.TotalItemsSold)
	require.Empty(t, result.TopSellingItems)
}

func TestSummarizeAggregates(t *testing.T) {
	reader := &fakeReader{
		lines: []SaleLine{
			{ItemID: 1, Name: "Alpha", Code: "A1", QuantityChange: -3, WholesalePrice: money(t, "10.500")},
			{ItemID: 1, Name: "Alpha", Code: "A1", QuantityChange: -2, WholesalePrice: money(t, "10.500")},
			{ItemID: 2, Name: "Beta", Code: "B2", QuantityChange: -4, WholesalePrice: nil},
		},
		items: []ItemRow{{ID: 1, Name: "Alpha", Code: "A1"}, {ID: 2, Name: "Beta", Code: "B2"}, {ID: 3, Name: "Gamma", Code: "C3"}},
	}
	svc := NewService(reader)

	result, err := svc.Summarize(context.Background(), time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)

	require.Equal(t, 9, result.TotalItemsSold)
	// 5 units at 10.500; the item without a wholesale price contributes zero.
	require.Equal(t, "52.500", result.TotalRevenue.String())

	require.Len(t, result.TopSellingItems, 2)
	require.Equal(t, "A1", result.TopSellingItems[0].Code)
	require.Equal(t, 5, result.TopSellingItems[0].QuantitySold)
	require.Equal(t, "B2", result.TopSellingItems[1].Code)

	require.Equal(t, []ItemRef{{Name: "Gamma", Code: "C3"}}, result.NoSalesItems)
}

func TestSummarizeTopFiveTruncation(t *testing.T) {
	reader := &fakeReader{}
	for i := int64(1); i <= 7; i++ {
		reader.lines = append(reader.lines, SaleLine{
			ItemID:         i,
			Name:           "Item",
			Code:           string(rune('A' + i - 1)),
			QuantityChange: -int(i),
		})
	}
	svc := NewService(reader)

	result, err := svc.Summarize(context.Background(), time.Now(), time.UTC)
	require.NoError(t, err)
	require.Len(t, result.TopSellingItems, 5)
	// Highest quantities survive the cut.
	require.Equal(t, 7, result.TopSellingItems[0].QuantitySold)
	require.Equal(t, 3, result.TopSellingItems[4].QuantitySold)
}

func TestSummarizeLowStockPassThrough(t *testing.T) {
	reader := &fakeReader{
		lowStock: []LowStockItem{
			{Name: "Beta", Code: "B2", AvailableQty: 2},
			{Name: "Alpha", Code: "A1", AvailableQty: 15},
		},
	}
	svc := NewService(reader)

	result, err := svc.Summarize(context.Background(), time.Now(), time.UTC)
	require.NoError(t, err)
	require.Equal(t, reader.lowStock, result.LowStockItems)
}

func TestRenderDigest(t *testing.T) {
	s := SalesSummary{
		Date:            "Sunday, June 2, 2024",
		TotalItemsSold:  9,
		TotalRevenue:    shared.Money(52500),
		TopSellingItems: []ItemSales{{Name: "Alpha", Code: "A1", QuantitySold: 5, Revenue: shared.Money(52500)}},
		LowStockItems:   []LowStockItem{{Name: "Beta", Code: "B2", AvailableQty: 2}},
		NoSalesItems:    []ItemRef{{Name: "Gamma", Code: "C3"}},
	}
	text := Render(s)
	require.Contains(t, text, "Total Items Sold: 9")
	require.Contains(t, text, "KWD 52.500")
	require.Contains(t, text, "1. Alpha (A1): 5 units")
	require.Contains(t, text, "Beta (B2): 2 units left")
	require.Contains(t, text, "No sales today: 1 items")
}
